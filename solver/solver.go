// Package solver calibrates curve node values so that instruments priced off the curves
// reproduce their market quotes.
//
// A Solver gathers the free node variables of its curves into one unknown vector, prices
// every instrument in parallel, and takes Gauss-Newton or Levenberg-Marquardt steps on
// the residuals priced − target until their Euclidean norm falls below the tolerance.
package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/ratecal/curve"
	"github.com/meenmo/ratecal/dual"
)

// Algorithm selects the step rule.
type Algorithm string

const (
	GaussNewton        Algorithm = "gauss_newton"
	LevenbergMarquardt Algorithm = "levenberg_marquardt"
)

// Underdetermined selects what happens when there are more unknowns than instruments.
type Underdetermined string

const (
	// UnderdeterminedReject fails construction with ErrIllPosed.
	UnderdeterminedReject Underdetermined = "reject"

	// UnderdeterminedMinNorm takes minimum-norm steps.
	UnderdeterminedMinNorm Underdetermined = "min_norm"
)

// Options describes a calibration problem. Zero Config fields take DefaultConfig values.
type Options struct {
	Config

	// ID names the run in logs, traces and errors. A UUID is generated when empty.
	ID string

	// Curves are calibrated: their free nodes are the unknowns, in curve then node order.
	Curves []*curve.Curve

	// Extra curves are visible to instruments but not calibrated, e.g. composites over
	// Curves or curves fixed by an earlier run.
	Extra []curve.DiscountCurve

	Instruments []Instrument
	Targets     []float64

	// Labels name instruments in diagnostics. When empty, Labeler names or positional
	// names are used.
	Labels []string

	Algorithm       Algorithm
	Underdetermined Underdetermined

	// Workers bounds concurrent pricing calls. Defaults to GOMAXPROCS.
	Workers int

	// InitialGuesses replaces the node values of the named curves before the first pass.
	// Each slice covers every node, fixed ones included.
	InitialGuesses map[string][]float64
}

// Option configures a Solver.
type Option func(s *Solver)

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) {
		s.logger = l
	}
}

// WithMetrics records run outcomes.
func WithMetrics(m *Metrics) Option {
	return func(s *Solver) {
		s.metrics = m
	}
}

// WithTracer sets the tracer. The default is the global provider's tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Solver) {
		s.tracer = t
	}
}

// Result is a converged calibration.
type Result struct {
	ID           string
	Iterations   int
	ResidualNorm float64
	Residuals    []float64
	Rates        []float64
	Labels       []string

	// Jacobian is ∂rate/∂node, instruments by unknowns.
	Jacobian *mat.Dense
	Unknowns []string

	Duration time.Duration

	// Nodes holds the calibrated node values of each curve by curve ID.
	Nodes map[string][]float64
}

// Residual is one row of Solver.Errors.
type Residual struct {
	Label  string
	Rate   float64
	Target float64
	Error  float64
}

// Solver runs a calibration.
type Solver struct {
	id       string
	opts     Options
	cfg      Config
	set      curve.Set
	registry *dual.Registry
	labels   []string
	workers  int

	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	mu     sync.Mutex
	last   *pass
	result *Result
}

// pass is one pricing of every instrument at fixed node values.
type pass struct {
	rates     []dual.Number
	reals     []float64
	residuals *mat.VecDense
	jacobian  *mat.Dense
	norm      float64
}

// New validates opts and builds the unknown registry.
func New(opts Options, options ...Option) (*Solver, error) {
	cfg := opts.Config.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}

	if len(opts.Curves) == 0 {
		return nil, fmt.Errorf("New: %w", ErrNoCurves)
	}
	if len(opts.Instruments) == 0 {
		return nil, fmt.Errorf("New: %w", ErrNoInstruments)
	}
	if len(opts.Targets) != len(opts.Instruments) {
		return nil, fmt.Errorf("New: %d instruments, %d targets: %w", len(opts.Instruments), len(opts.Targets), ErrLengthMismatch)
	}
	if len(opts.Labels) != 0 && len(opts.Labels) != len(opts.Instruments) {
		return nil, fmt.Errorf("New: %d instruments, %d labels: %w", len(opts.Instruments), len(opts.Labels), ErrLengthMismatch)
	}
	for i, inst := range opts.Instruments {
		if inst == nil {
			return nil, fmt.Errorf("New: instrument %d is nil: %w", i, ErrNoInstruments)
		}
	}
	for i, t := range opts.Targets {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, invalidConfig("target %d is %g", i, t)
		}
	}

	switch opts.Algorithm {
	case "":
		opts.Algorithm = GaussNewton
	case GaussNewton, LevenbergMarquardt:
	default:
		return nil, fmt.Errorf("New: algorithm %q: %w", opts.Algorithm, ErrUnknownPolicy)
	}
	switch opts.Underdetermined {
	case "":
		opts.Underdetermined = UnderdeterminedReject
	case UnderdeterminedReject, UnderdeterminedMinNorm:
	default:
		return nil, fmt.Errorf("New: under-determined policy %q: %w", opts.Underdetermined, ErrUnknownPolicy)
	}

	all := make([]curve.DiscountCurve, 0, len(opts.Curves)+len(opts.Extra))
	var tags []string
	for i, c := range opts.Curves {
		if c == nil {
			return nil, fmt.Errorf("New: curve %d is nil: %w", i, ErrNoCurves)
		}
		all = append(all, c)
		tags = append(tags, c.FreeVars()...)
	}
	all = append(all, opts.Extra...)
	set, err := curve.NewSet(all...)
	if err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("New: %w", ErrNoUnknowns)
	}
	registry, err := dual.NewRegistry(tags...)
	if err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}
	if n, m := registry.Len(), len(opts.Instruments); n > m && opts.Underdetermined == UnderdeterminedReject {
		return nil, fmt.Errorf("New: %d unknowns, %d instruments: %w", n, m, ErrIllPosed)
	}

	calibrated := make(map[string]*curve.Curve, len(opts.Curves))
	for _, c := range opts.Curves {
		calibrated[c.ID()] = c
	}
	for id, guess := range opts.InitialGuesses {
		c, ok := calibrated[id]
		if !ok {
			return nil, fmt.Errorf("New: initial guess for %q: %w", id, curve.ErrCurveNotFound)
		}
		if len(guess) != c.Len() {
			return nil, fmt.Errorf("New: initial guess for %q has %d values, curve has %d nodes: %w", id, len(guess), c.Len(), curve.ErrNodeCount)
		}
	}

	s := &Solver{
		id:       opts.ID,
		opts:     opts,
		cfg:      cfg,
		set:      set,
		registry: registry,
		labels:   instrumentLabels(opts),
		workers:  opts.Workers,
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.workers <= 0 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	for _, o := range options {
		o(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("github.com/meenmo/ratecal/solver")
	}
	s.logger = s.logger.With("run_id", s.id)
	return s, nil
}

func instrumentLabels(opts Options) []string {
	if len(opts.Labels) != 0 {
		return append([]string(nil), opts.Labels...)
	}
	labels := make([]string, len(opts.Instruments))
	for i, inst := range opts.Instruments {
		if l, ok := inst.(Labeler); ok && l.Label() != "" {
			labels[i] = l.Label()
		} else {
			labels[i] = fmt.Sprintf("instrument %d", i)
		}
	}
	return labels
}

// ID returns the run identifier.
func (s *Solver) ID() string {
	return s.id
}

// Unknowns returns the variable tags in unknown-vector order.
func (s *Solver) Unknowns() []string {
	return s.registry.Tags()
}

// Curves returns the set instruments are priced against.
func (s *Solver) Curves() curve.Set {
	return s.set
}

// Solve runs the calibration. The curves hold the final node values whether or not the
// run converges. Only a converged run returns a Result.
func (s *Solver) Solve(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "solver.Solve", trace.WithAttributes(
		attribute.String("run_id", s.id),
		attribute.String("algorithm", string(s.opts.Algorithm)),
		attribute.Int("instruments", len(s.opts.Instruments)),
		attribute.Int("unknowns", s.registry.Len()),
	))
	defer span.End()

	s.logger.Info("calibration starting",
		"algorithm", s.opts.Algorithm,
		"instruments", len(s.opts.Instruments),
		"unknowns", s.registry.Len(),
	)

	res, iterations, err := s.solve(ctx, span)
	elapsed := time.Since(start)

	norm := math.NaN()
	if s.last != nil {
		norm = s.last.norm
	}
	if err != nil {
		status := StatusFailed
		switch {
		case errors.Is(err, ErrNotConverged):
			status = StatusNotConverged
		case errors.Is(err, ErrIllPosed):
			status = StatusIllPosed
		}
		s.metrics.ObserveRun(status, iterations, elapsed, norm)
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		s.logger.Warn("calibration failed",
			"status", status,
			"iteration", iterations,
			"residual_norm", norm,
			"error", err,
		)
		return nil, err
	}

	res.Duration = elapsed
	s.result = res
	s.metrics.ObserveRun(StatusConverged, iterations, elapsed, res.ResidualNorm)
	span.SetAttributes(attribute.Int("iterations", iterations), attribute.Float64("residual_norm", res.ResidualNorm))
	s.logger.Info("calibration converged",
		"iteration", iterations,
		"residual_norm", res.ResidualNorm,
		"duration", elapsed,
	)
	return res, nil
}

func (s *Solver) solve(ctx context.Context, span trace.Span) (*Result, int, error) {
	s.result = nil
	s.last = nil
	for id, guess := range s.opts.InitialGuesses {
		c, _ := s.calibrated(id)
		if err := c.SetNodes(guess); err != nil {
			return nil, 0, fmt.Errorf("Solve %s: %w", s.id, err)
		}
	}

	lm := s.opts.Algorithm == LevenbergMarquardt
	lambda := s.cfg.Lambda
	x := mat.NewVecDense(s.registry.Len(), s.unknowns())

	var accepted *pass
	var acceptedX *mat.VecDense

	iter := 0
	for iter < s.cfg.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, iter, fmt.Errorf("Solve %s: %w", s.id, err)
		}
		iter++

		p, err := s.price()
		if err != nil {
			return nil, iter, fmt.Errorf("Solve %s: iteration %d: %w", s.id, iter, err)
		}
		s.last = p

		span.AddEvent("iteration", trace.WithAttributes(
			attribute.Int("iteration", iter),
			attribute.Float64("residual_norm", p.norm),
		))
		s.logger.Debug("iteration priced", "iteration", iter, "residual_norm", p.norm, "lambda", lambda)

		if math.IsNaN(p.norm) || math.IsInf(p.norm, 0) {
			return nil, iter, s.notConverged(iter, p.norm, "non-finite residual")
		}

		if lm {
			if accepted != nil && p.norm >= accepted.norm {
				lambda *= 2
				if lambda > s.cfg.MaxLambda {
					return nil, iter, s.notConverged(iter, accepted.norm, "damping exceeded maximum")
				}
				x.CloneFromVec(acceptedX)
				if err := s.setUnknowns(x); err != nil {
					return nil, iter, fmt.Errorf("Solve %s: %w", s.id, err)
				}
				p = accepted
				s.last = accepted
			} else {
				if accepted != nil {
					lambda /= 2
				}
				accepted = p
				acceptedX = mat.VecDenseCopyOf(x)
			}
		}

		if p.norm < s.cfg.Tolerance {
			return s.converged(p, iter), iter, nil
		}

		var dx *mat.VecDense
		if lm {
			dx, err = normalStep(p.jacobian, p.residuals, lambda, s.cfg.MaxCondition)
		} else {
			dx, err = gaussNewtonStep(p.jacobian, p.residuals, s.opts.Underdetermined == UnderdeterminedMinNorm, s.cfg.MaxCondition)
		}
		if err != nil {
			return nil, iter, fmt.Errorf("Solve %s: iteration %d: %w", s.id, iter, err)
		}

		step := floats.Norm(dx.RawVector().Data, 2)
		if step <= s.cfg.StallTolerance*(1+floats.Norm(x.RawVector().Data, 2)) {
			return nil, iter, s.notConverged(iter, p.norm, fmt.Sprintf("stalled, step norm %.3e", step))
		}

		x.AddVec(x, dx)
		if err := s.setUnknowns(x); err != nil {
			return nil, iter, fmt.Errorf("Solve %s: %w", s.id, err)
		}
	}

	norm := math.NaN()
	if s.last != nil {
		norm = s.last.norm
	}
	return nil, iter, s.notConverged(iter, norm, "maximum iterations reached")
}

func (s *Solver) notConverged(iter int, norm float64, reason string) error {
	return &ConvergenceError{ID: s.id, Iterations: iter, ResidualNorm: norm, Reason: reason}
}

// price evaluates every instrument at the current node values. Wait is the barrier
// before any node update.
func (s *Solver) price() (*pass, error) {
	n := len(s.opts.Instruments)
	rates := make([]dual.Number, n)

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, inst := range s.opts.Instruments {
		g.Go(func() error {
			r, err := inst.Rate(s.set)
			if err != nil {
				return fmt.Errorf("pricing %s: %w", s.labels[i], err)
			}
			rates[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reals := make([]float64, n)
	res := make([]float64, n)
	for i, r := range rates {
		reals[i] = r.Real()
		res[i] = reals[i] - s.opts.Targets[i]
	}
	return &pass{
		rates:     rates,
		reals:     reals,
		residuals: mat.NewVecDense(n, res),
		jacobian:  s.registry.Jacobian(rates),
		norm:      floats.Norm(res, 2),
	}, nil
}

func (s *Solver) converged(p *pass, iter int) *Result {
	nodes := make(map[string][]float64, len(s.opts.Curves))
	for _, c := range s.opts.Curves {
		nodes[c.ID()] = c.Values()
	}
	return &Result{
		ID:           s.id,
		Iterations:   iter,
		ResidualNorm: p.norm,
		Residuals:    append([]float64(nil), p.residuals.RawVector().Data...),
		Rates:        append([]float64(nil), p.reals...),
		Labels:       append([]string(nil), s.labels...),
		Jacobian:     mat.DenseCopyOf(p.jacobian),
		Unknowns:     s.registry.Tags(),
		Nodes:        nodes,
	}
}

func (s *Solver) calibrated(id string) (*curve.Curve, bool) {
	for _, c := range s.opts.Curves {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// unknowns reads the free node values in registry order.
func (s *Solver) unknowns() []float64 {
	x := make([]float64, 0, s.registry.Len())
	for _, c := range s.opts.Curves {
		values := c.Values()
		for _, i := range c.FreeIndices() {
			x = append(x, values[i])
		}
	}
	return x
}

// setUnknowns writes x back into the curves' free nodes.
func (s *Solver) setUnknowns(x *mat.VecDense) error {
	k := 0
	for _, c := range s.opts.Curves {
		values := c.Values()
		for _, i := range c.FreeIndices() {
			values[i] = x.AtVec(k)
			k++
		}
		if err := c.SetNodes(values); err != nil {
			return err
		}
	}
	return nil
}

// Errors returns the residual of every instrument at the last pricing pass, or nil
// before any pass.
func (s *Solver) Errors() []Residual {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return nil
	}
	out := make([]Residual, len(s.labels))
	for i, label := range s.labels {
		out[i] = Residual{
			Label:  label,
			Rate:   s.last.reals[i],
			Target: s.opts.Targets[i],
			Error:  s.last.residuals.AtVec(i),
		}
	}
	return out
}
