package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/meenmo/ratecal/solver"
	"github.com/meenmo/ratecal/utils"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // calibration did not converge or was ill-posed
	ExitCommandError = 2 // unreadable or invalid problem, bad flags
)

// outputDecimals bounds printed precision so reports are stable across platforms.
const outputDecimals = 10

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode extracts the exit code from err. Errors that are not ExitErrors (cobra flag
// errors among them) are command errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// Report is the output of a converged calibration.
type Report struct {
	ID           string             `json:"id"`
	Iterations   int                `json:"iterations"`
	ResidualNorm float64            `json:"residual_norm"`
	Curves       []CurveReport      `json:"curves"`
	Instruments  []InstrumentReport `json:"instruments"`
	Risk         []RiskReport       `json:"risk,omitempty"`
}

type CurveReport struct {
	ID    string       `json:"id"`
	Nodes []NodeReport `json:"nodes"`
}

type NodeReport struct {
	Date     string  `json:"date"`
	Position float64 `json:"position"`
	Value    float64 `json:"value"`
}

type InstrumentReport struct {
	Label  string  `json:"label"`
	Rate   float64 `json:"rate"`
	Target float64 `json:"target"`
	Error  float64 `json:"error"`
}

// RiskReport is a risk instrument's rate and its sensitivity to each quote, in rate units
// per unit of quote.
type RiskReport struct {
	Label  string        `json:"label"`
	Rate   float64       `json:"rate"`
	Deltas []DeltaReport `json:"deltas"`
}

type DeltaReport struct {
	Instrument string  `json:"instrument"`
	Delta      float64 `json:"delta"`
}

// Response wraps every JSON output.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   *Report        `json:"data,omitempty"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Message   string             `json:"message"`
	Residuals []InstrumentReport `json:"residuals,omitempty"`
}

// NewReport builds a report from a result and the model it was solved on.
func NewReport(m *Model, res *solver.Result) *Report {
	r := &Report{
		ID:           res.ID,
		Iterations:   res.Iterations,
		ResidualNorm: round(res.ResidualNorm),
	}
	for _, c := range m.Options.Curves {
		cr := CurveReport{ID: c.ID()}
		dates := m.Dates[c.ID()]
		values := res.Nodes[c.ID()]
		for i, pos := range c.Positions() {
			cr.Nodes = append(cr.Nodes, NodeReport{
				Date:     dates[i].Format(time.DateOnly),
				Position: pos,
				Value:    round(values[i]),
			})
		}
		r.Curves = append(r.Curves, cr)
	}
	for i, label := range res.Labels {
		r.Instruments = append(r.Instruments, InstrumentReport{
			Label:  label,
			Rate:   round(res.Rates[i]),
			Target: m.Options.Targets[i],
			Error:  round(res.Residuals[i]),
		})
	}
	return r
}

// AddRisk prices each risk instrument off the calibrated curves and appends its deltas.
func (r *Report) AddRisk(sv *solver.Solver, risk []solver.Instrument, labels []string) error {
	for i, inst := range risk {
		v, err := inst.Rate(sv.Curves())
		if err != nil {
			return fmt.Errorf("risk %d: %w", i, err)
		}
		deltas, err := sv.Delta(v)
		if err != nil {
			return fmt.Errorf("risk %d: %w", i, err)
		}
		rr := RiskReport{Label: fmt.Sprintf("risk %d", i), Rate: round(v.Real())}
		if l, ok := inst.(solver.Labeler); ok && l.Label() != "" {
			rr.Label = l.Label()
		}
		for j, d := range deltas {
			rr.Deltas = append(rr.Deltas, DeltaReport{Instrument: labels[j], Delta: round(d)})
		}
		r.Risk = append(r.Risk, rr)
	}
	return nil
}

func residualReports(rows []solver.Residual) []InstrumentReport {
	out := make([]InstrumentReport, len(rows))
	for i, row := range rows {
		out[i] = InstrumentReport{
			Label:  row.Label,
			Rate:   round(row.Rate),
			Target: row.Target,
			Error:  round(row.Error),
		}
	}
	return out
}

// round drops noise below the printed precision, including negative zero.
func round(x float64) float64 {
	r := utils.RoundTo(x, outputDecimals)
	if r == 0 {
		return 0
	}
	return r
}

func writeJSON(w io.Writer, resp Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func writeText(w io.Writer, r *Report) error {
	fmt.Fprintf(w, "run %s converged in %d iterations (residual %.10f)\n", r.ID, r.Iterations, r.ResidualNorm)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range r.Curves {
		fmt.Fprintf(tw, "\ncurve %s\n", c.ID)
		fmt.Fprintln(tw, "DATE\tPOSITION\tVALUE")
		for _, n := range c.Nodes {
			fmt.Fprintf(tw, "%s\t%g\t%.10f\n", n.Date, n.Position, n.Value)
		}
	}
	fmt.Fprintln(tw)
	writeResidualTable(tw, r.Instruments)
	for _, rr := range r.Risk {
		fmt.Fprintf(tw, "\nrisk %s (rate %.10f)\n", rr.Label, rr.Rate)
		fmt.Fprintln(tw, "INSTRUMENT\tDELTA")
		for _, d := range rr.Deltas {
			fmt.Fprintf(tw, "%s\t%.10f\n", d.Instrument, d.Delta)
		}
	}
	return tw.Flush()
}

func writeResidualTable(w io.Writer, rows []InstrumentReport) {
	fmt.Fprintln(w, "INSTRUMENT\tRATE\tTARGET\tERROR")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%.10f\t%g\t%.10f\n", row.Label, row.Rate, row.Target, row.Error)
	}
}

func writeTextError(w io.Writer, msg string, rows []InstrumentReport) error {
	fmt.Fprintf(w, "Error: %s\n", msg)
	if len(rows) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw)
	writeResidualTable(tw, rows)
	return tw.Flush()
}
