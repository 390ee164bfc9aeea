package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/meenmo/ratecal/solver"
)

// SolveOptions holds flags for the solve command.
type SolveOptions struct {
	*RootOptions
	File    string
	Metrics bool
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Calibrate the curves of a problem file",
		Long: `Calibrate discount curves so that the problem's instruments reprice to their quotes.

The problem is read from --file (YAML or JSON) or from stdin. Calibrated node values,
repriced rates and residuals are written to stdout.

Example:
  calibrate solve -f testdata/usd_sofr.yaml
  calibrate solve --format json < problem.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "problem file (default stdin)")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "write calibration metrics to stderr")

	return cmd
}

func runSolve(cmd *cobra.Command, opts *SolveOptions) error {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	problem, err := ReadProblem(opts.File, cmd.InOrStdin())
	if err != nil {
		return fail(cmd, opts.RootOptions, WrapExitError(ExitCommandError, "invalid problem", err), nil)
	}
	model, err := problem.Build()
	if err != nil {
		return fail(cmd, opts.RootOptions, WrapExitError(ExitCommandError, "invalid problem", err), nil)
	}

	reg := prometheus.NewRegistry()
	sv, err := solver.New(model.Options,
		solver.WithLogger(logger),
		solver.WithMetrics(solver.NewMetrics(reg)),
	)
	if err != nil {
		code := ExitCommandError
		if errors.Is(err, solver.ErrIllPosed) {
			code = ExitFailure
		}
		return fail(cmd, opts.RootOptions, WrapExitError(code, "invalid problem", err), nil)
	}

	res, solveErr := sv.Solve(cmd.Context())
	if opts.Metrics {
		if err := writeMetrics(cmd, reg); err != nil {
			logger.Warn("writing metrics", "error", err)
		}
	}
	if solveErr != nil {
		code := ExitFailure
		if errors.Is(solveErr, context.Canceled) || errors.Is(solveErr, context.DeadlineExceeded) {
			code = ExitCommandError
		}
		return fail(cmd, opts.RootOptions, WrapExitError(code, "calibration failed", solveErr), residualReports(sv.Errors()))
	}

	report := NewReport(model, res)
	if err := report.AddRisk(sv, model.Risk, res.Labels); err != nil {
		return fail(cmd, opts.RootOptions, WrapExitError(ExitFailure, "risk failed", err), nil)
	}
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), Response{Status: "ok", Data: report})
	}
	return writeText(cmd.OutOrStdout(), report)
}

// fail writes err in the configured format and returns it for the exit code.
func fail(cmd *cobra.Command, opts *RootOptions, err *ExitError, rows []InstrumentReport) error {
	var werr error
	if opts.Format == "json" {
		werr = writeJSON(cmd.OutOrStdout(), Response{
			Status: "error",
			Error:  &ErrorResponse{Message: err.Error(), Residuals: rows},
		})
	} else {
		werr = writeTextError(cmd.OutOrStdout(), err.Error(), rows)
	}
	if werr != nil {
		return fmt.Errorf("%w (writing output: %v)", err, werr)
	}
	return err
}

func writeMetrics(cmd *cobra.Command, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(cmd.ErrOrStderr(), mf); err != nil {
			return err
		}
	}
	return nil
}
