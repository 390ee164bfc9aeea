package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/meenmo/ratecal/calendar"
	"github.com/meenmo/ratecal/curve"
	"github.com/meenmo/ratecal/instrument"
	"github.com/meenmo/ratecal/solver"
	"github.com/meenmo/ratecal/utils"
)

func main() {
	anchor, _ := utils.ParseDate("2025-01-02")

	// SOFR par quotes (%), and a term basis over SOFR (bp).
	sofrQuotes := map[string]float64{
		"1Y": 4.10,
		"2Y": 3.90,
		"3Y": 3.80,
		"5Y": 3.75,
	}
	tenors := []string{"1Y", "2Y", "3Y", "5Y"}
	basisQuotes := map[string]float64{
		"1Y": 18,
		"5Y": 24,
	}

	sofr := mustCurve("sofr", anchor, tenors)
	basis := mustCurve("basis", anchor, []string{"1Y", "5Y"})
	term, err := curve.NewComposite("term", []curve.DiscountCurve{sofr, basis})
	if err != nil {
		log.Fatal(err)
	}

	var (
		instruments []solver.Instrument
		targets     []float64
	)
	for _, tenor := range tenors {
		instruments = append(instruments, mustSwap("SOFR "+tenor, anchor, tenor, 12, "sofr", ""))
		targets = append(targets, sofrQuotes[tenor])
	}
	for _, tenor := range []string{"1Y", "5Y"} {
		instruments = append(instruments, &instrument.Spread{
			Name: "TERM/SOFR " + tenor,
			A:    mustSwap("", anchor, tenor, 3, "sofr", "term"),
			B:    mustSwap("", anchor, tenor, 3, "sofr", ""),
		})
		targets = append(targets, basisQuotes[tenor])
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	sv, err := solver.New(solver.Options{
		Curves:      []*curve.Curve{sofr, basis},
		Extra:       []curve.DiscountCurve{term},
		Instruments: instruments,
		Targets:     targets,
	}, solver.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}

	res, err := sv.Solve(context.Background())
	if err != nil {
		for _, row := range sv.Errors() {
			fmt.Printf("%-12s rate %.6f target %.6f error %+.2e\n", row.Label, row.Rate, row.Target, row.Error)
		}
		log.Fatal(err)
	}
	fmt.Printf("Converged in %d iterations (residual %.2e)\n", res.Iterations, res.ResidualNorm)
	for _, id := range []string{"sofr", "basis"} {
		fmt.Printf("%s: %v\n", id, res.Nodes[id])
	}

	// Sensitivity of an off-market 4Y term swap to each quote.
	trade := mustSwap("4Y term", anchor, "4Y", 3, "sofr", "term")
	rate, err := trade.Rate(sv.Curves())
	if err != nil {
		log.Fatal(err)
	}
	deltas, err := sv.DeltaByLabel(rate)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("4Y term par rate: %.6f%%\n", rate.Real())
	for _, label := range res.Labels {
		fmt.Printf("  d/d %-12s %+.6f\n", label, deltas[label])
	}
}

func mustCurve(id string, anchor time.Time, tenors []string) *curve.Curve {
	positions := []float64{0}
	for _, tenor := range tenors {
		d, err := calendar.AddTenor(calendar.USD, anchor, tenor)
		if err != nil {
			log.Fatal(err)
		}
		positions = append(positions, utils.Position(anchor, d))
	}
	values := make([]float64, len(positions))
	for i := range values {
		values[i] = 1
	}
	c, err := curve.New(id, positions, values)
	if err != nil {
		log.Fatal(err)
	}
	return c
}

func mustSwap(name string, anchor time.Time, tenor string, freq int, disc, fcst string) *instrument.Swap {
	years, err := utils.TenorToYears(tenor)
	if err != nil {
		log.Fatal(err)
	}
	schedule, err := instrument.BuildSchedule(instrument.ScheduleConfig{
		Anchor:          anchor,
		Effective:       anchor,
		Maturity:        utils.AddMonth(anchor, int(12*years)),
		FrequencyMonths: freq,
		Calendar:        calendar.USD,
		DayCount:        utils.ACT360,
		PayDelay:        2,
	})
	if err != nil {
		log.Fatal(err)
	}
	return &instrument.Swap{Name: name, DiscountCurve: disc, ForecastCurve: fcst, Schedule: schedule}
}
