package solver_test

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/meenmo/ratecal/curve"
	"github.com/meenmo/ratecal/dual"
	"github.com/meenmo/ratecal/solver"
	"github.com/meenmo/ratecal/solver/mocks"
)

func linearCurve(t *testing.T) *curve.Curve {
	t.Helper()
	c, err := curve.New("c", []float64{0, 10}, []float64{1, 1}, curve.WithInterpolation(curve.Linear))
	require.NoError(t, err)
	return c
}

func TestSolve_LinearInstrumentConvergesInOneStep(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	inst := mocks.NewMockInstrument(ctrl)

	var calls atomic.Int32
	inst.EXPECT().Rate(gomock.Any()).DoAndReturn(func(set curve.Set) (dual.Number, error) {
		calls.Add(1)
		c, err := set.Get("c")
		if err != nil {
			return dual.Number{}, err
		}
		v, err := c.ValueAt(10)
		if err != nil {
			return dual.Number{}, err
		}
		return dual.AddScalar(dual.MulScalar(v, 2), 1), nil
	}).Times(2)

	c := linearCurve(t)
	sv, err := solver.New(solver.Options{
		Curves:      []*curve.Curve{c},
		Instruments: []solver.Instrument{inst},
		Targets:     []float64{2.5},
		Labels:      []string{"linear"},
	})
	require.NoError(t, err)

	res, err := sv.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, int32(2), calls.Load())
	assert.InDelta(t, 0.75, c.Values()[1], 1e-15)
	assert.Equal(t, []string{"linear"}, res.Labels)
}

func TestSolve_PricingErrorAborts(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	good := mocks.NewMockInstrument(ctrl)
	bad := mocks.NewMockInstrument(ctrl)

	boom := errors.New("fixing missing")
	good.EXPECT().Rate(gomock.Any()).Return(dual.Variable(1, "c1"), nil).AnyTimes()
	bad.EXPECT().Rate(gomock.Any()).Return(dual.Number{}, boom)

	sv, err := solver.New(solver.Options{
		Curves:      []*curve.Curve{linearCurve(t)},
		Instruments: []solver.Instrument{good, bad},
		Targets:     []float64{1, 1},
		Labels:      []string{"good", "bad"},
	})
	require.NoError(t, err)

	_, err = sv.Solve(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "pricing bad")
	assert.NotErrorIs(t, err, solver.ErrNotConverged)
}

func TestSolve_NonFiniteRate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	inst := mocks.NewMockInstrument(ctrl)
	inst.EXPECT().Rate(gomock.Any()).Return(dual.FromGradient(math.NaN(), map[string]float64{"c1": 1}), nil)

	sv, err := solver.New(solver.Options{
		Curves:      []*curve.Curve{linearCurve(t)},
		Instruments: []solver.Instrument{inst},
		Targets:     []float64{1},
	})
	require.NoError(t, err)

	_, err = sv.Solve(context.Background())
	var cerr *solver.ConvergenceError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "non-finite residual", cerr.Reason)
}

func TestSolve_ZeroSensitivityIsIllPosed(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	inst := mocks.NewMockInstrument(ctrl)
	inst.EXPECT().Rate(gomock.Any()).Return(dual.Constant(3), nil)

	sv, err := solver.New(solver.Options{
		Curves:      []*curve.Curve{linearCurve(t)},
		Instruments: []solver.Instrument{inst},
		Targets:     []float64{1},
	})
	require.NoError(t, err)

	_, err = sv.Solve(context.Background())
	assert.ErrorIs(t, err, solver.ErrIllPosed)
}

func TestSolve_LabelerNamesInstruments(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	inst := mocks.NewMockInstrument(ctrl)
	named := mocks.NewMockLabeler(ctrl)
	named.EXPECT().Label().Return("3M depo").AnyTimes()
	inst.EXPECT().Rate(gomock.Any()).Return(dual.Number{}, errors.New("no quote"))

	sv, err := solver.New(solver.Options{
		Curves:      []*curve.Curve{linearCurve(t)},
		Instruments: []solver.Instrument{labeled{inst, named}},
		Targets:     []float64{1},
	})
	require.NoError(t, err)

	_, err = sv.Solve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pricing 3M depo")
}

type labeled struct {
	*mocks.MockInstrument
	*mocks.MockLabeler
}

func TestSolve_WorkersSeeSameNodes(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	c := linearCurve(t)

	const n = 8
	insts := make([]solver.Instrument, n)
	targets := make([]float64, n)
	for i := range insts {
		m := mocks.NewMockInstrument(ctrl)
		m.EXPECT().Rate(gomock.Any()).DoAndReturn(func(set curve.Set) (dual.Number, error) {
			crv, _ := set.Get("c")
			return crv.ValueAt(10)
		}).AnyTimes()
		insts[i] = m
		targets[i] = 0.9
	}

	sv, err := solver.New(solver.Options{
		Curves:      []*curve.Curve{c},
		Instruments: insts,
		Targets:     targets,
		Workers:     3,
	})
	require.NoError(t, err)

	res, err := sv.Solve(context.Background())
	require.NoError(t, err)
	for _, r := range res.Rates {
		assert.InDelta(t, 0.9, r, 1e-15)
	}
}
