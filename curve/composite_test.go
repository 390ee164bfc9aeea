package curve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/ratecal/curve"
)

func TestComposite_ZeroSpreadIsIdentity(t *testing.T) {
	t.Parallel()

	base := newCurve(t, curve.LogLinear)
	spread, err := curve.New("spd", testPositions, []float64{1, 1, 1, 1, 1})
	require.NoError(t, err)

	for _, comp := range []curve.Composition{curve.Product, curve.LogSum} {
		c, err := curve.NewComposite("combo", []curve.DiscountCurve{base, spread}, curve.WithComposition(comp))
		require.NoError(t, err)

		for _, x := range []float64{0, 15, 90, 250, 365, 500} {
			want, err := base.ValueAt(x)
			require.NoError(t, err)
			got, err := c.ValueAt(x)
			require.NoError(t, err)

			assert.InDelta(t, want.Real(), got.Real(), 1e-14, "%s x=%g", comp, x)
			for _, tag := range base.FreeVars() {
				assert.InDelta(t, want.Gradient1(tag), got.Gradient1(tag), 1e-14, "%s x=%g %s", comp, x, tag)
			}
		}
	}
}

func TestComposite_CarriesBothCurvesSensitivities(t *testing.T) {
	t.Parallel()

	base := newCurve(t, curve.LogLinear)
	spread, err := curve.New("spd", []float64{0, 365}, []float64{1, 0.99})
	require.NoError(t, err)

	c, err := curve.NewComposite("combo", []curve.DiscountCurve{base, spread})
	require.NoError(t, err)

	got, err := c.ValueAt(365)
	require.NoError(t, err)
	assert.InDelta(t, 0.95*0.99, got.Real(), 1e-15)
	assert.InDelta(t, 0.99, got.Gradient1("sofr4"), 1e-15)
	assert.InDelta(t, 0.95, got.Gradient1("spd1"), 1e-15)
	assert.Equal(t, []string{"sofr4", "spd1"}, got.Vars())
}

func TestComposite_OrderIndependent(t *testing.T) {
	t.Parallel()

	base := newCurve(t, curve.LogLinear)
	spread, err := curve.New("spd", []float64{0, 180, 365}, []float64{1, 0.998, 0.995})
	require.NoError(t, err)

	ab, err := curve.NewComposite("ab", []curve.DiscountCurve{base, spread})
	require.NoError(t, err)
	ba, err := curve.NewComposite("ba", []curve.DiscountCurve{spread, base})
	require.NoError(t, err)

	for _, x := range []float64{45, 200, 400} {
		v1, err := ab.ValueAt(x)
		require.NoError(t, err)
		v2, err := ba.ValueAt(x)
		require.NoError(t, err)
		assert.InDelta(t, v1.Real(), v2.Real(), 1e-15)
		assert.Equal(t, v1.Vars(), v2.Vars())
		for i, g := range v1.Gradient() {
			assert.InDelta(t, g, v2.Gradient()[i], 1e-15)
		}
	}
}

func TestComposite_NormalizesByAnchorValue(t *testing.T) {
	t.Parallel()

	a, err := curve.New("a", []float64{0, 100}, []float64{2, 1.8})
	require.NoError(t, err)
	b, err := curve.New("b", []float64{0, 100}, []float64{1, 0.9})
	require.NoError(t, err)

	c, err := curve.NewComposite("ab", []curve.DiscountCurve{a, b})
	require.NoError(t, err)
	got, err := c.ValueAt(100)
	require.NoError(t, err)
	assert.InDelta(t, 0.9*0.9, got.Real(), 1e-15)
}

func TestComposite_Errors(t *testing.T) {
	t.Parallel()

	base := newCurve(t, curve.LogLinear)
	shifted, err := curve.New("late", []float64{10, 100}, []float64{1, 0.99})
	require.NoError(t, err)

	_, err = curve.NewComposite("x", []curve.DiscountCurve{base, shifted})
	assert.ErrorIs(t, err, curve.ErrAnchorMismatch)

	_, err = curve.NewComposite("x", nil)
	assert.ErrorIs(t, err, curve.ErrNoConstituents)

	_, err = curve.NewComposite("", []curve.DiscountCurve{base})
	assert.ErrorIs(t, err, curve.ErrEmptyID)

	_, err = curve.NewComposite("x", []curve.DiscountCurve{base}, curve.WithComposition("max"))
	assert.ErrorIs(t, err, curve.ErrUnknownComposition)
}

func TestSet(t *testing.T) {
	t.Parallel()

	base := newCurve(t, curve.LogLinear)
	spread, err := curve.New("spd", testPositions, []float64{1, 1, 1, 1, 1})
	require.NoError(t, err)
	combo, err := curve.NewComposite("combo", []curve.DiscountCurve{base, spread})
	require.NoError(t, err)

	s, err := curve.NewSet(base, spread, combo)
	require.NoError(t, err)
	assert.Equal(t, []string{"combo", "sofr", "spd"}, s.IDs())

	got, err := s.Get("combo")
	require.NoError(t, err)
	assert.Equal(t, "combo", got.ID())

	_, err = s.Get("estr")
	assert.ErrorIs(t, err, curve.ErrCurveNotFound)

	_, err = curve.NewSet(base, base)
	assert.ErrorIs(t, err, curve.ErrDuplicateID)

	_, err = curve.NewSet(base, nil)
	assert.ErrorIs(t, err, curve.ErrNilCurve)
}
