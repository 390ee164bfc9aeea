package instrument_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/ratecal/calendar"
	"github.com/meenmo/ratecal/curve"
	"github.com/meenmo/ratecal/instrument"
	"github.com/meenmo/ratecal/utils"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := utils.ParseDate(s)
	require.NoError(t, err)
	return d
}

func flatSet(t *testing.T, rate float64, positions ...float64) (*curve.Curve, curve.Set) {
	t.Helper()
	values := make([]float64, len(positions))
	for i, p := range positions {
		values[i] = 1 / (1 + rate*p/360)
	}
	c, err := curve.New("usd", positions, values)
	require.NoError(t, err)
	set, err := curve.NewSet(c)
	require.NoError(t, err)
	return c, set
}

func TestDeposit_Rate(t *testing.T) {
	t.Parallel()

	_, set := flatSet(t, 0.05, 0, 30, 90)
	dep := &instrument.Deposit{Curve: "usd", Start: 0, End: 90}

	got, err := dep.Rate(set)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, got.Real(), 1e-12)

	// rate = (1/DF - 1)·360/90·100, so ∂rate/∂DF = -400/DF².
	df := 1 / (1 + 0.05*90.0/360)
	assert.InDelta(t, -400/(df*df), got.Gradient1("usd2"), 1e-9)
	assert.Equal(t, []string{"usd2"}, got.Vars())
	assert.Equal(t, "usd deposit 0-90", dep.Label())
}

func TestDeposit_FromDates(t *testing.T) {
	t.Parallel()

	anchor := date(t, "2025-01-02")
	dep := instrument.NewDeposit("usd", anchor, anchor, date(t, "2025-04-02"), utils.ACT360)
	assert.Equal(t, 0.0, dep.Start)
	assert.Equal(t, 90.0, dep.End)
	assert.Equal(t, 360.0, dep.Basis)
}

func TestDeposit_MissingCurve(t *testing.T) {
	t.Parallel()

	_, set := flatSet(t, 0.05, 0, 90)
	_, err := (&instrument.Deposit{Curve: "eur", End: 90}).Rate(set)
	assert.ErrorIs(t, err, curve.ErrCurveNotFound)
}

func TestBuildSchedule(t *testing.T) {
	t.Parallel()

	anchor := date(t, "2025-01-02")
	periods, err := instrument.BuildSchedule(instrument.ScheduleConfig{
		Anchor:          anchor,
		Effective:       anchor,
		Maturity:        date(t, "2026-01-02"),
		FrequencyMonths: 3,
		Calendar:        calendar.NONE,
		DayCount:        utils.ACT360,
	})
	require.NoError(t, err)
	require.Len(t, periods, 4)

	ends := []float64{90, 181, 273, 365}
	start := 0.0
	for i, p := range periods {
		assert.Equal(t, start, p.AccrualStart)
		assert.Equal(t, ends[i], p.AccrualEnd)
		assert.Equal(t, ends[i], p.Payment)
		assert.InDelta(t, (ends[i]-start)/360, p.Accrual, 1e-15)
		start = ends[i]
	}
}

func TestBuildSchedule_FrontStubAndPayDelay(t *testing.T) {
	t.Parallel()

	anchor := date(t, "2025-01-02")
	periods, err := instrument.BuildSchedule(instrument.ScheduleConfig{
		Anchor:          anchor,
		Effective:       anchor,
		Maturity:        date(t, "2025-11-15"), // Saturday
		FrequencyMonths: 6,
		Calendar:        calendar.NONE,
		DayCount:        utils.ACT360,
		PayDelay:        2,
	})
	require.NoError(t, err)
	require.Len(t, periods, 2)

	assert.Equal(t, 0.0, periods[0].AccrualStart)
	assert.Equal(t, 133.0, periods[0].AccrualEnd)
	assert.Equal(t, 133.0, periods[1].AccrualStart)
	assert.Equal(t, 319.0, periods[1].AccrualEnd)
	assert.Equal(t, 321.0, periods[1].Payment)
}

func TestBuildSchedule_EndOfMonth(t *testing.T) {
	t.Parallel()

	anchor := date(t, "2024-10-31")
	cfg := instrument.ScheduleConfig{
		Anchor:          anchor,
		Effective:       anchor,
		Maturity:        date(t, "2025-04-30"),
		FrequencyMonths: 3,
		Calendar:        calendar.USD,
		DayCount:        utils.ACT360,
	}

	plain, err := instrument.BuildSchedule(cfg)
	require.NoError(t, err)
	require.Len(t, plain, 2)
	assert.Equal(t, 91.0, plain[0].AccrualEnd) // 2025-01-30

	cfg.EndOfMonth = true
	eom, err := instrument.BuildSchedule(cfg)
	require.NoError(t, err)
	require.Len(t, eom, 2)
	assert.Equal(t, 92.0, eom[0].AccrualEnd) // 2025-01-31
	assert.Equal(t, 92.0, eom[1].AccrualStart)
	assert.Equal(t, 181.0, eom[1].AccrualEnd)

	// A maturity that is not a month end keeps the plain roll.
	cfg.Maturity = date(t, "2025-04-29")
	mid, err := instrument.BuildSchedule(cfg)
	require.NoError(t, err)
	assert.Equal(t, 90.0, mid[0].AccrualEnd) // 2025-01-29
}

func TestBuildSchedule_Invalid(t *testing.T) {
	t.Parallel()

	anchor := date(t, "2025-01-02")
	cases := []instrument.ScheduleConfig{
		{Anchor: anchor, Effective: anchor, Maturity: anchor, FrequencyMonths: 3},
		{Anchor: anchor, Effective: anchor, Maturity: date(t, "2026-01-02"), FrequencyMonths: 0},
		{Anchor: anchor, Effective: date(t, "2024-12-01"), Maturity: date(t, "2026-01-02"), FrequencyMonths: 3},
	}
	for _, cfg := range cases {
		_, err := instrument.BuildSchedule(cfg)
		assert.ErrorIs(t, err, instrument.ErrInvalidSchedule)
	}
}

func TestSwap_SingleCurveTelescopes(t *testing.T) {
	t.Parallel()

	c, set := flatSet(t, 0.04, 0, 90, 181, 273, 365)
	schedule := []instrument.Period{
		{AccrualStart: 0, AccrualEnd: 181, Payment: 181, Accrual: 181.0 / 360},
		{AccrualStart: 181, AccrualEnd: 365, Payment: 365, Accrual: 184.0 / 360},
	}
	swap := &instrument.Swap{DiscountCurve: "usd", Schedule: schedule}

	got, err := swap.Rate(set)
	require.NoError(t, err)

	v := c.Values()
	annuity := v[2]*181.0/360 + v[4]*184.0/360
	assert.InDelta(t, (v[0]-v[4])/annuity*100, got.Real(), 1e-12)
	assert.Equal(t, "usd/usd swap 365", swap.Label())
}

func TestSwap_GradientMatchesBump(t *testing.T) {
	t.Parallel()

	positions := []float64{0, 90, 181, 273, 365}
	schedule := []instrument.Period{
		{AccrualStart: 0, AccrualEnd: 120, Payment: 122, Accrual: 120.0 / 360},
		{AccrualStart: 120, AccrualEnd: 300, Payment: 302, Accrual: 180.0 / 360},
	}
	base := []float64{1, 0.99, 0.98, 0.97, 0.96}

	price := func(values []float64) float64 {
		c, err := curve.New("usd", positions, values)
		require.NoError(t, err)
		set, err := curve.NewSet(c)
		require.NoError(t, err)
		r, err := (&instrument.Swap{DiscountCurve: "usd", Schedule: schedule}).Rate(set)
		require.NoError(t, err)
		return r.Real()
	}

	c, err := curve.New("usd", positions, base)
	require.NoError(t, err)
	set, err := curve.NewSet(c)
	require.NoError(t, err)
	got, err := (&instrument.Swap{DiscountCurve: "usd", Schedule: schedule}).Rate(set)
	require.NoError(t, err)

	const h = 1e-7
	for i, tag := range c.FreeVars() {
		up := append([]float64(nil), base...)
		dn := append([]float64(nil), base...)
		up[i+1] += h
		dn[i+1] -= h
		fd := (price(up) - price(dn)) / (2 * h)
		assert.InDelta(t, fd, got.Gradient1(tag), 1e-5*max(1, abs(fd)), tag)
	}
}

func TestSwap_DualCurve(t *testing.T) {
	t.Parallel()

	disc, err := curve.New("ois", []float64{0, 365}, []float64{1, 0.96})
	require.NoError(t, err)
	fcst, err := curve.New("libor", []float64{0, 365}, []float64{1, 0.95})
	require.NoError(t, err)
	set, err := curve.NewSet(disc, fcst)
	require.NoError(t, err)

	swap := &instrument.Swap{
		Name:          "1Y",
		DiscountCurve: "ois",
		ForecastCurve: "libor",
		Schedule:      []instrument.Period{{AccrualStart: 0, AccrualEnd: 365, Payment: 365, Accrual: 1}},
	}
	got, err := swap.Rate(set)
	require.NoError(t, err)

	// One period: the par rate is the forecast forward, independent of discounting.
	assert.InDelta(t, (1/0.95-1)*100, got.Real(), 1e-12)
	assert.InDelta(t, 0, got.Gradient1("ois1"), 1e-12)
	assert.NotZero(t, got.Gradient1("libor1"))
	assert.Equal(t, "1Y", swap.Label())
}

func TestSpread_Rate(t *testing.T) {
	t.Parallel()

	_, set := flatSet(t, 0.05, 0, 30, 90)
	a := &instrument.Deposit{Curve: "usd", End: 90}
	b := &instrument.Deposit{Curve: "usd", End: 30}
	s := &instrument.Spread{A: a, B: b}

	got, err := s.Rate(set)
	require.NoError(t, err)
	ra, _ := a.Rate(set)
	rb, _ := b.Rate(set)
	assert.InDelta(t, (ra.Real()-rb.Real())*100, got.Real(), 1e-10)
	assert.Equal(t, "usd deposit 0-90 vs usd deposit 0-30", s.Label())
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
