package instrument

import (
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/ratecal/calendar"
	"github.com/meenmo/ratecal/utils"
)

// ErrInvalidSchedule is returned for schedules that cannot be generated.
var ErrInvalidSchedule = errors.New("instrument: invalid schedule")

// Period is one accrual period of a swap leg, expressed in curve positions.
type Period struct {
	AccrualStart float64
	AccrualEnd   float64
	Payment      float64
	Accrual      float64 // year fraction
}

// ScheduleConfig describes a regular leg schedule.
type ScheduleConfig struct {
	Anchor          time.Time // curve anchor date, position 0
	Effective       time.Time
	Maturity        time.Time
	FrequencyMonths int
	Calendar        calendar.ID
	DayCount        utils.DayCount
	PayDelay        int // business days after accrual end

	// EndOfMonth rolls every coupon date to the last business day of its month when the
	// maturity is itself the last business day of its month.
	EndOfMonth bool
}

// BuildSchedule generates periods by rolling backward from maturity so that coupon dates
// align to the maturity date, with any stub at the front. Accrual dates are adjusted
// Modified Following; payments follow PayDelay business days after accrual end.
func BuildSchedule(cfg ScheduleConfig) ([]Period, error) {
	if cfg.FrequencyMonths <= 0 {
		return nil, fmt.Errorf("BuildSchedule: frequency %d months: %w", cfg.FrequencyMonths, ErrInvalidSchedule)
	}
	if !cfg.Maturity.After(cfg.Effective) {
		return nil, fmt.Errorf("BuildSchedule: maturity %s not after effective %s: %w",
			cfg.Maturity.Format("2006-01-02"), cfg.Effective.Format("2006-01-02"), ErrInvalidSchedule)
	}
	if cfg.Effective.Before(cfg.Anchor) {
		return nil, fmt.Errorf("BuildSchedule: effective %s before anchor %s: %w",
			cfg.Effective.Format("2006-01-02"), cfg.Anchor.Format("2006-01-02"), ErrInvalidSchedule)
	}

	eom := cfg.EndOfMonth && calendar.IsEndOfMonth(cfg.Calendar, cfg.Maturity)

	// Unadjusted dates rolling backward from maturity.
	var unadjusted []time.Time
	for k := 0; ; k++ {
		current := utils.AddMonth(cfg.Maturity, -k*cfg.FrequencyMonths)
		if eom {
			current = calendar.LastBusinessDayOfMonth(cfg.Calendar, current)
		}
		if !current.After(cfg.Effective) {
			break
		}
		unadjusted = append(unadjusted, current)
	}
	unadjusted = append(unadjusted, cfg.Effective)
	utils.SortDates(unadjusted)

	periods := make([]Period, 0, len(unadjusted)-1)
	for i := 0; i < len(unadjusted)-1; i++ {
		accrualStart := calendar.Adjust(cfg.Calendar, unadjusted[i])
		accrualEnd := calendar.Adjust(cfg.Calendar, unadjusted[i+1])
		payDate := calendar.AddBusinessDays(cfg.Calendar, accrualEnd, cfg.PayDelay)

		periods = append(periods, Period{
			AccrualStart: utils.Position(cfg.Anchor, accrualStart),
			AccrualEnd:   utils.Position(cfg.Anchor, accrualEnd),
			Payment:      utils.Position(cfg.Anchor, payDate),
			Accrual:      utils.YearFraction(accrualStart, accrualEnd, cfg.DayCount),
		})
	}
	return periods, nil
}
