package market

import (
	"fmt"

	"github.com/meenmo/ratecal/calendar"
	"github.com/meenmo/ratecal/utils"
)

// Convention describes how deposits and par swaps on an index are quoted. Swaps use the
// fixed leg's schedule for both legs.
type Convention struct {
	Index           Index
	Calendar        calendar.ID
	DayCount        utils.DayCount
	FrequencyMonths int
	SpotLagDays     int // business days from trade to effective date
	PayDelayDays    int
}

var conventions = map[Index]Convention{
	SOFR: {
		Index:           SOFR,
		Calendar:        calendar.USD,
		DayCount:        utils.ACT360,
		FrequencyMonths: 12,
		SpotLagDays:     2,
		PayDelayDays:    2,
	},
	ESTR: {
		Index:           ESTR,
		Calendar:        calendar.TARGET,
		DayCount:        utils.ACT360,
		FrequencyMonths: 12,
		SpotLagDays:     2,
		PayDelayDays:    1,
	},
	TONAR: {
		Index:           TONAR,
		Calendar:        calendar.JPN,
		DayCount:        utils.ACT365F,
		FrequencyMonths: 12,
		SpotLagDays:     2,
		PayDelayDays:    2,
	},
	// EUR IRS fixed legs: annual ACT/360 against 3M, 30/360 against 6M.
	EURIBOR3M: {
		Index:           EURIBOR3M,
		Calendar:        calendar.TARGET,
		DayCount:        utils.ACT360,
		FrequencyMonths: 12,
		SpotLagDays:     2,
		PayDelayDays:    1,
	},
	EURIBOR6M: {
		Index:           EURIBOR6M,
		Calendar:        calendar.TARGET,
		DayCount:        utils.Thirty360,
		FrequencyMonths: 12,
		SpotLagDays:     2,
		PayDelayDays:    2,
	},
	TIBOR3M: {
		Index:           TIBOR3M,
		Calendar:        calendar.JPN,
		DayCount:        utils.ACT365F,
		FrequencyMonths: 6,
		SpotLagDays:     2,
	},
	TIBOR6M: {
		Index:           TIBOR6M,
		Calendar:        calendar.JPN,
		DayCount:        utils.ACT365F,
		FrequencyMonths: 6,
		SpotLagDays:     2,
	},
	CD91: {
		Index:           CD91,
		Calendar:        calendar.KRW,
		DayCount:        utils.ACT365F,
		FrequencyMonths: 3,
		SpotLagDays:     1,
	},
}

// Lookup returns the convention of idx.
func Lookup(idx Index) (Convention, error) {
	c, ok := conventions[idx]
	if !ok {
		return Convention{}, fmt.Errorf("Lookup: no convention for %q", idx)
	}
	return c, nil
}

// Indices returns the supported indices.
func Indices() []Index {
	return []Index{SOFR, ESTR, TONAR, EURIBOR3M, EURIBOR6M, TIBOR3M, TIBOR6M, CD91}
}
