package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/ratecal/calendar"
	"github.com/meenmo/ratecal/utils"
)

func TestParseIndex(t *testing.T) {
	idx, err := ParseIndex(" sofr ")
	require.NoError(t, err)
	assert.Equal(t, SOFR, idx)

	idx, err = ParseIndex("cd91d")
	require.NoError(t, err)
	assert.Equal(t, CD91, idx)

	_, err = ParseIndex("LIBOR3M")
	assert.Error(t, err)
}

func TestEveryIndexHasConvention(t *testing.T) {
	for _, idx := range Indices() {
		c, err := Lookup(idx)
		require.NoError(t, err, idx)
		assert.Equal(t, idx, c.Index)
		assert.Positive(t, c.FrequencyMonths, idx)

		_, err = calendar.ParseID(string(c.Calendar))
		assert.NoError(t, err, idx)
		_, err = utils.ParseDayCount(string(c.DayCount))
		assert.NoError(t, err, idx)
	}
}

func TestIsOvernight(t *testing.T) {
	assert.True(t, SOFR.IsOvernight())
	assert.True(t, TONAR.IsOvernight())
	assert.False(t, EURIBOR6M.IsOvernight())
	assert.False(t, CD91.IsOvernight())
}
