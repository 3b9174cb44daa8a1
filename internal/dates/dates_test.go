package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 18, 15, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseNaturalPhrases(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"today", day(2026, 3, 18)},
		{"Tomorrow", day(2026, 3, 19)},
		{"next week", day(2026, 3, 25)},
		{"in a week", day(2026, 3, 25)},
		{"next month", day(2026, 4, 18)},
		{"in 2 days", day(2026, 3, 20)},
		{"in 10 days", day(2026, 3, 28)},
		{"in 2 weeks", day(2026, 4, 1)},
	}
	for _, c := range cases {
		got, err := ParseNatural(c.in, now)
		require.NoError(t, err, c.in)
		require.NotNil(t, got, c.in)
		assert.True(t, c.want.Equal(*got), "%s: got %v want %v", c.in, got, c.want)
	}
}

func TestParseNaturalExplicitDates(t *testing.T) {
	got, err := ParseNatural("2026-01-15", now)
	require.NoError(t, err)
	assert.Equal(t, day(2026, 1, 15), *got)

	got, err = ParseNatural("2026-01-15 09:30", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC), *got)
}

func TestParseNaturalEmptyMeansNoDueDate(t *testing.T) {
	got, err := ParseNatural("   ", now)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseNaturalUnknownInput(t *testing.T) {
	_, err := ParseNatural("whenever", now)
	assert.ErrorIs(t, err, ErrBadDate)
}

func TestFormatNatural(t *testing.T) {
	assert.Equal(t, "Today at 09:00",
		FormatNatural(time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "Tomorrow at 18:15",
		FormatNatural(time.Date(2026, 3, 19, 18, 15, 0, 0, time.UTC), now))
	assert.Equal(t, "Yesterday at 08:00",
		FormatNatural(time.Date(2026, 3, 17, 8, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "Mon Mar 30 10:00",
		FormatNatural(time.Date(2026, 3, 30, 10, 0, 0, 0, time.UTC), now))
}
