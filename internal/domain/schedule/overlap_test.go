package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidShiftRange(t *testing.T) {
	t.Parallel()

	cases := []struct {
		start, end string
		want       bool
	}{
		{"09:00", "17:00", true},
		{"22:00", "06:00", true}, // night shift
		{"23:00", "23:00", false},
		{"00:00", "00:00", false},
		{"23:59", "00:00", true}, // one-minute wrap
		{"9:00", "17:00", false}, // not zero-padded
		{"09:00", "25:00", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsValidShiftRange(c.start, c.end),
			"IsValidShiftRange(%q, %q)", c.start, c.end)
	}
}

func TestRangesOverlapSameDay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     string
		want                           bool
	}{
		{"partial overlap", "09:00", "13:00", "12:00", "17:00", true},
		{"back to back", "09:00", "13:00", "13:00", "17:00", false},
		{"disjoint", "06:00", "09:00", "10:00", "12:00", false},
		{"contained", "08:00", "18:00", "10:00", "12:00", true},
		{"identical", "09:00", "17:00", "09:00", "17:00", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := RangesOverlap(c.aStart, c.aEnd, c.bStart, c.bEnd)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
			// Overlap is symmetric.
			rev, err := RangesOverlap(c.bStart, c.bEnd, c.aStart, c.aEnd)
			require.NoError(t, err)
			assert.Equal(t, c.want, rev)
		})
	}
}

func TestRangesOverlapNightShifts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		// Raw minute comparison would miss this: 23:00-02:00 vs 01:00-03:00
		// share 01:00-02:00 after the wrap.
		{"wrap tail overlaps morning shift", "23:00", "02:00", "01:00", "03:00", true},
		{"two night shifts overlapping", "22:00", "06:00", "23:00", "02:00", true},
		{"night vs evening head", "22:00", "06:00", "20:00", "23:00", true},
		{"night vs midday", "22:00", "06:00", "09:00", "17:00", false},
		{"night tail touches day start", "22:00", "06:00", "06:00", "14:00", false},
		{"wrap to exactly midnight", "23:59", "00:00", "00:00", "08:00", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := RangesOverlap(c.aStart, c.aEnd, c.bStart, c.bEnd)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestRangesOverlapInvalidClock(t *testing.T) {
	t.Parallel()

	_, err := RangesOverlap("nope", "17:00", "09:00", "12:00")
	assert.Error(t, err)
}

func TestShiftsOverlap(t *testing.T) {
	t.Parallel()

	morning := ShiftDefinition{StartTime: "09:00", EndTime: "13:00"}
	midday := ShiftDefinition{StartTime: "12:00", EndTime: "17:00"}
	afternoon := ShiftDefinition{StartTime: "13:00", EndTime: "17:00"}

	got, err := ShiftsOverlap(morning, midday)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = ShiftsOverlap(morning, afternoon)
	require.NoError(t, err)
	assert.False(t, got)
}
