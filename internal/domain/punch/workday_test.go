package punch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateEmptyWindow(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Aggregate(nil))
	assert.Nil(t, Aggregate([]Event{}))
}

func TestAggregateRegularDayWithBreak(t *testing.T) {
	t.Parallel()

	// IN@08:00, BREAK@12:00, RESUME@12:30, OUT@16:00
	events := eventsAt(t, "2025-03-10", seq(
		TypeIn, "08:00",
		TypeBreak, "12:00",
		TypeResume, "12:30",
		TypeOut, "16:00",
	)...)

	s := Aggregate(events)
	require.NotNil(t, s)
	assert.Equal(t, 420, s.WorkedMinutes)
	assert.Equal(t, 30, s.BreakMinutes)
	assert.Equal(t, 0, s.OvertimeMinutes)
	assert.Equal(t, WorkDayStatusClosed, s.Status)
	assert.Equal(t, mustParse(t, "2025-03-10T08:00:00Z"), s.StartTime)
	assert.Equal(t, mustParse(t, "2025-03-10T16:00:00Z"), s.EndTime)
}

func TestAggregateOvertime(t *testing.T) {
	t.Parallel()

	// IN@08:00, OUT@19:00 => 660 worked, 180 overtime
	events := eventsAt(t, "2025-03-10", seq(TypeIn, "08:00", TypeOut, "19:00")...)

	s := Aggregate(events)
	require.NotNil(t, s)
	assert.Equal(t, 660, s.WorkedMinutes)
	assert.Equal(t, 0, s.BreakMinutes)
	assert.Equal(t, 180, s.OvertimeMinutes)
}

func TestAggregateOpenWorkInterval(t *testing.T) {
	t.Parallel()

	events := eventsAt(t, "2025-03-10", seq(TypeIn, "08:00")...)

	s := Aggregate(events)
	require.NotNil(t, s)
	assert.Equal(t, 0, s.WorkedMinutes)
	assert.Equal(t, WorkDayStatusOpen, s.Status)
}

func TestAggregateUnresolvedBreakAccruesToEndOfDay(t *testing.T) {
	t.Parallel()

	// Break at 12:00 never resumed: accrues until the window closes at
	// 05:00 the next morning.
	events := eventsAt(t, "2025-03-10", seq(TypeIn, "08:00", TypeBreak, "12:00")...)

	s := Aggregate(events)
	require.NotNil(t, s)
	// 12:00 -> 04:59:59.999 is 1019 whole minutes.
	assert.Equal(t, 1019, s.BreakMinutes)
	// 240 worked minus 1019 break clamps to zero, never negative.
	assert.Equal(t, 0, s.WorkedMinutes)
	assert.Equal(t, 0, s.OvertimeMinutes)
	assert.Equal(t, WorkDayStatusOpen, s.Status)
}

func TestAggregateNightShiftWindow(t *testing.T) {
	t.Parallel()

	// 22:00 -> 06:00 shift: the 04:30 punch belongs to the 2025-03-10
	// work day, and minutes accrue across midnight.
	events := []Event{
		{ID: "a", Type: TypeIn, Timestamp: mustParse(t, "2025-03-10T22:00:00Z")},
		{ID: "b", Type: TypeOut, Timestamp: mustParse(t, "2025-03-11T04:30:00Z")},
	}

	s := Aggregate(events)
	require.NotNil(t, s)
	assert.Equal(t, 390, s.WorkedMinutes)
	assert.Equal(t, WorkDayStatusClosed, s.Status)
}

func TestAggregateMultipleWorkIntervals(t *testing.T) {
	t.Parallel()

	events := eventsAt(t, "2025-03-10", seq(
		TypeIn, "08:00",
		TypeOut, "12:00",
		TypeIn, "13:00",
		TypeOut, "17:00",
	)...)

	s := Aggregate(events)
	require.NotNil(t, s)
	assert.Equal(t, 480, s.WorkedMinutes)
	assert.Equal(t, 0, s.BreakMinutes)
	assert.Equal(t, 0, s.OvertimeMinutes)
}

func TestAggregateIdempotent(t *testing.T) {
	t.Parallel()

	events := eventsAt(t, "2025-03-10", seq(
		TypeIn, "08:00",
		TypeBreak, "12:00",
		TypeResume, "12:30",
		TypeOut, "19:30",
	)...)

	first := Aggregate(events)
	second := Aggregate(events)
	require.NotNil(t, first)
	assert.Equal(t, first, second)
}

func TestAggregateIgnoresStorageOrder(t *testing.T) {
	t.Parallel()

	ordered := eventsAt(t, "2025-03-10", seq(
		TypeIn, "08:00",
		TypeBreak, "12:00",
		TypeResume, "12:30",
		TypeOut, "16:00",
	)...)
	shuffled := []Event{ordered[2], ordered[0], ordered[3], ordered[1]}

	assert.Equal(t, Aggregate(ordered), Aggregate(shuffled))
}

func TestAggregateNeverNegative(t *testing.T) {
	t.Parallel()

	// Sequences a validator would accept must never produce negatives.
	cases := [][]struct {
		Type  Type
		Clock string
	}{
		seq(TypeIn, "08:00"),
		seq(TypeIn, "08:00", TypeOut, "08:00"),
		seq(TypeIn, "08:00", TypeBreak, "08:01"),
		seq(TypeIn, "08:00", TypeBreak, "08:30", TypeResume, "23:00", TypeOut, "23:30"),
	}
	for i, punches := range cases {
		s := Aggregate(eventsAt(t, "2025-03-10", punches...))
		require.NotNil(t, s, "case %d", i)
		assert.GreaterOrEqual(t, s.WorkedMinutes, 0, "case %d", i)
		assert.GreaterOrEqual(t, s.BreakMinutes, 0, "case %d", i)
		assert.GreaterOrEqual(t, s.OvertimeMinutes, 0, "case %d", i)
	}
}
