package timeutil

import (
	"testing"
	"time"
)

func TestClockToMinutes(t *testing.T) {
	cases := []struct {
		input string
		want  int
		ok    bool
	}{
		{"00:00", 0, true},
		{"09:30", 570, true},
		{"22:00", 1320, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"9:30", 0, false},
		{"09:60", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, err := ClockToMinutes(c.input)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("ClockToMinutes(%q) = %d, %v, want %d", c.input, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Errorf("ClockToMinutes(%q) expected error, got %d", c.input, got)
		}
	}
}

func TestMinutesToClock(t *testing.T) {
	cases := []struct {
		input int
		want  string
	}{
		{0, "00:00"},
		{570, "09:30"},
		{1439, "23:59"},
		{1440, "00:00"},
		{-60, "23:00"},
	}
	for _, c := range cases {
		if got := MinutesToClock(c.input); got != c.want {
			t.Errorf("MinutesToClock(%d) = %q, want %q", c.input, got, c.want)
		}
	}
}

func TestSpansOverlap(t *testing.T) {
	cases := []struct {
		name                   string
		aStart, aEnd           int
		bStart, bEnd           int
		want                   bool
	}{
		{"disjoint", 540, 780, 780, 1020, false},
		{"one minute shared", 540, 781, 780, 1020, true},
		{"contained", 540, 1020, 600, 660, true},
		{"identical", 540, 780, 540, 780, true},
		{"touching reversed", 780, 1020, 540, 780, false},
	}
	for _, c := range cases {
		if got := SpansOverlap(c.aStart, c.aEnd, c.bStart, c.bEnd); got != c.want {
			t.Errorf("%s: SpansOverlap(%d,%d,%d,%d) = %v, want %v",
				c.name, c.aStart, c.aEnd, c.bStart, c.bEnd, got, c.want)
		}
	}
}

func TestWorkDayStart(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		// Before 05:00 belongs to the previous work day.
		{"2025-03-10T04:30:00Z", "2025-03-09T00:00:00Z"},
		{"2025-03-10T05:30:00Z", "2025-03-10T00:00:00Z"},
		{"2025-03-10T00:00:00Z", "2025-03-09T00:00:00Z"},
		{"2025-03-10T23:59:00Z", "2025-03-10T00:00:00Z"},
		// Month boundary.
		{"2025-03-01T02:00:00Z", "2025-02-28T00:00:00Z"},
	}
	for _, c := range cases {
		in, err := time.Parse(time.RFC3339, c.input)
		if err != nil {
			t.Fatal(err)
		}
		want, _ := time.Parse(time.RFC3339, c.want)
		if got := WorkDayStart(in); !got.Equal(want) {
			t.Errorf("WorkDayStart(%s) = %s, want %s", c.input, got, want)
		}
	}
}

func TestWorkDayWindow(t *testing.T) {
	in, _ := time.Parse(time.RFC3339, "2025-03-10T22:15:00Z")
	start, end := WorkDayWindow(in)
	if end.Sub(start) != 24*time.Hour {
		t.Errorf("window length = %s, want 24h", end.Sub(start))
	}
	// A trailing night-shift punch at 04:30 next morning shares the window.
	late, _ := time.Parse(time.RFC3339, "2025-03-11T04:30:00Z")
	lateStart, _ := WorkDayWindow(late)
	if !lateStart.Equal(start) {
		t.Errorf("04:30 punch got window start %s, want %s", lateStart, start)
	}
	// Both punches fall inside their shared window.
	for _, ts := range []time.Time{in, late} {
		if ts.Before(start) || !ts.Before(end) {
			t.Errorf("punch %s outside window [%s, %s)", ts, start, end)
		}
	}
}

func TestWorkDayBoundsCoverLabeledDay(t *testing.T) {
	day, _ := time.Parse(time.RFC3339, "2025-03-10T00:00:00Z")
	start, end := WorkDayBounds(day)
	wantStart, _ := time.Parse(time.RFC3339, "2025-03-10T05:00:00Z")
	wantEnd, _ := time.Parse(time.RFC3339, "2025-03-11T05:00:00Z")
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Errorf("WorkDayBounds(%s) = [%s, %s), want [%s, %s)", day, start, end, wantStart, wantEnd)
	}
}

func TestWeekStart(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"2025-03-12T10:00:00Z", "2025-03-10T00:00:00Z"}, // Wednesday
		{"2025-03-10T00:00:00Z", "2025-03-10T00:00:00Z"}, // Monday
		{"2025-03-16T23:00:00Z", "2025-03-10T00:00:00Z"}, // Sunday
	}
	for _, c := range cases {
		in, _ := time.Parse(time.RFC3339, c.input)
		want, _ := time.Parse(time.RFC3339, c.want)
		if got := WeekStart(in); !got.Equal(want) {
			t.Errorf("WeekStart(%s) = %s, want %s", c.input, got, want)
		}
	}
}
