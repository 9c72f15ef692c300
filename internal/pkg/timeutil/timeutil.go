package timeutil

import (
	"fmt"
	"time"
)

const MinutesPerDay = 24 * 60

// Punches before this hour belong to the previous work day, so a night
// shift (e.g. 22:00-06:00) and its trailing punches land in one window.
const workDayBoundaryHour = 5

// ClockToMinutes converts an "HH:MM" clock string to minutes since midnight.
// The hour must be zero-padded; time.Parse alone would accept "9:30".
func ClockToMinutes(clock string) (int, error) {
	if len(clock) != 5 {
		return 0, fmt.Errorf("invalid clock time %q: must be HH:MM", clock)
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// MinutesToClock converts minutes since midnight back to "HH:MM".
func MinutesToClock(minutes int) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SpansOverlap reports whether two half-open minute intervals intersect.
func SpansOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// WorkDayStart returns the midnight that opens the work day containing t.
// Pure function of t, never of an ambient clock.
func WorkDayStart(t time.Time) time.Time {
	day := t
	if t.Hour() < workDayBoundaryHour {
		day = t.AddDate(0, 0, -1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

// WorkDayBounds returns the [start, end) punch window of the work day
// labeled by day (a midnight date from WorkDayStart). The window runs from
// the boundary hour of that date to the boundary hour of the next, so every
// timestamp falls in exactly one window.
func WorkDayBounds(day time.Time) (time.Time, time.Time) {
	start := day.Add(workDayBoundaryHour * time.Hour)
	return start, start.Add(24 * time.Hour)
}

// WorkDayWindow returns the [start, end) attendance window containing t.
func WorkDayWindow(t time.Time) (time.Time, time.Time) {
	return WorkDayBounds(WorkDayStart(t))
}

// WeekStart returns the Monday 00:00 of the week containing t.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}
