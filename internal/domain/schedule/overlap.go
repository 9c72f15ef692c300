package schedule

import (
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/timeutil"
)

// span is a half-open minute interval within a single day.
type span struct {
	start, end int
}

// shiftSpans unwraps a shift range into same-day segments. A night shift
// like 22:00-06:00 becomes [1320,1440) and [0,360) so two wrapping ranges
// are compared on their real 24h intervals, not their raw minute values.
func shiftSpans(startMinutes, endMinutes int) []span {
	if endMinutes > startMinutes {
		return []span{{startMinutes, endMinutes}}
	}
	spans := []span{{startMinutes, timeutil.MinutesPerDay}}
	if endMinutes > 0 {
		spans = append(spans, span{0, endMinutes})
	}
	return spans
}

// IsValidShiftRange accepts any same-day shift (end > start) or night shift
// (end < start); only a zero-length range (end == start) is invalid.
func IsValidShiftRange(startTime, endTime string) bool {
	start, err := timeutil.ClockToMinutes(startTime)
	if err != nil {
		return false
	}
	end, err := timeutil.ClockToMinutes(endTime)
	if err != nil {
		return false
	}
	return start != end
}

// RangesOverlap reports whether two shift time ranges intersect on the
// 24h clock, wrap-normalized for night shifts.
func RangesOverlap(aStart, aEnd, bStart, bEnd string) (bool, error) {
	aStartMin, err := timeutil.ClockToMinutes(aStart)
	if err != nil {
		return false, err
	}
	aEndMin, err := timeutil.ClockToMinutes(aEnd)
	if err != nil {
		return false, err
	}
	bStartMin, err := timeutil.ClockToMinutes(bStart)
	if err != nil {
		return false, err
	}
	bEndMin, err := timeutil.ClockToMinutes(bEnd)
	if err != nil {
		return false, err
	}

	for _, a := range shiftSpans(aStartMin, aEndMin) {
		for _, b := range shiftSpans(bStartMin, bEndMin) {
			if timeutil.SpansOverlap(a.start, a.end, b.start, b.end) {
				return true, nil
			}
		}
	}
	return false, nil
}

// ShiftsOverlap reports whether two shift definitions conflict.
func ShiftsOverlap(a, b ShiftDefinition) (bool, error) {
	return RangesOverlap(a.StartTime, a.EndTime, b.StartTime, b.EndTime)
}
