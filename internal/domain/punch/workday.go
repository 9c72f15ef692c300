package punch

import (
	"time"

	"github.com/presensi-hq/presensi-backend-go/internal/pkg/timeutil"
)

// RegularDayMinutes is the fixed daily threshold above which worked time
// counts as overtime.
const RegularDayMinutes = 480

// Summary is the aggregation result written back onto a WorkDay.
type Summary struct {
	StartTime       time.Time
	EndTime         time.Time
	WorkedMinutes   int
	BreakMinutes    int
	OvertimeMinutes int
	Status          WorkDayStatus
}

// Aggregate recomputes the daily summary from the full punch set of one
// employee's work-day window. Returns nil for an empty window: no WorkDay
// row is written in that case, not even a zeroed one. A break that was
// never resumed accrues until one millisecond before the window closes,
// i.e. 04:59:59.999 the next morning, not the labeled day's midnight.
//
// Replaying the same punch list always yields the same Summary.
func Aggregate(events []Event) *Summary {
	if len(events) == 0 {
		return nil
	}
	SortEvents(events)

	var worked, breaks time.Duration
	var inTime, breakStart time.Time
	hasOpenWork := false
	hasOpenBreak := false

	for _, e := range events {
		t := e.Timestamp
		switch e.Type {
		case TypeIn:
			inTime = t
			hasOpenWork = true
		case TypeOut:
			if hasOpenWork {
				worked += t.Sub(inTime)
				hasOpenWork = false
			}
		case TypeBreak:
			if hasOpenWork {
				worked += t.Sub(inTime)
				hasOpenWork = false
			}
			// A second BREAK without RESUME should not pass validation;
			// close the stale one instead of losing it.
			if hasOpenBreak {
				breaks += t.Sub(breakStart)
			}
			breakStart = t
			hasOpenBreak = true
		case TypeResume:
			if hasOpenBreak {
				breaks += t.Sub(breakStart)
				hasOpenBreak = false
			}
			inTime = t
			hasOpenWork = true
		}
	}

	// A break that was never resumed accrues until the end of the work day
	// so a forgotten resume does not erase measured break time.
	if hasOpenBreak {
		_, windowEnd := timeutil.WorkDayWindow(events[0].Timestamp)
		endOfDay := windowEnd.Add(-time.Millisecond)
		if endOfDay.After(breakStart) {
			breaks += endOfDay.Sub(breakStart)
		}
	}

	workedMinutes := int(worked.Minutes())
	breakMinutes := int(breaks.Minutes())

	// Break minutes are subtracted from the worked total even though the
	// pass above already excludes the break span itself.
	workedMinutes -= breakMinutes
	if workedMinutes < 0 {
		workedMinutes = 0
	}

	overtimeMinutes := workedMinutes - RegularDayMinutes
	if overtimeMinutes < 0 {
		overtimeMinutes = 0
	}

	status := WorkDayStatusOpen
	if events[len(events)-1].Type == TypeOut {
		status = WorkDayStatusClosed
	}

	return &Summary{
		StartTime:       events[0].Timestamp,
		EndTime:         events[len(events)-1].Timestamp,
		WorkedMinutes:   workedMinutes,
		BreakMinutes:    breakMinutes,
		OvertimeMinutes: overtimeMinutes,
		Status:          status,
	}
}
