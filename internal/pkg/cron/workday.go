package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/presensi-hq/presensi-backend-go/internal/domain/punch"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/timeutil"
)

// WorkDayCloser finalizes summaries for past work days that were never
// clocked out. It replays the punch window one last time and marks the
// result closed so a forgotten OUT does not leave the day open forever.
type WorkDayCloser struct {
	events   punch.EventRepository
	workDays punch.WorkDayRepository
}

func NewWorkDayCloser(events punch.EventRepository, workDays punch.WorkDayRepository) *WorkDayCloser {
	return &WorkDayCloser{
		events:   events,
		workDays: workDays,
	}
}

// Run closes every open work day whose window has fully elapsed.
func (c *WorkDayCloser) Run(ctx context.Context) error {
	cutoff := timeutil.WorkDayStart(time.Now().UTC())

	open, err := c.workDays.ListOpenBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list open work days: %w", err)
	}
	if len(open) == 0 {
		return nil
	}

	closed := 0
	for _, workDay := range open {
		windowStart, windowEnd := timeutil.WorkDayBounds(workDay.Date)

		events, err := c.events.ListByWindow(ctx, workDay.EmployeeID, workDay.CompanyID, windowStart, windowEnd)
		if err != nil {
			slog.Error("Failed to list punches for day close",
				"employee_id", workDay.EmployeeID, "date", workDay.Date.Format("2006-01-02"), "error", err)
			continue
		}

		summary := punch.Aggregate(events)
		if summary == nil {
			if err := c.workDays.Delete(ctx, workDay.EmployeeID, workDay.CompanyID, workDay.Date); err != nil {
				slog.Error("Failed to delete empty work day",
					"employee_id", workDay.EmployeeID, "date", workDay.Date.Format("2006-01-02"), "error", err)
			}
			continue
		}

		workDay.StartTime = summary.StartTime
		workDay.EndTime = summary.EndTime
		workDay.WorkedMinutes = summary.WorkedMinutes
		workDay.BreakMinutes = summary.BreakMinutes
		workDay.OvertimeMinutes = summary.OvertimeMinutes
		workDay.Status = punch.WorkDayStatusClosed

		if _, err := c.workDays.Upsert(ctx, workDay); err != nil {
			slog.Error("Failed to close work day",
				"employee_id", workDay.EmployeeID, "date", workDay.Date.Format("2006-01-02"), "error", err)
			continue
		}
		closed++
	}

	slog.Info("Work day close job finished", "open", len(open), "closed", closed)
	return nil
}
