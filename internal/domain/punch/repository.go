package punch

import (
	"context"
	"time"
)

// EventRepository is the append-only punch event store. All methods carry
// companyID to keep tenants isolated.
type EventRepository interface {
	Create(ctx context.Context, event Event) (Event, error)
	CreateBatch(ctx context.Context, events []Event) ([]Event, error)
	GetByID(ctx context.Context, id string, companyID string) (Event, error)

	// ListByWindow returns an employee's punches with
	// start <= timestamp < end, sorted ascending (timestamp, created_at, id).
	ListByWindow(ctx context.Context, employeeID, companyID string, start, end time.Time) ([]Event, error)

	List(ctx context.Context, filter ListPunchFilter, companyID string) ([]Event, int64, error)

	// UpdateTimestamp is the only mutation; callers must also append an
	// EditLogEntry.
	UpdateTimestamp(ctx context.Context, id, companyID string, timestamp time.Time, notes *string) error
	Delete(ctx context.Context, id string, companyID string) error
}

// EditLogRepository is the append-only audit trail for punch mutations.
type EditLogRepository interface {
	Create(ctx context.Context, entry EditLogEntry) (EditLogEntry, error)
	ListByPunchID(ctx context.Context, punchID, companyID string, page, limit int) ([]EditLogEntry, int64, error)
}

// WorkDayRepository stores the derived daily summaries.
type WorkDayRepository interface {
	Upsert(ctx context.Context, workDay WorkDay) (WorkDay, error)
	Get(ctx context.Context, employeeID, companyID string, date time.Time) (WorkDay, error)
	Delete(ctx context.Context, employeeID, companyID string, date time.Time) error

	// ListOpenBefore returns work days still marked open whose date is
	// before the cutoff; used by the day-close recompute job.
	ListOpenBefore(ctx context.Context, cutoff time.Time) ([]WorkDay, error)
}
