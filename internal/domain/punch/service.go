package punch

import "context"

// Service defines the punch engine operations. Identity comes from the
// verified token claims; *For variants take an explicit employee and are
// restricted to managers.
type Service interface {
	// Punch validates and records a punch for the authenticated employee,
	// then recomputes the affected WorkDay.
	Punch(ctx context.Context, req CreatePunchRequest) (PunchResponse, error)

	// GetState returns the live punch state for the authenticated employee.
	GetState(ctx context.Context) (StateResponse, error)

	// GetStateFor returns the live punch state for any employee (manager).
	GetStateFor(ctx context.Context, employeeID string) (StateResponse, error)

	// GetWorkDay returns the daily summary, served from cache when warm.
	GetWorkDay(ctx context.Context, employeeID string, date string) (WorkDayResponse, error)

	// RecomputeWorkDay rebuilds the summary from the punch window.
	RecomputeWorkDay(ctx context.Context, employeeID string, date string) (WorkDayResponse, error)

	ListPunches(ctx context.Context, filter ListPunchFilter) (ListPunchResponse, error)

	// UpdatePunch edits a punch timestamp/notes with an audit entry and
	// recomputes every affected work day (manager).
	UpdatePunch(ctx context.Context, req UpdatePunchRequest) (PunchResponse, error)

	// DeletePunch removes a punch with an audit entry (manager).
	DeletePunch(ctx context.Context, req DeletePunchRequest) error

	// BulkCreatePunches imports punches for several employees; the whole
	// batch fails if any employee reference is invalid (manager).
	BulkCreatePunches(ctx context.Context, req BulkCreatePunchesRequest) ([]PunchResponse, error)

	ListEditLog(ctx context.Context, punchID string, page, limit int) (ListEditLogResponse, error)
}
