package schedule

import "context"

// Service defines shift and weekly roster operations. Mutations are
// manager-only; reads are open to the authenticated company.
type Service interface {
	CreateShift(ctx context.Context, req CreateShiftRequest) (ShiftResponse, error)
	GetShift(ctx context.Context, id string) (ShiftResponse, error)
	ListShifts(ctx context.Context, activeOnly bool) ([]ShiftResponse, error)
	UpdateShift(ctx context.Context, req UpdateShiftRequest) (ShiftResponse, error)

	// DeleteShift refuses while active assignments reference the shift,
	// unless Force cascades their removal first.
	DeleteShift(ctx context.Context, req DeleteShiftRequest) error

	// UpsertAssignment adds a shift (or rest day) to an employee's day
	// after the overlap check; non-overlapping shifts are additive.
	UpsertAssignment(ctx context.Context, req UpsertAssignmentRequest) (AssignmentResponse, error)
	DeleteAssignment(ctx context.Context, id string) error
	GetWeek(ctx context.Context, filter GetWeekFilter) (WeekResponse, error)

	// CopyWeek and ApplyTemplate merge best-effort: exact duplicates are
	// skipped, conflicting entries silently dropped, the rest batch-inserted.
	CopyWeek(ctx context.Context, req CopyWeekRequest) ([]AssignmentResponse, error)
	ApplyTemplate(ctx context.Context, req ApplyTemplateRequest) ([]AssignmentResponse, error)

	CreateTemplate(ctx context.Context, req CreateTemplateRequest) (TemplateResponse, error)
	ListTemplates(ctx context.Context) ([]TemplateResponse, error)
	DeleteTemplate(ctx context.Context, id string) error
}
