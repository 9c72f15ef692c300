package schedule

import (
	"context"
	"time"
)

type ShiftRepository interface {
	Create(ctx context.Context, shift ShiftDefinition) (ShiftDefinition, error)
	GetByID(ctx context.Context, id string, companyID string) (ShiftDefinition, error)
	GetByIDs(ctx context.Context, ids []string, companyID string) ([]ShiftDefinition, error)
	List(ctx context.Context, companyID string, activeOnly bool) ([]ShiftDefinition, error)
	ExistsByName(ctx context.Context, name, companyID string, excludeID *string) (bool, error)
	Update(ctx context.Context, shift ShiftDefinition) error
	Delete(ctx context.Context, id, companyID string) error
}

type AssignmentRepository interface {
	Create(ctx context.Context, assignment WeeklyAssignment) (WeeklyAssignment, error)
	CreateBatch(ctx context.Context, assignments []WeeklyAssignment) ([]WeeklyAssignment, error)
	GetByID(ctx context.Context, id string, companyID string) (WeeklyAssignment, error)

	// ListBySlot returns all assignments for one (employee, week, day) slot.
	ListBySlot(ctx context.Context, employeeID, companyID string, weekStart time.Time, dayOfWeek int) ([]WeeklyAssignment, error)

	// ListByWeek returns a whole week, optionally narrowed to one employee,
	// with shift name/times joined in.
	ListByWeek(ctx context.Context, companyID string, weekStart time.Time, employeeID *string) ([]WeeklyAssignment, error)

	Delete(ctx context.Context, id, companyID string) error
	DeleteRestBySlot(ctx context.Context, employeeID, companyID string, weekStart time.Time, dayOfWeek int) error

	CountByShiftID(ctx context.Context, shiftID, companyID string) (int64, error)
	DeleteByShiftID(ctx context.Context, shiftID, companyID string) error
}

type TemplateRepository interface {
	Create(ctx context.Context, template WeeklyTemplate) (WeeklyTemplate, error)
	GetByID(ctx context.Context, id string, companyID string) (WeeklyTemplate, error)
	List(ctx context.Context, companyID string) ([]WeeklyTemplate, error)
	ExistsByName(ctx context.Context, name, companyID string) (bool, error)
	Delete(ctx context.Context, id, companyID string) error
}
