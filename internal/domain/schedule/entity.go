package schedule

import "time"

// ShiftDefinition is a reusable named time-of-day interval. EndTime before
// StartTime means the shift wraps past midnight (night shift).
type ShiftDefinition struct {
	ID           string
	CompanyID    string
	Name         string
	StartTime    string // "HH:MM"
	EndTime      string // "HH:MM"
	BreakMinutes *int
	Flexible     bool
	Color        string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WeeklyAssignment binds a shift (or an explicit rest day when ShiftID is
// nil) to an employee, Monday-aligned week and day-of-week (0=Monday).
// Several non-overlapping shifts may share one slot.
type WeeklyAssignment struct {
	ID         string
	EmployeeID string
	CompanyID  string
	WeekStart  time.Time
	DayOfWeek  int
	ShiftID    *string
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// DTO
	ShiftName      *string
	ShiftStartTime *string
	ShiftEndTime   *string
}

// IsRestDay reports whether the assignment marks an explicit rest day.
func (a WeeklyAssignment) IsRestDay() bool {
	return a.ShiftID == nil
}

// TemplateEntry is one shift slot inside a template day.
type TemplateEntry struct {
	ShiftID string
	Notes   *string
}

// WeeklyTemplate is a reusable week pattern: day-of-week to shift entries.
type WeeklyTemplate struct {
	ID        string
	CompanyID string
	Name      string
	WeekData  map[int][]TemplateEntry
	CreatedAt time.Time
	UpdatedAt time.Time
}
