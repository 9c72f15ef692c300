package schedule

import (
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/validator"
)

// ========================================
// SHIFT DTOs
// ========================================

type CreateShiftRequest struct {
	Name         string `json:"name"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	BreakMinutes *int   `json:"break_minutes,omitempty"`
	Flexible     bool   `json:"flexible"`
	Color        string `json:"color,omitempty"`
}

func (r *CreateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if !validator.IsValidClockTime(r.StartTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_time",
			Message: "start_time must be HH:MM",
		})
	}
	if !validator.IsValidClockTime(r.EndTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time must be HH:MM",
		})
	}
	if validator.IsValidClockTime(r.StartTime) && validator.IsValidClockTime(r.EndTime) &&
		!IsValidShiftRange(r.StartTime, r.EndTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time must differ from start_time",
		})
	}
	if r.BreakMinutes != nil && *r.BreakMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "break_minutes",
			Message: "break_minutes must not be negative",
		})
	}
	if r.Color != "" && !validator.IsValidHexColor(r.Color) {
		errs = append(errs, validator.ValidationError{
			Field:   "color",
			Message: "color must be a hex value like #AABBCC",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateShiftRequest struct {
	ID           string  `json:"-"`
	Name         *string `json:"name,omitempty"`
	StartTime    *string `json:"start_time,omitempty"`
	EndTime      *string `json:"end_time,omitempty"`
	BreakMinutes *int    `json:"break_minutes,omitempty"`
	Flexible     *bool   `json:"flexible,omitempty"`
	Color        *string `json:"color,omitempty"`
	Active       *bool   `json:"active,omitempty"`
}

func (r *UpdateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "shift id is required",
		})
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not be empty",
		})
	}
	if r.StartTime != nil && !validator.IsValidClockTime(*r.StartTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_time",
			Message: "start_time must be HH:MM",
		})
	}
	if r.EndTime != nil && !validator.IsValidClockTime(*r.EndTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time must be HH:MM",
		})
	}
	if r.BreakMinutes != nil && *r.BreakMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "break_minutes",
			Message: "break_minutes must not be negative",
		})
	}
	if r.Color != nil && !validator.IsValidHexColor(*r.Color) {
		errs = append(errs, validator.ValidationError{
			Field:   "color",
			Message: "color must be a hex value like #AABBCC",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DeleteShiftRequest struct {
	ID    string `json:"-"`
	Force bool   `json:"-"` // cascade-delete referencing assignments
}

type ShiftResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	BreakMinutes *int   `json:"break_minutes,omitempty"`
	Flexible     bool   `json:"flexible"`
	Color        string `json:"color,omitempty"`
	Active       bool   `json:"active"`
	IsNightShift bool   `json:"is_night_shift"`
}

// ========================================
// WEEKLY ASSIGNMENT DTOs
// ========================================

type UpsertAssignmentRequest struct {
	EmployeeID string  `json:"employee_id"`
	WeekStart  string  `json:"week_start"` // Monday, YYYY-MM-DD
	DayOfWeek  int     `json:"day_of_week"`
	ShiftID    *string `json:"shift_id"` // null = rest day
	Notes      *string `json:"notes,omitempty"`
}

func (r *UpsertAssignmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	errs = append(errs, validateWeekStart(r.WeekStart)...)
	if !validator.IsValidDayOfWeek(r.DayOfWeek) {
		errs = append(errs, validator.ValidationError{
			Field:   "day_of_week",
			Message: "day_of_week must be between 0 (Monday) and 6 (Sunday)",
		})
	}
	if r.ShiftID != nil && validator.IsEmpty(*r.ShiftID) {
		errs = append(errs, validator.ValidationError{
			Field:   "shift_id",
			Message: "shift_id must be null for a rest day, not empty",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateWeekStart(weekStart string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	date, ok := validator.IsValidDate(weekStart)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "week_start",
			Message: "week_start must be a date in YYYY-MM-DD format",
		})
		return errs
	}
	if date.Weekday() != 1 { // time.Monday
		errs = append(errs, validator.ValidationError{
			Field:   "week_start",
			Message: "week_start must be a Monday",
		})
	}
	return errs
}

type CopyWeekRequest struct {
	SourceWeekStart string   `json:"source_week_start"`
	TargetWeekStart string   `json:"target_week_start"`
	EmployeeIDs     []string `json:"employee_ids,omitempty"` // empty = all
}

func (r *CopyWeekRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, prefixFields(validateWeekStart(r.SourceWeekStart), "source_")...)
	errs = append(errs, prefixFields(validateWeekStart(r.TargetWeekStart), "target_")...)
	if r.SourceWeekStart != "" && r.SourceWeekStart == r.TargetWeekStart {
		errs = append(errs, validator.ValidationError{
			Field:   "target_week_start",
			Message: "target week must differ from source week",
		})
	}
	for i, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "employee_ids[" + validator.Itoa(i) + "]",
				Message: "employee id must not be empty",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func prefixFields(errs validator.ValidationErrors, prefix string) validator.ValidationErrors {
	for i := range errs {
		errs[i].Field = prefix + errs[i].Field
	}
	return errs
}

type ApplyTemplateRequest struct {
	TemplateID  string   `json:"-"`
	WeekStart   string   `json:"week_start"`
	EmployeeIDs []string `json:"employee_ids"`
}

func (r *ApplyTemplateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.TemplateID) {
		errs = append(errs, validator.ValidationError{
			Field:   "template_id",
			Message: "template_id is required",
		})
	}
	errs = append(errs, validateWeekStart(r.WeekStart)...)
	if len(r.EmployeeIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_ids",
			Message: "at least one employee is required",
		})
	}
	for i, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "employee_ids[" + validator.Itoa(i) + "]",
				Message: "employee id must not be empty",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type GetWeekFilter struct {
	WeekStart  string
	EmployeeID *string
}

type AssignmentResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	WeekStart      string  `json:"week_start"`
	DayOfWeek      int     `json:"day_of_week"`
	ShiftID        *string `json:"shift_id"`
	ShiftName      *string `json:"shift_name,omitempty"`
	ShiftStartTime *string `json:"shift_start_time,omitempty"`
	ShiftEndTime   *string `json:"shift_end_time,omitempty"`
	IsRestDay      bool    `json:"is_rest_day"`
	Notes          *string `json:"notes,omitempty"`
}

type WeekResponse struct {
	WeekStart   string               `json:"week_start"`
	Assignments []AssignmentResponse `json:"assignments"`
}

// ========================================
// TEMPLATE DTOs
// ========================================

type TemplateDayRequest struct {
	DayOfWeek int                    `json:"day_of_week"`
	Entries   []TemplateEntryRequest `json:"entries"`
}

type TemplateEntryRequest struct {
	ShiftID string  `json:"shift_id"`
	Notes   *string `json:"notes,omitempty"`
}

type CreateTemplateRequest struct {
	Name string               `json:"name"`
	Days []TemplateDayRequest `json:"days"`
}

func (r *CreateTemplateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Days) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "days",
			Message: "at least one day is required",
		})
	}
	seen := make(map[int]bool)
	for i, day := range r.Days {
		field := "days[" + validator.Itoa(i) + "]"
		if !validator.IsValidDayOfWeek(day.DayOfWeek) {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".day_of_week",
				Message: "day_of_week must be between 0 (Monday) and 6 (Sunday)",
			})
		}
		if seen[day.DayOfWeek] {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".day_of_week",
				Message: "duplicate day_of_week",
			})
		}
		seen[day.DayOfWeek] = true
		for j, entry := range day.Entries {
			if validator.IsEmpty(entry.ShiftID) {
				errs = append(errs, validator.ValidationError{
					Field:   field + ".entries[" + validator.Itoa(j) + "].shift_id",
					Message: "shift_id is required",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TemplateResponse struct {
	ID   string               `json:"id"`
	Name string               `json:"name"`
	Days []TemplateDayRequest `json:"days"`
}
