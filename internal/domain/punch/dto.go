package punch

import (
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/validator"
)

// ========================================
// PUNCH DTOs
// ========================================

type CreatePunchRequest struct {
	Type         string   `json:"type"`
	Timestamp    string   `json:"timestamp,omitempty"` // RFC3339; empty = server time
	Source       string   `json:"source,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	IsRemoteWork bool     `json:"is_remote_work"`
	Notes        *string  `json:"notes,omitempty"`
}

func (r *CreatePunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.Type, TypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of IN, OUT, BREAK, RESUME",
		})
	}

	if r.Timestamp != "" {
		if _, ok := validator.IsValidDateTime(r.Timestamp); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "timestamp",
				Message: "timestamp must be a valid ISO8601 datetime",
			})
		}
	}

	if r.Source != "" && !validator.IsInSlice(r.Source, SourceValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "source",
			Message: "source must be one of web, mobile, kiosk, import",
		})
	}

	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude and longitude must be provided together",
		})
	}
	if r.Latitude != nil && !validator.IsValidLatitude(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if r.Longitude != nil && !validator.IsValidLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BulkPunchItem struct {
	EmployeeID string  `json:"employee_id"`
	Type       string  `json:"type"`
	Timestamp  string  `json:"timestamp"`
	Notes      *string `json:"notes,omitempty"`
}

type BulkCreatePunchesRequest struct {
	Source string          `json:"source,omitempty"`
	Items  []BulkPunchItem `json:"items"`
}

func (r *BulkCreatePunchesRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Items) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "items",
			Message: "at least one punch item is required",
		})
	}

	if r.Source != "" && !validator.IsInSlice(r.Source, SourceValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "source",
			Message: "source must be one of web, mobile, kiosk, import",
		})
	}

	for i, item := range r.Items {
		field := "items[" + validator.Itoa(i) + "]"
		if validator.IsEmpty(item.EmployeeID) {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".employee_id",
				Message: "employee_id is required",
			})
		}
		if !validator.IsInSlice(item.Type, TypeValues) {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".type",
				Message: "type must be one of IN, OUT, BREAK, RESUME",
			})
		}
		if _, ok := validator.IsValidDateTime(item.Timestamp); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".timestamp",
				Message: "timestamp must be a valid ISO8601 datetime",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdatePunchRequest struct {
	ID        string  `json:"-"`
	Timestamp *string `json:"timestamp,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	Reason    string  `json:"reason"`
}

func (r *UpdatePunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "punch id is required",
		})
	}
	if r.Timestamp == nil && r.Notes == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: "nothing to update: provide timestamp or notes",
		})
	}
	if r.Timestamp != nil {
		if _, ok := validator.IsValidDateTime(*r.Timestamp); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "timestamp",
				Message: "timestamp must be a valid ISO8601 datetime",
			})
		}
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "an audit reason is required for punch edits",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DeletePunchRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *DeletePunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "punch id is required",
		})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "an audit reason is required for punch deletion",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListPunchFilter struct {
	EmployeeID *string
	Type       *string
	StartDate  *string
	EndDate    *string
	Page       int
	Limit      int
	SortOrder  string
}

// ========================================
// RESPONSES
// ========================================

type PunchResponse struct {
	ID           string   `json:"id"`
	EmployeeID   string   `json:"employee_id"`
	EmployeeName *string  `json:"employee_name,omitempty"`
	Type         string   `json:"type"`
	Timestamp    string   `json:"timestamp"`
	Source       string   `json:"source"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	IsRemoteWork bool     `json:"is_remote_work"`
	Notes        *string  `json:"notes,omitempty"`
	WorkDayDate  string   `json:"work_day_date"`
	CreatedAt    string   `json:"created_at"`
}

type ListPunchResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Punches    []PunchResponse `json:"punches"`
}

type StateResponse struct {
	EmployeeID    string   `json:"employee_id"`
	Status        string   `json:"status"`
	LastType      *string  `json:"last_type,omitempty"`
	LastTimestamp *string  `json:"last_timestamp,omitempty"`
	AllowedNext   []string `json:"allowed_next"`
}

type WorkDayResponse struct {
	EmployeeID      string `json:"employee_id"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	WorkedMinutes   int    `json:"worked_minutes"`
	BreakMinutes    int    `json:"break_minutes"`
	OvertimeMinutes int    `json:"overtime_minutes"`
	Status          string `json:"status"`
}

type EditLogResponse struct {
	ID           string  `json:"id"`
	PunchID      string  `json:"punch_id"`
	ActorID      string  `json:"actor_id"`
	OldTimestamp string  `json:"old_timestamp"`
	NewTimestamp *string `json:"new_timestamp,omitempty"`
	Reason       string  `json:"reason"`
	CreatedAt    string  `json:"created_at"`
}

type ListEditLogResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Entries    []EditLogResponse `json:"entries"`
}
