package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/presensi-hq/presensi-backend-go/internal/domain/auth"
	"github.com/presensi-hq/presensi-backend-go/internal/domain/company"
	"github.com/presensi-hq/presensi-backend-go/internal/domain/employee"
	"github.com/presensi-hq/presensi-backend-go/internal/domain/punch"
	"github.com/presensi-hq/presensi-backend-go/internal/domain/schedule"
	"github.com/presensi-hq/presensi-backend-go/internal/domain/user"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// A rejected punch transition is a conflict with the recorded sequence,
	// never a validation problem: the request was well-formed.
	var sequenceErr *punch.SequenceError
	if errors.As(err, &sequenceErr) {
		ConflictWithDetails(w, "PUNCH_SEQUENCE_CONFLICT", sequenceErr.Reason, map[string]string{
			"last":      string(sequenceErr.Last),
			"requested": string(sequenceErr.Requested),
		})
		return
	}

	var geofenceErr *punch.GeofenceError
	if errors.As(err, &geofenceErr) {
		ForbiddenWithDetails(w, geofenceErr.Error(), map[string]string{
			"distance_meters": fmt.Sprintf("%.0f", geofenceErr.DistanceMeters),
			"radius_meters":   fmt.Sprintf("%.0f", geofenceErr.RadiusMeters),
		})
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or missing token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrMissingIdentity):
		Unauthorized(w, "Token is missing employee or company identity")

	// Role errors
	case errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, "Manager or owner access required")
	case errors.Is(err, user.ErrOwnerAccessRequired):
		Forbidden(w, "Owner access required")

	// Punch domain errors
	case errors.Is(err, punch.ErrPunchNotFound):
		NotFound(w, "Punch record not found")
	case errors.Is(err, punch.ErrWorkDayNotFound):
		NotFound(w, "No work day summary for this date")
	case errors.Is(err, punch.ErrEditLogNotFound):
		NotFound(w, "Edit log entry not found")

	// Schedule domain errors
	case errors.Is(err, schedule.ErrShiftNotFound):
		NotFound(w, "Shift not found")
	case errors.Is(err, schedule.ErrAssignmentNotFound):
		NotFound(w, "Weekly assignment not found")
	case errors.Is(err, schedule.ErrTemplateNotFound):
		NotFound(w, "Weekly template not found")
	case errors.Is(err, schedule.ErrShiftNameExists):
		Conflict(w, "A shift with this name already exists")
	case errors.Is(err, schedule.ErrTemplateNameExists):
		Conflict(w, "A template with this name already exists")
	case errors.Is(err, schedule.ErrShiftInUse):
		Conflict(w, "Shift is referenced by weekly assignments; retry with force to cascade")
	case errors.Is(err, schedule.ErrOverlappingShift):
		Conflict(w, "Shift overlaps an existing assignment for this day")
	case errors.Is(err, schedule.ErrInvalidShiftRange):
		ValidationError(w, map[string]string{"end_time": "end_time must differ from start_time"})

	// Membership errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
