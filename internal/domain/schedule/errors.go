package schedule

import "errors"

var (
	// Shift definition errors
	ErrShiftNotFound     = errors.New("shift not found")
	ErrShiftNameExists   = errors.New("a shift with this name already exists")
	ErrInvalidShiftRange = errors.New("shift start and end time must differ")
	ErrShiftInUse        = errors.New("shift is referenced by active weekly assignments")

	// Weekly assignment errors
	ErrAssignmentNotFound = errors.New("weekly assignment not found")
	ErrOverlappingShift   = errors.New("shift overlaps an existing assignment for this day")

	// Template errors
	ErrTemplateNotFound   = errors.New("weekly template not found")
	ErrTemplateNameExists = errors.New("a template with this name already exists")
)
