package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/presensi-hq/presensi-backend-go/internal/domain/schedule"
	"github.com/presensi-hq/presensi-backend-go/internal/handler/http/response"
)

type ScheduleHandler interface {
	CreateShift(w http.ResponseWriter, r *http.Request)
	GetShift(w http.ResponseWriter, r *http.Request)
	ListShifts(w http.ResponseWriter, r *http.Request)
	UpdateShift(w http.ResponseWriter, r *http.Request)
	DeleteShift(w http.ResponseWriter, r *http.Request)
	UpsertAssignment(w http.ResponseWriter, r *http.Request)
	DeleteAssignment(w http.ResponseWriter, r *http.Request)
	GetWeek(w http.ResponseWriter, r *http.Request)
	CopyWeek(w http.ResponseWriter, r *http.Request)
	CreateTemplate(w http.ResponseWriter, r *http.Request)
	ListTemplates(w http.ResponseWriter, r *http.Request)
	DeleteTemplate(w http.ResponseWriter, r *http.Request)
	ApplyTemplate(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService schedule.Service
}

func NewScheduleHandler(scheduleService schedule.Service) ScheduleHandler {
	return &scheduleHandlerImpl{
		scheduleService: scheduleService,
	}
}

// CreateShift implements ScheduleHandler.
func (h *scheduleHandlerImpl) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req schedule.CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.scheduleService.CreateShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Shift created", result)
}

// GetShift implements ScheduleHandler.
func (h *scheduleHandlerImpl) GetShift(w http.ResponseWriter, r *http.Request) {
	result, err := h.scheduleService.GetShift(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListShifts implements ScheduleHandler.
func (h *scheduleHandlerImpl) ListShifts(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	result, err := h.scheduleService.ListShifts(r.Context(), activeOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateShift implements ScheduleHandler.
func (h *scheduleHandlerImpl) UpdateShift(w http.ResponseWriter, r *http.Request) {
	var req schedule.UpdateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.scheduleService.UpdateShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift updated", result)
}

// DeleteShift implements ScheduleHandler.
func (h *scheduleHandlerImpl) DeleteShift(w http.ResponseWriter, r *http.Request) {
	req := schedule.DeleteShiftRequest{
		ID:    chi.URLParam(r, "id"),
		Force: r.URL.Query().Get("force") == "true",
	}

	if err := h.scheduleService.DeleteShift(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift deleted", nil)
}

// UpsertAssignment implements ScheduleHandler.
func (h *scheduleHandlerImpl) UpsertAssignment(w http.ResponseWriter, r *http.Request) {
	var req schedule.UpsertAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.scheduleService.UpsertAssignment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Assignment created", result)
}

// DeleteAssignment implements ScheduleHandler.
func (h *scheduleHandlerImpl) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduleService.DeleteAssignment(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Assignment deleted", nil)
}

// GetWeek implements ScheduleHandler.
func (h *scheduleHandlerImpl) GetWeek(w http.ResponseWriter, r *http.Request) {
	filter := schedule.GetWeekFilter{
		WeekStart: r.URL.Query().Get("week_start"),
	}
	if v := r.URL.Query().Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}

	result, err := h.scheduleService.GetWeek(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CopyWeek implements ScheduleHandler.
func (h *scheduleHandlerImpl) CopyWeek(w http.ResponseWriter, r *http.Request) {
	var req schedule.CopyWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.scheduleService.CopyWeek(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Week copied", result)
}

// CreateTemplate implements ScheduleHandler.
func (h *scheduleHandlerImpl) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req schedule.CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.scheduleService.CreateTemplate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Template created", result)
}

// ListTemplates implements ScheduleHandler.
func (h *scheduleHandlerImpl) ListTemplates(w http.ResponseWriter, r *http.Request) {
	result, err := h.scheduleService.ListTemplates(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DeleteTemplate implements ScheduleHandler.
func (h *scheduleHandlerImpl) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduleService.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Template deleted", nil)
}

// ApplyTemplate implements ScheduleHandler.
func (h *scheduleHandlerImpl) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var req schedule.ApplyTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.TemplateID = chi.URLParam(r, "id")

	result, err := h.scheduleService.ApplyTemplate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Template applied", result)
}
