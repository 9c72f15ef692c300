package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/presensi-hq/presensi-backend-go/internal/domain/punch"
	"github.com/presensi-hq/presensi-backend-go/internal/handler/http/response"
)

type PunchHandler interface {
	Punch(w http.ResponseWriter, r *http.Request)
	GetState(w http.ResponseWriter, r *http.Request)
	GetStateFor(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	BulkCreate(w http.ResponseWriter, r *http.Request)
	ListEditLog(w http.ResponseWriter, r *http.Request)
	GetMyWorkDay(w http.ResponseWriter, r *http.Request)
	GetWorkDay(w http.ResponseWriter, r *http.Request)
	RecomputeWorkDay(w http.ResponseWriter, r *http.Request)
}

type punchHandlerImpl struct {
	punchService punch.Service
}

func NewPunchHandler(punchService punch.Service) PunchHandler {
	return &punchHandlerImpl{
		punchService: punchService,
	}
}

// Punch implements PunchHandler.
func (h *punchHandlerImpl) Punch(w http.ResponseWriter, r *http.Request) {
	var req punch.CreatePunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.punchService.Punch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punch recorded", result)
}

// GetState implements PunchHandler.
func (h *punchHandlerImpl) GetState(w http.ResponseWriter, r *http.Request) {
	result, err := h.punchService.GetState(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetStateFor implements PunchHandler.
func (h *punchHandlerImpl) GetStateFor(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	result, err := h.punchService.GetStateFor(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements PunchHandler.
func (h *punchHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := punch.ListPunchFilter{
		SortOrder: query.Get("sort_order"),
	}
	if v := query.Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := query.Get("type"); v != "" {
		filter.Type = &v
	}
	if v := query.Get("start_date"); v != "" {
		filter.StartDate = &v
	}
	if v := query.Get("end_date"); v != "" {
		filter.EndDate = &v
	}
	filter.Page, _ = strconv.Atoi(query.Get("page"))
	filter.Limit, _ = strconv.Atoi(query.Get("limit"))

	result, err := h.punchService.ListPunches(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Punches, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// Update implements PunchHandler.
func (h *punchHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req punch.UpdatePunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.punchService.UpdatePunch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punch updated", result)
}

// Delete implements PunchHandler.
func (h *punchHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	var req punch.DeletePunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := h.punchService.DeletePunch(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punch deleted", nil)
}

// BulkCreate implements PunchHandler.
func (h *punchHandlerImpl) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var req punch.BulkCreatePunchesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.punchService.BulkCreatePunches(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punches imported", result)
}

// ListEditLog implements PunchHandler.
func (h *punchHandlerImpl) ListEditLog(w http.ResponseWriter, r *http.Request) {
	punchID := chi.URLParam(r, "id")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.punchService.ListEditLog(r.Context(), punchID, page, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Entries, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
	})
}

// GetMyWorkDay implements PunchHandler.
func (h *punchHandlerImpl) GetMyWorkDay(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	result, err := h.punchService.GetWorkDay(r.Context(), "", date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetWorkDay implements PunchHandler.
func (h *punchHandlerImpl) GetWorkDay(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	date := chi.URLParam(r, "date")

	result, err := h.punchService.GetWorkDay(r.Context(), employeeID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// RecomputeWorkDay implements PunchHandler.
func (h *punchHandlerImpl) RecomputeWorkDay(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	date := chi.URLParam(r, "date")

	result, err := h.punchService.RecomputeWorkDay(r.Context(), employeeID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Work day recomputed", result)
}
