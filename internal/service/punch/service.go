package punch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/jackc/pgx/v5"

	"github.com/presensi-hq/presensi-backend-go/internal/domain/auth"
	"github.com/presensi-hq/presensi-backend-go/internal/domain/company"
	"github.com/presensi-hq/presensi-backend-go/internal/domain/employee"
	"github.com/presensi-hq/presensi-backend-go/internal/domain/punch"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/cache"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/database"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/lock"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/timeutil"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/utils"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/validator"
	"github.com/presensi-hq/presensi-backend-go/internal/repository/postgresql"
)

const workDayCacheTTL = 10 * time.Minute

type PunchServiceImpl struct {
	db    *database.DB
	cache cache.Cache
	locks *lock.Keyed
	punch.EventRepository
	punch.EditLogRepository
	punch.WorkDayRepository
	employee.EmployeeRepository
	company.CompanyRepository
}

func identityFromContext(ctx context.Context) (string, string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", auth.ErrMissingIdentity
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", "", auth.ErrMissingIdentity
	}

	return companyID, employeeID, nil
}

func punchLockKey(employeeID string, day time.Time) string {
	return "punch:" + employeeID + ":" + day.Format("2006-01-02")
}

func workDayCacheKey(companyID, employeeID string, day time.Time) string {
	return "workday:" + companyID + ":" + employeeID + ":" + day.Format("2006-01-02")
}

func toPunchResponse(e punch.Event) punch.PunchResponse {
	return punch.PunchResponse{
		ID:           e.ID,
		EmployeeID:   e.EmployeeID,
		EmployeeName: e.EmployeeName,
		Type:         string(e.Type),
		Timestamp:    e.Timestamp.UTC().Format(time.RFC3339),
		Source:       e.Source,
		Latitude:     e.Latitude,
		Longitude:    e.Longitude,
		IsRemoteWork: e.IsRemoteWork,
		Notes:        e.Notes,
		WorkDayDate:  timeutil.WorkDayStart(e.Timestamp.UTC()).Format("2006-01-02"),
		CreatedAt:    e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toWorkDayResponse(wd punch.WorkDay) punch.WorkDayResponse {
	return punch.WorkDayResponse{
		EmployeeID:      wd.EmployeeID,
		Date:            wd.Date.Format("2006-01-02"),
		StartTime:       wd.StartTime.UTC().Format(time.RFC3339),
		EndTime:         wd.EndTime.UTC().Format(time.RFC3339),
		WorkedMinutes:   wd.WorkedMinutes,
		BreakMinutes:    wd.BreakMinutes,
		OvertimeMinutes: wd.OvertimeMinutes,
		Status:          string(wd.Status),
	}
}

// Punch implements punch.Service.
func (s *PunchServiceImpl) Punch(ctx context.Context, req punch.CreatePunchRequest) (punch.PunchResponse, error) {
	if err := req.Validate(); err != nil {
		return punch.PunchResponse{}, err
	}

	companyID, employeeID, err := identityFromContext(ctx)
	if err != nil {
		return punch.PunchResponse{}, err
	}

	ts := time.Now().UTC()
	if req.Timestamp != "" {
		parsed, _ := validator.IsValidDateTime(req.Timestamp)
		ts = parsed.UTC()
	}

	if req.Latitude != nil && !req.IsRemoteWork {
		geofence, err := s.CompanyRepository.GetGeofence(ctx, companyID)
		if err != nil {
			return punch.PunchResponse{}, fmt.Errorf("failed to get company geofence: %w", err)
		}
		if geofence != nil {
			inside, distance := utils.WithinRadius(*req.Latitude, *req.Longitude, geofence.Latitude, geofence.Longitude, geofence.RadiusMeters)
			if !inside {
				return punch.PunchResponse{}, &punch.GeofenceError{
					DistanceMeters: distance,
					RadiusMeters:   geofence.RadiusMeters,
				}
			}
		}
	}

	day := timeutil.WorkDayStart(ts)
	windowStart, windowEnd := timeutil.WorkDayBounds(day)

	// One writer per (employee, work day): the sequence check and the append
	// must not interleave with a concurrent punch for the same day.
	key := punchLockKey(employeeID, day)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	events, err := s.EventRepository.ListByWindow(ctx, employeeID, companyID, windowStart, windowEnd)
	if err != nil {
		return punch.PunchResponse{}, fmt.Errorf("failed to list punches for work day: %w", err)
	}

	if err := punch.ValidateNext(events, punch.Type(req.Type)); err != nil {
		return punch.PunchResponse{}, err
	}

	source := req.Source
	if source == "" {
		source = "web"
	}

	created, err := s.EventRepository.Create(ctx, punch.Event{
		EmployeeID:   employeeID,
		CompanyID:    companyID,
		Type:         punch.Type(req.Type),
		Timestamp:    ts,
		Source:       source,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		IsRemoteWork: req.IsRemoteWork,
		Notes:        req.Notes,
	})
	if err != nil {
		return punch.PunchResponse{}, fmt.Errorf("failed to create punch: %w", err)
	}

	if _, err := s.recomputeWindow(ctx, employeeID, companyID, day); err != nil {
		return punch.PunchResponse{}, err
	}

	return toPunchResponse(created), nil
}

// GetState implements punch.Service.
func (s *PunchServiceImpl) GetState(ctx context.Context) (punch.StateResponse, error) {
	companyID, employeeID, err := identityFromContext(ctx)
	if err != nil {
		return punch.StateResponse{}, err
	}
	return s.stateFor(ctx, employeeID, companyID)
}

// GetStateFor implements punch.Service.
func (s *PunchServiceImpl) GetStateFor(ctx context.Context, employeeID string) (punch.StateResponse, error) {
	companyID, _, err := identityFromContext(ctx)
	if err != nil {
		return punch.StateResponse{}, err
	}

	exists, err := s.EmployeeRepository.ExistsInCompany(ctx, employeeID, companyID)
	if err != nil {
		return punch.StateResponse{}, fmt.Errorf("failed to check employee membership: %w", err)
	}
	if !exists {
		return punch.StateResponse{}, employee.ErrEmployeeNotFound
	}

	return s.stateFor(ctx, employeeID, companyID)
}

// stateFor projects the live punch state from the current work-day window.
// It is always computed fresh; the answer changes the moment a punch lands.
func (s *PunchServiceImpl) stateFor(ctx context.Context, employeeID, companyID string) (punch.StateResponse, error) {
	dayStart, dayEnd := timeutil.WorkDayWindow(time.Now().UTC())

	events, err := s.EventRepository.ListByWindow(ctx, employeeID, companyID, dayStart, dayEnd)
	if err != nil {
		return punch.StateResponse{}, fmt.Errorf("failed to list punches for work day: %w", err)
	}

	state := punch.ProjectState(events)

	resp := punch.StateResponse{
		EmployeeID:  employeeID,
		Status:      state.Status,
		AllowedNext: make([]string, 0, len(state.AllowedNext)),
	}
	for _, t := range state.AllowedNext {
		resp.AllowedNext = append(resp.AllowedNext, string(t))
	}
	if state.LastType != punch.TypeNone {
		lastType := string(state.LastType)
		resp.LastType = &lastType
	}
	if state.LastTimestamp != nil {
		lastTS := state.LastTimestamp.UTC().Format(time.RFC3339)
		resp.LastTimestamp = &lastTS
	}
	return resp, nil
}

// GetWorkDay implements punch.Service.
func (s *PunchServiceImpl) GetWorkDay(ctx context.Context, employeeID string, date string) (punch.WorkDayResponse, error) {
	companyID, selfID, err := identityFromContext(ctx)
	if err != nil {
		return punch.WorkDayResponse{}, err
	}
	if employeeID == "" {
		employeeID = selfID
	}

	day, ok := validator.IsValidDate(date)
	if !ok {
		return punch.WorkDayResponse{}, validator.ValidationErrors{{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		}}
	}

	cacheKey := workDayCacheKey(companyID, employeeID, day)
	if raw, found, err := s.cache.Get(ctx, cacheKey); err != nil {
		slog.Warn("work day cache read failed", "key", cacheKey, "error", err)
	} else if found {
		var resp punch.WorkDayResponse
		if err := json.Unmarshal([]byte(raw), &resp); err == nil {
			return resp, nil
		}
	}

	workDay, err := s.WorkDayRepository.Get(ctx, employeeID, companyID, day)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return punch.WorkDayResponse{}, punch.ErrWorkDayNotFound
		}
		return punch.WorkDayResponse{}, fmt.Errorf("failed to get work day: %w", err)
	}

	resp := toWorkDayResponse(workDay)
	if raw, err := json.Marshal(resp); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(raw), workDayCacheTTL); err != nil {
			slog.Warn("work day cache write failed", "key", cacheKey, "error", err)
		}
	}
	return resp, nil
}

// RecomputeWorkDay implements punch.Service.
func (s *PunchServiceImpl) RecomputeWorkDay(ctx context.Context, employeeID string, date string) (punch.WorkDayResponse, error) {
	companyID, selfID, err := identityFromContext(ctx)
	if err != nil {
		return punch.WorkDayResponse{}, err
	}
	if employeeID == "" {
		employeeID = selfID
	}

	day, ok := validator.IsValidDate(date)
	if !ok {
		return punch.WorkDayResponse{}, validator.ValidationErrors{{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		}}
	}

	key := punchLockKey(employeeID, day)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	workDay, err := s.recomputeWindow(ctx, employeeID, companyID, day)
	if err != nil {
		return punch.WorkDayResponse{}, err
	}
	if workDay == nil {
		return punch.WorkDayResponse{}, punch.ErrWorkDayNotFound
	}
	return toWorkDayResponse(*workDay), nil
}

// recomputeWindow rebuilds the summary of the work day labeled day from the
// punches alone. An empty window removes the row instead of writing a zeroed
// one. The cached summary is dropped either way.
func (s *PunchServiceImpl) recomputeWindow(ctx context.Context, employeeID, companyID string, day time.Time) (*punch.WorkDay, error) {
	windowStart, windowEnd := timeutil.WorkDayBounds(day)

	events, err := s.EventRepository.ListByWindow(ctx, employeeID, companyID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list punches for recompute: %w", err)
	}

	defer func() {
		cacheKey := workDayCacheKey(companyID, employeeID, day)
		if err := s.cache.DeleteByPrefix(ctx, cacheKey); err != nil {
			slog.Warn("work day cache invalidation failed", "key", cacheKey, "error", err)
		}
	}()

	summary := punch.Aggregate(events)
	if summary == nil {
		if err := s.WorkDayRepository.Delete(ctx, employeeID, companyID, day); err != nil {
			return nil, fmt.Errorf("failed to delete empty work day: %w", err)
		}
		return nil, nil
	}

	workDay, err := s.WorkDayRepository.Upsert(ctx, punch.WorkDay{
		EmployeeID:      employeeID,
		CompanyID:       companyID,
		Date:            day,
		StartTime:       summary.StartTime,
		EndTime:         summary.EndTime,
		WorkedMinutes:   summary.WorkedMinutes,
		BreakMinutes:    summary.BreakMinutes,
		OvertimeMinutes: summary.OvertimeMinutes,
		Status:          summary.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert work day: %w", err)
	}
	return &workDay, nil
}

// ListPunches implements punch.Service.
func (s *PunchServiceImpl) ListPunches(ctx context.Context, filter punch.ListPunchFilter) (punch.ListPunchResponse, error) {
	companyID, _, err := identityFromContext(ctx)
	if err != nil {
		return punch.ListPunchResponse{}, err
	}

	var errs validator.ValidationErrors
	if filter.Type != nil && !validator.IsInSlice(*filter.Type, punch.TypeValues) {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "type must be one of IN, OUT, BREAK, RESUME"})
	}
	if filter.StartDate != nil {
		if _, ok := validator.IsValidDate(*filter.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
		}
	}
	if filter.EndDate != nil {
		if _, ok := validator.IsValidDate(*filter.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
		}
	}
	if len(errs) > 0 {
		return punch.ListPunchResponse{}, errs
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.SortOrder != "asc" {
		filter.SortOrder = "desc"
	}

	events, total, err := s.EventRepository.List(ctx, filter, companyID)
	if err != nil {
		return punch.ListPunchResponse{}, fmt.Errorf("failed to list punches: %w", err)
	}

	resp := punch.ListPunchResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
		Punches:    make([]punch.PunchResponse, 0, len(events)),
	}
	for _, e := range events {
		resp.Punches = append(resp.Punches, toPunchResponse(e))
	}
	return resp, nil
}

// UpdatePunch implements punch.Service.
func (s *PunchServiceImpl) UpdatePunch(ctx context.Context, req punch.UpdatePunchRequest) (punch.PunchResponse, error) {
	if err := req.Validate(); err != nil {
		return punch.PunchResponse{}, err
	}

	companyID, actorID, err := identityFromContext(ctx)
	if err != nil {
		return punch.PunchResponse{}, err
	}

	event, err := s.EventRepository.GetByID(ctx, req.ID, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return punch.PunchResponse{}, punch.ErrPunchNotFound
		}
		return punch.PunchResponse{}, fmt.Errorf("failed to get punch: %w", err)
	}

	oldTimestamp := event.Timestamp
	newTimestamp := oldTimestamp
	if req.Timestamp != nil {
		parsed, _ := validator.IsValidDateTime(*req.Timestamp)
		newTimestamp = parsed.UTC()
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if err := s.EventRepository.UpdateTimestamp(txCtx, req.ID, companyID, newTimestamp, req.Notes); err != nil {
			return fmt.Errorf("failed to update punch: %w", err)
		}

		if _, err := s.EditLogRepository.Create(txCtx, punch.EditLogEntry{
			PunchID:      req.ID,
			CompanyID:    companyID,
			ActorID:      actorID,
			OldTimestamp: oldTimestamp,
			NewTimestamp: &newTimestamp,
			Reason:       req.Reason,
		}); err != nil {
			return fmt.Errorf("failed to record punch edit: %w", err)
		}
		return nil
	})
	if err != nil {
		return punch.PunchResponse{}, err
	}

	// A timestamp edit can move the punch across the work-day boundary, so
	// both the old and the new window need a rebuild.
	oldDay := timeutil.WorkDayStart(oldTimestamp.UTC())
	newDay := timeutil.WorkDayStart(newTimestamp.UTC())
	if err := s.recomputeLocked(ctx, event.EmployeeID, companyID, oldDay); err != nil {
		return punch.PunchResponse{}, err
	}
	if !newDay.Equal(oldDay) {
		if err := s.recomputeLocked(ctx, event.EmployeeID, companyID, newDay); err != nil {
			return punch.PunchResponse{}, err
		}
	}

	event.Timestamp = newTimestamp
	if req.Notes != nil {
		event.Notes = req.Notes
	}
	return toPunchResponse(event), nil
}

// DeletePunch implements punch.Service.
func (s *PunchServiceImpl) DeletePunch(ctx context.Context, req punch.DeletePunchRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	companyID, actorID, err := identityFromContext(ctx)
	if err != nil {
		return err
	}

	event, err := s.EventRepository.GetByID(ctx, req.ID, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return punch.ErrPunchNotFound
		}
		return fmt.Errorf("failed to get punch: %w", err)
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if err := s.EventRepository.Delete(txCtx, req.ID, companyID); err != nil {
			return fmt.Errorf("failed to delete punch: %w", err)
		}

		if _, err := s.EditLogRepository.Create(txCtx, punch.EditLogEntry{
			PunchID:      req.ID,
			CompanyID:    companyID,
			ActorID:      actorID,
			OldTimestamp: event.Timestamp,
			NewTimestamp: nil,
			Reason:       req.Reason,
		}); err != nil {
			return fmt.Errorf("failed to record punch deletion: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.recomputeLocked(ctx, event.EmployeeID, companyID, timeutil.WorkDayStart(event.Timestamp.UTC()))
}

// BulkCreatePunches implements punch.Service.
func (s *PunchServiceImpl) BulkCreatePunches(ctx context.Context, req punch.BulkCreatePunchesRequest) ([]punch.PunchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	companyID, _, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	// Every employee reference is checked before anything is written; a
	// single bad row rejects the whole import.
	seen := make(map[string]bool)
	for _, item := range req.Items {
		if seen[item.EmployeeID] {
			continue
		}
		seen[item.EmployeeID] = true

		exists, err := s.EmployeeRepository.ExistsInCompany(ctx, item.EmployeeID, companyID)
		if err != nil {
			return nil, fmt.Errorf("failed to check employee membership: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("employee %s: %w", item.EmployeeID, employee.ErrEmployeeNotFound)
		}
	}

	source := req.Source
	if source == "" {
		source = "import"
	}

	events := make([]punch.Event, 0, len(req.Items))
	windows := make(map[string]map[time.Time]bool)
	for _, item := range req.Items {
		ts, _ := validator.IsValidDateTime(item.Timestamp)
		ts = ts.UTC()

		events = append(events, punch.Event{
			EmployeeID: item.EmployeeID,
			CompanyID:  companyID,
			Type:       punch.Type(item.Type),
			Timestamp:  ts,
			Source:     source,
			Notes:      item.Notes,
		})

		day := timeutil.WorkDayStart(ts)
		if windows[item.EmployeeID] == nil {
			windows[item.EmployeeID] = make(map[time.Time]bool)
		}
		windows[item.EmployeeID][day] = true
	}

	created, err := s.EventRepository.CreateBatch(ctx, events)
	if err != nil {
		return nil, fmt.Errorf("failed to create punch batch: %w", err)
	}

	for employeeID, days := range windows {
		for day := range days {
			if err := s.recomputeLocked(ctx, employeeID, companyID, day); err != nil {
				return nil, err
			}
		}
	}

	responses := make([]punch.PunchResponse, 0, len(created))
	for _, e := range created {
		responses = append(responses, toPunchResponse(e))
	}
	return responses, nil
}

// ListEditLog implements punch.Service.
func (s *PunchServiceImpl) ListEditLog(ctx context.Context, punchID string, page, limit int) (punch.ListEditLogResponse, error) {
	companyID, _, err := identityFromContext(ctx)
	if err != nil {
		return punch.ListEditLogResponse{}, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	entries, total, err := s.EditLogRepository.ListByPunchID(ctx, punchID, companyID, page, limit)
	if err != nil {
		return punch.ListEditLogResponse{}, fmt.Errorf("failed to list punch edit log: %w", err)
	}

	resp := punch.ListEditLogResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		Entries:    make([]punch.EditLogResponse, 0, len(entries)),
	}
	for _, entry := range entries {
		item := punch.EditLogResponse{
			ID:           entry.ID,
			PunchID:      entry.PunchID,
			ActorID:      entry.ActorID,
			OldTimestamp: entry.OldTimestamp.UTC().Format(time.RFC3339),
			Reason:       entry.Reason,
			CreatedAt:    entry.CreatedAt.UTC().Format(time.RFC3339),
		}
		if entry.NewTimestamp != nil {
			newTS := entry.NewTimestamp.UTC().Format(time.RFC3339)
			item.NewTimestamp = &newTS
		}
		resp.Entries = append(resp.Entries, item)
	}
	return resp, nil
}

func (s *PunchServiceImpl) recomputeLocked(ctx context.Context, employeeID, companyID string, day time.Time) error {
	key := punchLockKey(employeeID, day)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	_, err := s.recomputeWindow(ctx, employeeID, companyID, day)
	return err
}

func NewPunchService(
	db *database.DB,
	cacheClient cache.Cache,
	locks *lock.Keyed,
	eventRepo punch.EventRepository,
	editLogRepo punch.EditLogRepository,
	workDayRepo punch.WorkDayRepository,
	employeeRepo employee.EmployeeRepository,
	companyRepo company.CompanyRepository,
) punch.Service {
	return &PunchServiceImpl{
		db:                 db,
		cache:              cacheClient,
		locks:              locks,
		EventRepository:    eventRepo,
		EditLogRepository:  editLogRepo,
		WorkDayRepository:  workDayRepo,
		EmployeeRepository: employeeRepo,
		CompanyRepository:  companyRepo,
	}
}
