package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/jackc/pgx/v5"

	"github.com/presensi-hq/presensi-backend-go/internal/domain/auth"
	"github.com/presensi-hq/presensi-backend-go/internal/domain/employee"
	"github.com/presensi-hq/presensi-backend-go/internal/domain/schedule"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/cache"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/database"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/lock"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/timeutil"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/validator"
	"github.com/presensi-hq/presensi-backend-go/internal/repository/postgresql"
)

const weekCacheTTL = 5 * time.Minute

type ScheduleServiceImpl struct {
	db    *database.DB
	cache cache.Cache
	locks *lock.Keyed
	schedule.ShiftRepository
	schedule.AssignmentRepository
	schedule.TemplateRepository
	employee.EmployeeRepository
}

func companyFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", auth.ErrMissingIdentity
	}
	return companyID, nil
}

func slotLockKey(employeeID string, weekStart time.Time, dayOfWeek int) string {
	return "slot:" + employeeID + ":" + weekStart.Format("2006-01-02") + ":" + strconv.Itoa(dayOfWeek)
}

// lockSlots takes every slot lock a merge will write to, in sorted key
// order so two merges over intersecting slots cannot deadlock, and returns
// the matching release. The same keys guard single-slot upserts, so a merge
// never decides against a snapshot an upsert is about to invalidate.
func (s *ScheduleServiceImpl) lockSlots(keys map[string]bool) func() {
	ordered := make([]string, 0, len(keys))
	for key := range keys {
		ordered = append(ordered, key)
	}
	sort.Strings(ordered)

	for _, key := range ordered {
		s.locks.Lock(key)
	}
	return func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			s.locks.Unlock(ordered[i])
		}
	}
}

func weekCachePrefix(companyID string, weekStart time.Time) string {
	return "week:" + companyID + ":" + weekStart.Format("2006-01-02")
}

func parseWeekStart(weekStart string) (time.Time, error) {
	date, ok := validator.IsValidDate(weekStart)
	if !ok {
		return time.Time{}, validator.ValidationErrors{{
			Field:   "week_start",
			Message: "week_start must be a date in YYYY-MM-DD format",
		}}
	}
	if date.Weekday() != time.Monday {
		return time.Time{}, validator.ValidationErrors{{
			Field:   "week_start",
			Message: "week_start must be a Monday",
		}}
	}
	return date, nil
}

func isNightShift(shift schedule.ShiftDefinition) bool {
	start, err := timeutil.ClockToMinutes(shift.StartTime)
	if err != nil {
		return false
	}
	end, err := timeutil.ClockToMinutes(shift.EndTime)
	if err != nil {
		return false
	}
	return end < start
}

func toShiftResponse(shift schedule.ShiftDefinition) schedule.ShiftResponse {
	return schedule.ShiftResponse{
		ID:           shift.ID,
		Name:         shift.Name,
		StartTime:    shift.StartTime,
		EndTime:      shift.EndTime,
		BreakMinutes: shift.BreakMinutes,
		Flexible:     shift.Flexible,
		Color:        shift.Color,
		Active:       shift.Active,
		IsNightShift: isNightShift(shift),
	}
}

func toAssignmentResponse(a schedule.WeeklyAssignment) schedule.AssignmentResponse {
	return schedule.AssignmentResponse{
		ID:             a.ID,
		EmployeeID:     a.EmployeeID,
		WeekStart:      a.WeekStart.Format("2006-01-02"),
		DayOfWeek:      a.DayOfWeek,
		ShiftID:        a.ShiftID,
		ShiftName:      a.ShiftName,
		ShiftStartTime: a.ShiftStartTime,
		ShiftEndTime:   a.ShiftEndTime,
		IsRestDay:      a.IsRestDay(),
		Notes:          a.Notes,
	}
}

func (s *ScheduleServiceImpl) invalidateWeek(ctx context.Context, companyID string, weekStart time.Time) {
	prefix := weekCachePrefix(companyID, weekStart)
	if err := s.cache.DeleteByPrefix(ctx, prefix); err != nil {
		slog.Warn("week cache invalidation failed", "prefix", prefix, "error", err)
	}
}

func (s *ScheduleServiceImpl) invalidateAllWeeks(ctx context.Context, companyID string) {
	prefix := "week:" + companyID + ":"
	if err := s.cache.DeleteByPrefix(ctx, prefix); err != nil {
		slog.Warn("week cache invalidation failed", "prefix", prefix, "error", err)
	}
}

// ========================================
// SHIFTS
// ========================================

// CreateShift implements schedule.Service.
func (s *ScheduleServiceImpl) CreateShift(ctx context.Context, req schedule.CreateShiftRequest) (schedule.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.ShiftResponse{}, err
	}

	companyID, err := companyFromContext(ctx)
	if err != nil {
		return schedule.ShiftResponse{}, err
	}

	exists, err := s.ShiftRepository.ExistsByName(ctx, req.Name, companyID, nil)
	if err != nil {
		return schedule.ShiftResponse{}, fmt.Errorf("failed to check shift name: %w", err)
	}
	if exists {
		return schedule.ShiftResponse{}, schedule.ErrShiftNameExists
	}

	created, err := s.ShiftRepository.Create(ctx, schedule.ShiftDefinition{
		CompanyID:    companyID,
		Name:         req.Name,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		BreakMinutes: req.BreakMinutes,
		Flexible:     req.Flexible,
		Color:        req.Color,
		Active:       true,
	})
	if err != nil {
		return schedule.ShiftResponse{}, fmt.Errorf("failed to create shift: %w", err)
	}

	return toShiftResponse(created), nil
}

// GetShift implements schedule.Service.
func (s *ScheduleServiceImpl) GetShift(ctx context.Context, id string) (schedule.ShiftResponse, error) {
	companyID, err := companyFromContext(ctx)
	if err != nil {
		return schedule.ShiftResponse{}, err
	}

	shift, err := s.ShiftRepository.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.ShiftResponse{}, schedule.ErrShiftNotFound
		}
		return schedule.ShiftResponse{}, fmt.Errorf("failed to get shift: %w", err)
	}

	return toShiftResponse(shift), nil
}

// ListShifts implements schedule.Service.
func (s *ScheduleServiceImpl) ListShifts(ctx context.Context, activeOnly bool) ([]schedule.ShiftResponse, error) {
	companyID, err := companyFromContext(ctx)
	if err != nil {
		return nil, err
	}

	shifts, err := s.ShiftRepository.List(ctx, companyID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}

	responses := make([]schedule.ShiftResponse, 0, len(shifts))
	for _, shift := range shifts {
		responses = append(responses, toShiftResponse(shift))
	}
	return responses, nil
}

// UpdateShift implements schedule.Service.
func (s *ScheduleServiceImpl) UpdateShift(ctx context.Context, req schedule.UpdateShiftRequest) (schedule.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.ShiftResponse{}, err
	}

	companyID, err := companyFromContext(ctx)
	if err != nil {
		return schedule.ShiftResponse{}, err
	}

	shift, err := s.ShiftRepository.GetByID(ctx, req.ID, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.ShiftResponse{}, schedule.ErrShiftNotFound
		}
		return schedule.ShiftResponse{}, fmt.Errorf("failed to get shift: %w", err)
	}

	if req.Name != nil && *req.Name != shift.Name {
		exists, err := s.ShiftRepository.ExistsByName(ctx, *req.Name, companyID, &shift.ID)
		if err != nil {
			return schedule.ShiftResponse{}, fmt.Errorf("failed to check shift name: %w", err)
		}
		if exists {
			return schedule.ShiftResponse{}, schedule.ErrShiftNameExists
		}
		shift.Name = *req.Name
	}
	if req.StartTime != nil {
		shift.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		shift.EndTime = *req.EndTime
	}
	if !schedule.IsValidShiftRange(shift.StartTime, shift.EndTime) {
		return schedule.ShiftResponse{}, schedule.ErrInvalidShiftRange
	}
	if req.BreakMinutes != nil {
		shift.BreakMinutes = req.BreakMinutes
	}
	if req.Flexible != nil {
		shift.Flexible = *req.Flexible
	}
	if req.Color != nil {
		shift.Color = *req.Color
	}
	if req.Active != nil {
		shift.Active = *req.Active
	}

	if err := s.ShiftRepository.Update(ctx, shift); err != nil {
		return schedule.ShiftResponse{}, fmt.Errorf("failed to update shift: %w", err)
	}

	// Shift times are joined into week views, so any cached week of the
	// company may now be stale.
	s.invalidateAllWeeks(ctx, companyID)

	return toShiftResponse(shift), nil
}

// DeleteShift implements schedule.Service.
func (s *ScheduleServiceImpl) DeleteShift(ctx context.Context, req schedule.DeleteShiftRequest) error {
	companyID, err := companyFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := s.ShiftRepository.GetByID(ctx, req.ID, companyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.ErrShiftNotFound
		}
		return fmt.Errorf("failed to get shift: %w", err)
	}

	count, err := s.AssignmentRepository.CountByShiftID(ctx, req.ID, companyID)
	if err != nil {
		return fmt.Errorf("failed to count shift assignments: %w", err)
	}

	if count > 0 && !req.Force {
		return schedule.ErrShiftInUse
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if count > 0 {
			if err := s.AssignmentRepository.DeleteByShiftID(txCtx, req.ID, companyID); err != nil {
				return fmt.Errorf("failed to delete shift assignments: %w", err)
			}
		}
		if err := s.ShiftRepository.Delete(txCtx, req.ID, companyID); err != nil {
			return fmt.Errorf("failed to delete shift: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateAllWeeks(ctx, companyID)
	return nil
}

// ========================================
// WEEKLY ASSIGNMENTS
// ========================================

// UpsertAssignment implements schedule.Service.
func (s *ScheduleServiceImpl) UpsertAssignment(ctx context.Context, req schedule.UpsertAssignmentRequest) (schedule.AssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.AssignmentResponse{}, err
	}

	companyID, err := companyFromContext(ctx)
	if err != nil {
		return schedule.AssignmentResponse{}, err
	}

	exists, err := s.EmployeeRepository.ExistsInCompany(ctx, req.EmployeeID, companyID)
	if err != nil {
		return schedule.AssignmentResponse{}, fmt.Errorf("failed to check employee membership: %w", err)
	}
	if !exists {
		return schedule.AssignmentResponse{}, employee.ErrEmployeeNotFound
	}

	weekStart, _ := validator.IsValidDate(req.WeekStart)

	// One writer per (employee, week, day): the overlap check and the insert
	// must not interleave with a concurrent upsert for the same slot.
	key := slotLockKey(req.EmployeeID, weekStart, req.DayOfWeek)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	assignment := schedule.WeeklyAssignment{
		EmployeeID: req.EmployeeID,
		CompanyID:  companyID,
		WeekStart:  weekStart,
		DayOfWeek:  req.DayOfWeek,
		ShiftID:    req.ShiftID,
		Notes:      req.Notes,
	}

	if req.ShiftID == nil {
		// An explicit rest day replaces any previous rest marker; there is
		// no shift range to check.
		if err := s.AssignmentRepository.DeleteRestBySlot(ctx, req.EmployeeID, companyID, weekStart, req.DayOfWeek); err != nil {
			return schedule.AssignmentResponse{}, fmt.Errorf("failed to clear rest day: %w", err)
		}

		created, err := s.AssignmentRepository.Create(ctx, assignment)
		if err != nil {
			return schedule.AssignmentResponse{}, fmt.Errorf("failed to create rest day: %w", err)
		}

		s.invalidateWeek(ctx, companyID, weekStart)
		return toAssignmentResponse(created), nil
	}

	shift, err := s.ShiftRepository.GetByID(ctx, *req.ShiftID, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.AssignmentResponse{}, schedule.ErrShiftNotFound
		}
		return schedule.AssignmentResponse{}, fmt.Errorf("failed to get shift: %w", err)
	}

	existing, err := s.AssignmentRepository.ListBySlot(ctx, req.EmployeeID, companyID, weekStart, req.DayOfWeek)
	if err != nil {
		return schedule.AssignmentResponse{}, fmt.Errorf("failed to list slot assignments: %w", err)
	}

	for _, a := range existing {
		if a.IsRestDay() || a.ShiftStartTime == nil || a.ShiftEndTime == nil {
			continue
		}
		overlap, err := schedule.RangesOverlap(shift.StartTime, shift.EndTime, *a.ShiftStartTime, *a.ShiftEndTime)
		if err != nil {
			return schedule.AssignmentResponse{}, fmt.Errorf("failed to compare shift ranges: %w", err)
		}
		if overlap {
			return schedule.AssignmentResponse{}, schedule.ErrOverlappingShift
		}
	}

	// The day stops being a rest day the moment a shift lands on it.
	if err := s.AssignmentRepository.DeleteRestBySlot(ctx, req.EmployeeID, companyID, weekStart, req.DayOfWeek); err != nil {
		return schedule.AssignmentResponse{}, fmt.Errorf("failed to clear rest day: %w", err)
	}

	created, err := s.AssignmentRepository.Create(ctx, assignment)
	if err != nil {
		return schedule.AssignmentResponse{}, fmt.Errorf("failed to create assignment: %w", err)
	}

	created.ShiftName = &shift.Name
	created.ShiftStartTime = &shift.StartTime
	created.ShiftEndTime = &shift.EndTime

	s.invalidateWeek(ctx, companyID, weekStart)
	return toAssignmentResponse(created), nil
}

// DeleteAssignment implements schedule.Service.
func (s *ScheduleServiceImpl) DeleteAssignment(ctx context.Context, id string) error {
	companyID, err := companyFromContext(ctx)
	if err != nil {
		return err
	}

	assignment, err := s.AssignmentRepository.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to get assignment: %w", err)
	}

	if err := s.AssignmentRepository.Delete(ctx, id, companyID); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	s.invalidateWeek(ctx, companyID, assignment.WeekStart)
	return nil
}

// GetWeek implements schedule.Service.
func (s *ScheduleServiceImpl) GetWeek(ctx context.Context, filter schedule.GetWeekFilter) (schedule.WeekResponse, error) {
	companyID, err := companyFromContext(ctx)
	if err != nil {
		return schedule.WeekResponse{}, err
	}

	weekStart, err := parseWeekStart(filter.WeekStart)
	if err != nil {
		return schedule.WeekResponse{}, err
	}

	cacheKey := weekCachePrefix(companyID, weekStart) + ":all"
	if filter.EmployeeID != nil {
		cacheKey = weekCachePrefix(companyID, weekStart) + ":" + *filter.EmployeeID
	}

	if raw, found, err := s.cache.Get(ctx, cacheKey); err != nil {
		slog.Warn("week cache read failed", "key", cacheKey, "error", err)
	} else if found {
		var resp schedule.WeekResponse
		if err := json.Unmarshal([]byte(raw), &resp); err == nil {
			return resp, nil
		}
	}

	assignments, err := s.AssignmentRepository.ListByWeek(ctx, companyID, weekStart, filter.EmployeeID)
	if err != nil {
		return schedule.WeekResponse{}, fmt.Errorf("failed to list week assignments: %w", err)
	}

	resp := schedule.WeekResponse{
		WeekStart:   weekStart.Format("2006-01-02"),
		Assignments: make([]schedule.AssignmentResponse, 0, len(assignments)),
	}
	for _, a := range assignments {
		resp.Assignments = append(resp.Assignments, toAssignmentResponse(a))
	}

	if raw, err := json.Marshal(resp); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(raw), weekCacheTTL); err != nil {
			slog.Warn("week cache write failed", "key", cacheKey, "error", err)
		}
	}
	return resp, nil
}

// timeRange is a shift interval in "HH:MM" bounds, used during merges.
type timeRange struct {
	start, end string
}

// slotState tracks what one (employee, day) slot already holds while a copy
// or template merge accumulates candidate rows.
type slotState struct {
	rest   bool
	ranges []timeRange
	seen   map[string]bool
}

func getSlot(states map[string]*slotState, key string) *slotState {
	st, ok := states[key]
	if !ok {
		st = &slotState{seen: make(map[string]bool)}
		states[key] = st
	}
	return st
}

func buildSlotStates(existing []schedule.WeeklyAssignment) map[string]*slotState {
	states := make(map[string]*slotState)
	for _, a := range existing {
		st := getSlot(states, a.EmployeeID+":"+strconv.Itoa(a.DayOfWeek))
		if a.IsRestDay() {
			st.rest = true
			st.seen["rest"] = true
			continue
		}
		st.seen[*a.ShiftID] = true
		if a.ShiftStartTime != nil && a.ShiftEndTime != nil {
			st.ranges = append(st.ranges, timeRange{*a.ShiftStartTime, *a.ShiftEndTime})
		}
	}
	return states
}

// admit decides whether a candidate entry may join the slot. Exact
// duplicates and conflicting entries are dropped silently; accepted entries
// immediately count against later candidates of the same merge.
func (st *slotState) admit(shiftID *string, startTime, endTime string) (bool, error) {
	if shiftID == nil {
		if st.rest || len(st.seen) > 0 {
			return false, nil
		}
		st.rest = true
		st.seen["rest"] = true
		return true, nil
	}

	if st.seen[*shiftID] || st.rest {
		return false, nil
	}
	for _, r := range st.ranges {
		overlap, err := schedule.RangesOverlap(startTime, endTime, r.start, r.end)
		if err != nil {
			return false, err
		}
		if overlap {
			return false, nil
		}
	}

	st.seen[*shiftID] = true
	st.ranges = append(st.ranges, timeRange{startTime, endTime})
	return true, nil
}

// CopyWeek implements schedule.Service.
func (s *ScheduleServiceImpl) CopyWeek(ctx context.Context, req schedule.CopyWeekRequest) ([]schedule.AssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	companyID, err := companyFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sourceWeek, _ := validator.IsValidDate(req.SourceWeekStart)
	targetWeek, _ := validator.IsValidDate(req.TargetWeekStart)

	source, err := s.AssignmentRepository.ListByWeek(ctx, companyID, sourceWeek, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list source week: %w", err)
	}

	if len(req.EmployeeIDs) > 0 {
		wanted := make(map[string]bool, len(req.EmployeeIDs))
		for _, id := range req.EmployeeIDs {
			wanted[id] = true
		}
		filtered := source[:0]
		for _, a := range source {
			if wanted[a.EmployeeID] {
				filtered = append(filtered, a)
			}
		}
		source = filtered
	}

	slots := make(map[string]bool)
	for _, a := range source {
		slots[slotLockKey(a.EmployeeID, targetWeek, a.DayOfWeek)] = true
	}
	unlock := s.lockSlots(slots)
	defer unlock()

	existing, err := s.AssignmentRepository.ListByWeek(ctx, companyID, targetWeek, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list target week: %w", err)
	}

	states := buildSlotStates(existing)

	var batch []schedule.WeeklyAssignment
	var joined []schedule.WeeklyAssignment
	for _, a := range source {
		st := getSlot(states, a.EmployeeID+":"+strconv.Itoa(a.DayOfWeek))

		var startTime, endTime string
		if a.ShiftStartTime != nil && a.ShiftEndTime != nil {
			startTime, endTime = *a.ShiftStartTime, *a.ShiftEndTime
		}

		accepted, err := st.admit(a.ShiftID, startTime, endTime)
		if err != nil {
			return nil, fmt.Errorf("failed to compare shift ranges: %w", err)
		}
		if !accepted {
			continue
		}

		batch = append(batch, schedule.WeeklyAssignment{
			EmployeeID: a.EmployeeID,
			CompanyID:  companyID,
			WeekStart:  targetWeek,
			DayOfWeek:  a.DayOfWeek,
			ShiftID:    a.ShiftID,
			Notes:      a.Notes,
		})
		joined = append(joined, a)
	}

	if len(batch) == 0 {
		return []schedule.AssignmentResponse{}, nil
	}

	created, err := s.AssignmentRepository.CreateBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to copy week assignments: %w", err)
	}

	s.invalidateWeek(ctx, companyID, targetWeek)

	responses := make([]schedule.AssignmentResponse, 0, len(created))
	for i, a := range created {
		a.ShiftName = joined[i].ShiftName
		a.ShiftStartTime = joined[i].ShiftStartTime
		a.ShiftEndTime = joined[i].ShiftEndTime
		responses = append(responses, toAssignmentResponse(a))
	}
	return responses, nil
}

// ApplyTemplate implements schedule.Service.
func (s *ScheduleServiceImpl) ApplyTemplate(ctx context.Context, req schedule.ApplyTemplateRequest) ([]schedule.AssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	companyID, err := companyFromContext(ctx)
	if err != nil {
		return nil, err
	}

	template, err := s.TemplateRepository.GetByID(ctx, req.TemplateID, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, schedule.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	weekStart, _ := validator.IsValidDate(req.WeekStart)

	for _, employeeID := range req.EmployeeIDs {
		exists, err := s.EmployeeRepository.ExistsInCompany(ctx, employeeID, companyID)
		if err != nil {
			return nil, fmt.Errorf("failed to check employee membership: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("employee %s: %w", employeeID, employee.ErrEmployeeNotFound)
		}
	}

	shiftIDs := make([]string, 0)
	seenShift := make(map[string]bool)
	for _, entries := range template.WeekData {
		for _, entry := range entries {
			if !seenShift[entry.ShiftID] {
				seenShift[entry.ShiftID] = true
				shiftIDs = append(shiftIDs, entry.ShiftID)
			}
		}
	}

	shifts, err := s.ShiftRepository.GetByIDs(ctx, shiftIDs, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template shifts: %w", err)
	}
	shiftByID := make(map[string]schedule.ShiftDefinition, len(shifts))
	for _, shift := range shifts {
		shiftByID[shift.ID] = shift
	}
	for _, id := range shiftIDs {
		if _, ok := shiftByID[id]; !ok {
			return nil, fmt.Errorf("shift %s: %w", id, schedule.ErrShiftNotFound)
		}
	}

	slots := make(map[string]bool)
	for _, employeeID := range req.EmployeeIDs {
		for day, entries := range template.WeekData {
			if len(entries) > 0 {
				slots[slotLockKey(employeeID, weekStart, day)] = true
			}
		}
	}
	unlock := s.lockSlots(slots)
	defer unlock()

	existing, err := s.AssignmentRepository.ListByWeek(ctx, companyID, weekStart, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list target week: %w", err)
	}

	states := buildSlotStates(existing)

	var batch []schedule.WeeklyAssignment
	var batchShifts []schedule.ShiftDefinition
	for _, employeeID := range req.EmployeeIDs {
		for day := 0; day <= 6; day++ {
			for _, entry := range template.WeekData[day] {
				shift := shiftByID[entry.ShiftID]
				st := getSlot(states, employeeID+":"+strconv.Itoa(day))

				shiftID := entry.ShiftID
				accepted, err := st.admit(&shiftID, shift.StartTime, shift.EndTime)
				if err != nil {
					return nil, fmt.Errorf("failed to compare shift ranges: %w", err)
				}
				if !accepted {
					continue
				}

				batch = append(batch, schedule.WeeklyAssignment{
					EmployeeID: employeeID,
					CompanyID:  companyID,
					WeekStart:  weekStart,
					DayOfWeek:  day,
					ShiftID:    &shiftID,
					Notes:      entry.Notes,
				})
				batchShifts = append(batchShifts, shift)
			}
		}
	}

	if len(batch) == 0 {
		return []schedule.AssignmentResponse{}, nil
	}

	created, err := s.AssignmentRepository.CreateBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to apply template: %w", err)
	}

	s.invalidateWeek(ctx, companyID, weekStart)

	responses := make([]schedule.AssignmentResponse, 0, len(created))
	for i, a := range created {
		shift := batchShifts[i]
		a.ShiftName = &shift.Name
		a.ShiftStartTime = &shift.StartTime
		a.ShiftEndTime = &shift.EndTime
		responses = append(responses, toAssignmentResponse(a))
	}
	return responses, nil
}

// ========================================
// TEMPLATES
// ========================================

// CreateTemplate implements schedule.Service.
func (s *ScheduleServiceImpl) CreateTemplate(ctx context.Context, req schedule.CreateTemplateRequest) (schedule.TemplateResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.TemplateResponse{}, err
	}

	companyID, err := companyFromContext(ctx)
	if err != nil {
		return schedule.TemplateResponse{}, err
	}

	exists, err := s.TemplateRepository.ExistsByName(ctx, req.Name, companyID)
	if err != nil {
		return schedule.TemplateResponse{}, fmt.Errorf("failed to check template name: %w", err)
	}
	if exists {
		return schedule.TemplateResponse{}, schedule.ErrTemplateNameExists
	}

	shiftIDs := make([]string, 0)
	seenShift := make(map[string]bool)
	weekData := make(map[int][]schedule.TemplateEntry)
	for _, day := range req.Days {
		for _, entry := range day.Entries {
			weekData[day.DayOfWeek] = append(weekData[day.DayOfWeek], schedule.TemplateEntry{
				ShiftID: entry.ShiftID,
				Notes:   entry.Notes,
			})
			if !seenShift[entry.ShiftID] {
				seenShift[entry.ShiftID] = true
				shiftIDs = append(shiftIDs, entry.ShiftID)
			}
		}
	}

	shifts, err := s.ShiftRepository.GetByIDs(ctx, shiftIDs, companyID)
	if err != nil {
		return schedule.TemplateResponse{}, fmt.Errorf("failed to get template shifts: %w", err)
	}
	if len(shifts) != len(shiftIDs) {
		return schedule.TemplateResponse{}, schedule.ErrShiftNotFound
	}

	created, err := s.TemplateRepository.Create(ctx, schedule.WeeklyTemplate{
		CompanyID: companyID,
		Name:      req.Name,
		WeekData:  weekData,
	})
	if err != nil {
		return schedule.TemplateResponse{}, fmt.Errorf("failed to create template: %w", err)
	}

	return toTemplateResponse(created), nil
}

// ListTemplates implements schedule.Service.
func (s *ScheduleServiceImpl) ListTemplates(ctx context.Context) ([]schedule.TemplateResponse, error) {
	companyID, err := companyFromContext(ctx)
	if err != nil {
		return nil, err
	}

	templates, err := s.TemplateRepository.List(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	responses := make([]schedule.TemplateResponse, 0, len(templates))
	for _, template := range templates {
		responses = append(responses, toTemplateResponse(template))
	}
	return responses, nil
}

// DeleteTemplate implements schedule.Service.
func (s *ScheduleServiceImpl) DeleteTemplate(ctx context.Context, id string) error {
	companyID, err := companyFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := s.TemplateRepository.GetByID(ctx, id, companyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.ErrTemplateNotFound
		}
		return fmt.Errorf("failed to get template: %w", err)
	}

	if err := s.TemplateRepository.Delete(ctx, id, companyID); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

func toTemplateResponse(template schedule.WeeklyTemplate) schedule.TemplateResponse {
	resp := schedule.TemplateResponse{
		ID:   template.ID,
		Name: template.Name,
		Days: make([]schedule.TemplateDayRequest, 0, len(template.WeekData)),
	}
	for day := 0; day <= 6; day++ {
		entries, ok := template.WeekData[day]
		if !ok {
			continue
		}
		dayReq := schedule.TemplateDayRequest{DayOfWeek: day}
		for _, entry := range entries {
			dayReq.Entries = append(dayReq.Entries, schedule.TemplateEntryRequest{
				ShiftID: entry.ShiftID,
				Notes:   entry.Notes,
			})
		}
		resp.Days = append(resp.Days, dayReq)
	}
	return resp
}

func NewScheduleService(
	db *database.DB,
	cacheClient cache.Cache,
	locks *lock.Keyed,
	shiftRepo schedule.ShiftRepository,
	assignmentRepo schedule.AssignmentRepository,
	templateRepo schedule.TemplateRepository,
	employeeRepo employee.EmployeeRepository,
) schedule.Service {
	return &ScheduleServiceImpl{
		db:                   db,
		cache:                cacheClient,
		locks:                locks,
		ShiftRepository:      shiftRepo,
		AssignmentRepository: assignmentRepo,
		TemplateRepository:   templateRepo,
		EmployeeRepository:   employeeRepo,
	}
}
