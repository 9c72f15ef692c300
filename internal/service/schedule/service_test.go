package schedule

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/jackc/pgx/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presensi-hq/presensi-backend-go/internal/domain/employee"
	"github.com/presensi-hq/presensi-backend-go/internal/domain/schedule"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/cache"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/lock"
)

const (
	testCompanyID  = "comp-1"
	testEmployeeID = "emp-1"
	testWeek       = "2026-03-02" // a Monday
	nextWeek       = "2026-03-09"
)

func authCtx(t *testing.T, companyID string) context.Context {
	t.Helper()
	token := jwt.New()
	require.NoError(t, token.Set("company_id", companyID))
	require.NoError(t, token.Set("employee_id", testEmployeeID))
	return jwtauth.NewContext(context.Background(), token, nil)
}

type fakeShiftRepo struct {
	shifts map[string]schedule.ShiftDefinition
	nextID int
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{shifts: make(map[string]schedule.ShiftDefinition)}
}

func (f *fakeShiftRepo) Create(_ context.Context, shift schedule.ShiftDefinition) (schedule.ShiftDefinition, error) {
	f.nextID++
	shift.ID = fmt.Sprintf("shift-%d", f.nextID)
	shift.CreatedAt = time.Now().UTC()
	f.shifts[shift.ID] = shift
	return shift, nil
}

func (f *fakeShiftRepo) GetByID(_ context.Context, id, companyID string) (schedule.ShiftDefinition, error) {
	shift, ok := f.shifts[id]
	if !ok || shift.CompanyID != companyID {
		return schedule.ShiftDefinition{}, fmt.Errorf("failed to get shift: %w", pgx.ErrNoRows)
	}
	return shift, nil
}

func (f *fakeShiftRepo) GetByIDs(_ context.Context, ids []string, companyID string) ([]schedule.ShiftDefinition, error) {
	var out []schedule.ShiftDefinition
	for _, id := range ids {
		if shift, ok := f.shifts[id]; ok && shift.CompanyID == companyID {
			out = append(out, shift)
		}
	}
	return out, nil
}

func (f *fakeShiftRepo) List(_ context.Context, companyID string, activeOnly bool) ([]schedule.ShiftDefinition, error) {
	var out []schedule.ShiftDefinition
	for _, shift := range f.shifts {
		if shift.CompanyID != companyID {
			continue
		}
		if activeOnly && !shift.Active {
			continue
		}
		out = append(out, shift)
	}
	return out, nil
}

func (f *fakeShiftRepo) ExistsByName(_ context.Context, name, companyID string, excludeID *string) (bool, error) {
	for _, shift := range f.shifts {
		if shift.CompanyID != companyID || !strings.EqualFold(shift.Name, name) {
			continue
		}
		if excludeID != nil && shift.ID == *excludeID {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (f *fakeShiftRepo) Update(_ context.Context, shift schedule.ShiftDefinition) error {
	if _, ok := f.shifts[shift.ID]; !ok {
		return schedule.ErrShiftNotFound
	}
	f.shifts[shift.ID] = shift
	return nil
}

func (f *fakeShiftRepo) Delete(_ context.Context, id, _ string) error {
	if _, ok := f.shifts[id]; !ok {
		return schedule.ErrShiftNotFound
	}
	delete(f.shifts, id)
	return nil
}

type fakeAssignmentRepo struct {
	assignments []schedule.WeeklyAssignment
	shifts      *fakeShiftRepo
	nextID      int
}

// withShift fills the joined shift columns the way the SQL view does.
func (f *fakeAssignmentRepo) withShift(a schedule.WeeklyAssignment) schedule.WeeklyAssignment {
	if a.ShiftID == nil {
		return a
	}
	if shift, ok := f.shifts.shifts[*a.ShiftID]; ok {
		a.ShiftName = &shift.Name
		a.ShiftStartTime = &shift.StartTime
		a.ShiftEndTime = &shift.EndTime
	}
	return a
}

func (f *fakeAssignmentRepo) Create(_ context.Context, assignment schedule.WeeklyAssignment) (schedule.WeeklyAssignment, error) {
	f.nextID++
	assignment.ID = fmt.Sprintf("assign-%d", f.nextID)
	assignment.CreatedAt = time.Now().UTC()
	f.assignments = append(f.assignments, assignment)
	return assignment, nil
}

func (f *fakeAssignmentRepo) CreateBatch(ctx context.Context, assignments []schedule.WeeklyAssignment) ([]schedule.WeeklyAssignment, error) {
	created := make([]schedule.WeeklyAssignment, 0, len(assignments))
	for _, a := range assignments {
		c, err := f.Create(ctx, a)
		if err != nil {
			return nil, err
		}
		created = append(created, c)
	}
	return created, nil
}

func (f *fakeAssignmentRepo) GetByID(_ context.Context, id, companyID string) (schedule.WeeklyAssignment, error) {
	for _, a := range f.assignments {
		if a.ID == id && a.CompanyID == companyID {
			return f.withShift(a), nil
		}
	}
	return schedule.WeeklyAssignment{}, fmt.Errorf("failed to get assignment: %w", pgx.ErrNoRows)
}

func (f *fakeAssignmentRepo) ListBySlot(_ context.Context, employeeID, companyID string, weekStart time.Time, dayOfWeek int) ([]schedule.WeeklyAssignment, error) {
	var out []schedule.WeeklyAssignment
	for _, a := range f.assignments {
		if a.EmployeeID == employeeID && a.CompanyID == companyID &&
			a.WeekStart.Equal(weekStart) && a.DayOfWeek == dayOfWeek {
			out = append(out, f.withShift(a))
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) ListByWeek(_ context.Context, companyID string, weekStart time.Time, employeeID *string) ([]schedule.WeeklyAssignment, error) {
	var out []schedule.WeeklyAssignment
	for _, a := range f.assignments {
		if a.CompanyID != companyID || !a.WeekStart.Equal(weekStart) {
			continue
		}
		if employeeID != nil && a.EmployeeID != *employeeID {
			continue
		}
		out = append(out, f.withShift(a))
	}
	return out, nil
}

func (f *fakeAssignmentRepo) Delete(_ context.Context, id, companyID string) error {
	for i, a := range f.assignments {
		if a.ID == id && a.CompanyID == companyID {
			f.assignments = append(f.assignments[:i], f.assignments[i+1:]...)
			return nil
		}
	}
	return schedule.ErrAssignmentNotFound
}

func (f *fakeAssignmentRepo) DeleteRestBySlot(_ context.Context, employeeID, companyID string, weekStart time.Time, dayOfWeek int) error {
	kept := f.assignments[:0]
	for _, a := range f.assignments {
		if a.EmployeeID == employeeID && a.CompanyID == companyID &&
			a.WeekStart.Equal(weekStart) && a.DayOfWeek == dayOfWeek && a.IsRestDay() {
			continue
		}
		kept = append(kept, a)
	}
	f.assignments = kept
	return nil
}

func (f *fakeAssignmentRepo) CountByShiftID(_ context.Context, shiftID, companyID string) (int64, error) {
	var count int64
	for _, a := range f.assignments {
		if a.CompanyID == companyID && a.ShiftID != nil && *a.ShiftID == shiftID {
			count++
		}
	}
	return count, nil
}

func (f *fakeAssignmentRepo) DeleteByShiftID(_ context.Context, shiftID, companyID string) error {
	kept := f.assignments[:0]
	for _, a := range f.assignments {
		if a.CompanyID == companyID && a.ShiftID != nil && *a.ShiftID == shiftID {
			continue
		}
		kept = append(kept, a)
	}
	f.assignments = kept
	return nil
}

type fakeTemplateRepo struct {
	templates map[string]schedule.WeeklyTemplate
	nextID    int
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[string]schedule.WeeklyTemplate)}
}

func (f *fakeTemplateRepo) Create(_ context.Context, template schedule.WeeklyTemplate) (schedule.WeeklyTemplate, error) {
	f.nextID++
	template.ID = fmt.Sprintf("tmpl-%d", f.nextID)
	template.CreatedAt = time.Now().UTC()
	f.templates[template.ID] = template
	return template, nil
}

func (f *fakeTemplateRepo) GetByID(_ context.Context, id, companyID string) (schedule.WeeklyTemplate, error) {
	template, ok := f.templates[id]
	if !ok || template.CompanyID != companyID {
		return schedule.WeeklyTemplate{}, fmt.Errorf("failed to get template: %w", pgx.ErrNoRows)
	}
	return template, nil
}

func (f *fakeTemplateRepo) List(_ context.Context, companyID string) ([]schedule.WeeklyTemplate, error) {
	var out []schedule.WeeklyTemplate
	for _, template := range f.templates {
		if template.CompanyID == companyID {
			out = append(out, template)
		}
	}
	return out, nil
}

func (f *fakeTemplateRepo) ExistsByName(_ context.Context, name, companyID string) (bool, error) {
	for _, template := range f.templates {
		if template.CompanyID == companyID && strings.EqualFold(template.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTemplateRepo) Delete(_ context.Context, id, _ string) error {
	if _, ok := f.templates[id]; !ok {
		return schedule.ErrTemplateNotFound
	}
	delete(f.templates, id)
	return nil
}

type fakeEmployeeRepo struct {
	members map[string]bool
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id, companyID string) (employee.Employee, error) {
	if !f.members[id] {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return employee.Employee{ID: id, CompanyID: companyID, Active: true}, nil
}

func (f *fakeEmployeeRepo) ExistsInCompany(_ context.Context, id, _ string) (bool, error) {
	return f.members[id], nil
}

func (f *fakeEmployeeRepo) ListActiveIDs(_ context.Context, _ string) ([]string, error) {
	var out []string
	for id := range f.members {
		out = append(out, id)
	}
	return out, nil
}

type scheduleFixture struct {
	svc         schedule.Service
	shifts      *fakeShiftRepo
	assignments *fakeAssignmentRepo
	templates   *fakeTemplateRepo
	employees   *fakeEmployeeRepo
	locks       *lock.Keyed
}

func newScheduleFixture() *scheduleFixture {
	shifts := newFakeShiftRepo()
	f := &scheduleFixture{
		shifts:      shifts,
		assignments: &fakeAssignmentRepo{shifts: shifts},
		templates:   newFakeTemplateRepo(),
		employees:   &fakeEmployeeRepo{members: map[string]bool{testEmployeeID: true}},
		locks:       lock.NewKeyed(),
	}
	f.svc = NewScheduleService(nil, cache.NewNoopCache(), f.locks,
		f.shifts, f.assignments, f.templates, f.employees)
	return f
}

func (f *scheduleFixture) seedShift(t *testing.T, name, start, end string) schedule.ShiftDefinition {
	t.Helper()
	shift, err := f.shifts.Create(context.Background(), schedule.ShiftDefinition{
		CompanyID: testCompanyID,
		Name:      name,
		StartTime: start,
		EndTime:   end,
		Active:    true,
	})
	require.NoError(t, err)
	return shift
}

func weekDate(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return date
}

// ========================================
// SHIFTS
// ========================================

func TestCreateShift(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	ctx := authCtx(t, testCompanyID)

	resp, err := f.svc.CreateShift(ctx, schedule.CreateShiftRequest{
		Name:      "Morning",
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	require.NoError(t, err)

	assert.Equal(t, "Morning", resp.Name)
	assert.True(t, resp.Active)
	assert.False(t, resp.IsNightShift)
}

func TestCreateShiftMarksNightShift(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	ctx := authCtx(t, testCompanyID)

	resp, err := f.svc.CreateShift(ctx, schedule.CreateShiftRequest{
		Name:      "Night",
		StartTime: "22:00",
		EndTime:   "06:00",
	})
	require.NoError(t, err)
	assert.True(t, resp.IsNightShift)
}

func TestCreateShiftRejectsDuplicateName(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	_, err := f.svc.CreateShift(ctx, schedule.CreateShiftRequest{
		Name:      "morning",
		StartTime: "08:00",
		EndTime:   "16:00",
	})
	assert.ErrorIs(t, err, schedule.ErrShiftNameExists)
}

func TestCreateShiftRejectsZeroLengthRange(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	ctx := authCtx(t, testCompanyID)

	_, err := f.svc.CreateShift(ctx, schedule.CreateShiftRequest{
		Name:      "Broken",
		StartTime: "09:00",
		EndTime:   "09:00",
	})
	require.Error(t, err)
	assert.Empty(t, f.shifts.shifts)
}

func TestGetShiftNotFound(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	ctx := authCtx(t, testCompanyID)

	_, err := f.svc.GetShift(ctx, "missing")
	assert.ErrorIs(t, err, schedule.ErrShiftNotFound)
}

func TestUpdateShiftRejectsInvalidRange(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	shift := f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	sameAsStart := "09:00"
	_, err := f.svc.UpdateShift(ctx, schedule.UpdateShiftRequest{
		ID:      shift.ID,
		EndTime: &sameAsStart,
	})
	assert.ErrorIs(t, err, schedule.ErrInvalidShiftRange)
}

func TestUpdateShiftPatchesFields(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	shift := f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	newName := "Early"
	newStart := "08:00"
	resp, err := f.svc.UpdateShift(ctx, schedule.UpdateShiftRequest{
		ID:        shift.ID,
		Name:      &newName,
		StartTime: &newStart,
	})
	require.NoError(t, err)
	assert.Equal(t, "Early", resp.Name)
	assert.Equal(t, "08:00", resp.StartTime)
	assert.Equal(t, "17:00", resp.EndTime)
}

func TestDeleteShiftInUseWithoutForce(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	shift := f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	_, err := f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
		EmployeeID: testEmployeeID,
		WeekStart:  testWeek,
		DayOfWeek:  0,
		ShiftID:    &shift.ID,
	})
	require.NoError(t, err)

	err = f.svc.DeleteShift(ctx, schedule.DeleteShiftRequest{ID: shift.ID})
	assert.ErrorIs(t, err, schedule.ErrShiftInUse)
}

// ========================================
// WEEKLY ASSIGNMENTS
// ========================================

func TestUpsertAssignmentShift(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	shift := f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	resp, err := f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
		EmployeeID: testEmployeeID,
		WeekStart:  testWeek,
		DayOfWeek:  2,
		ShiftID:    &shift.ID,
	})
	require.NoError(t, err)

	assert.False(t, resp.IsRestDay)
	require.NotNil(t, resp.ShiftName)
	assert.Equal(t, "Morning", *resp.ShiftName)
	assert.Equal(t, testWeek, resp.WeekStart)
	assert.Equal(t, 2, resp.DayOfWeek)
}

func TestUpsertAssignmentRestDay(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	ctx := authCtx(t, testCompanyID)

	resp, err := f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
		EmployeeID: testEmployeeID,
		WeekStart:  testWeek,
		DayOfWeek:  5,
		ShiftID:    nil,
	})
	require.NoError(t, err)
	assert.True(t, resp.IsRestDay)
}

func TestUpsertAssignmentShiftReplacesRestDay(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	shift := f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	_, err := f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
		EmployeeID: testEmployeeID,
		WeekStart:  testWeek,
		DayOfWeek:  0,
	})
	require.NoError(t, err)

	_, err = f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
		EmployeeID: testEmployeeID,
		WeekStart:  testWeek,
		DayOfWeek:  0,
		ShiftID:    &shift.ID,
	})
	require.NoError(t, err)

	slot, err := f.assignments.ListBySlot(context.Background(), testEmployeeID, testCompanyID, weekDate(t, testWeek), 0)
	require.NoError(t, err)
	require.Len(t, slot, 1)
	assert.False(t, slot[0].IsRestDay())
}

func TestUpsertAssignmentRejectsOverlap(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	morning := f.seedShift(t, "Morning", "09:00", "17:00")
	overlapping := f.seedShift(t, "Midday", "12:00", "20:00")
	ctx := authCtx(t, testCompanyID)

	_, err := f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
		EmployeeID: testEmployeeID,
		WeekStart:  testWeek,
		DayOfWeek:  0,
		ShiftID:    &morning.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
		EmployeeID: testEmployeeID,
		WeekStart:  testWeek,
		DayOfWeek:  0,
		ShiftID:    &overlapping.ID,
	})
	assert.ErrorIs(t, err, schedule.ErrOverlappingShift)
}

func TestUpsertAssignmentAllowsBackToBackShifts(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	morning := f.seedShift(t, "Morning", "09:00", "13:00")
	afternoon := f.seedShift(t, "Afternoon", "13:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	for _, shift := range []schedule.ShiftDefinition{morning, afternoon} {
		_, err := f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
			EmployeeID: testEmployeeID,
			WeekStart:  testWeek,
			DayOfWeek:  0,
			ShiftID:    &shift.ID,
		})
		require.NoError(t, err, "shift %s", shift.Name)
	}
}

func TestUpsertAssignmentUnknownEmployee(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	shift := f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	_, err := f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
		EmployeeID: "ghost",
		WeekStart:  testWeek,
		DayOfWeek:  0,
		ShiftID:    &shift.ID,
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestUpsertAssignmentUnknownShift(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	ctx := authCtx(t, testCompanyID)

	ghost := "missing"
	_, err := f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
		EmployeeID: testEmployeeID,
		WeekStart:  testWeek,
		DayOfWeek:  0,
		ShiftID:    &ghost,
	})
	assert.ErrorIs(t, err, schedule.ErrShiftNotFound)
}

func TestUpsertAssignmentRejectsNonMondayWeek(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	ctx := authCtx(t, testCompanyID)

	_, err := f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
		EmployeeID: testEmployeeID,
		WeekStart:  "2026-03-03", // Tuesday
		DayOfWeek:  0,
	})
	require.Error(t, err)
}

func TestDeleteAssignmentNotFound(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	ctx := authCtx(t, testCompanyID)

	err := f.svc.DeleteAssignment(ctx, "missing")
	assert.ErrorIs(t, err, schedule.ErrAssignmentNotFound)
}

func TestGetWeekReturnsAssignments(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	shift := f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	_, err := f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
		EmployeeID: testEmployeeID,
		WeekStart:  testWeek,
		DayOfWeek:  0,
		ShiftID:    &shift.ID,
	})
	require.NoError(t, err)

	resp, err := f.svc.GetWeek(ctx, schedule.GetWeekFilter{WeekStart: testWeek})
	require.NoError(t, err)
	assert.Equal(t, testWeek, resp.WeekStart)
	require.Len(t, resp.Assignments, 1)
	assert.Equal(t, testEmployeeID, resp.Assignments[0].EmployeeID)
}

func TestGetWeekRejectsNonMonday(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	ctx := authCtx(t, testCompanyID)

	_, err := f.svc.GetWeek(ctx, schedule.GetWeekFilter{WeekStart: "2026-03-04"})
	require.Error(t, err)
}

// ========================================
// COPY WEEK
// ========================================

func TestCopyWeek(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	shift := f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	_, err := f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
		EmployeeID: testEmployeeID,
		WeekStart:  testWeek,
		DayOfWeek:  0,
		ShiftID:    &shift.ID,
	})
	require.NoError(t, err)

	copied, err := f.svc.CopyWeek(ctx, schedule.CopyWeekRequest{
		SourceWeekStart: testWeek,
		TargetWeekStart: nextWeek,
	})
	require.NoError(t, err)
	require.Len(t, copied, 1)
	assert.Equal(t, nextWeek, copied[0].WeekStart)
	assert.Equal(t, shift.ID, *copied[0].ShiftID)
}

func TestCopyWeekSkipsConflictingSlots(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	morning := f.seedShift(t, "Morning", "09:00", "17:00")
	midday := f.seedShift(t, "Midday", "12:00", "20:00")
	ctx := authCtx(t, testCompanyID)

	// Source week holds the morning shift.
	_, err := f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
		EmployeeID: testEmployeeID,
		WeekStart:  testWeek,
		DayOfWeek:  0,
		ShiftID:    &morning.ID,
	})
	require.NoError(t, err)

	// Target week already holds an overlapping shift in the same slot.
	_, err = f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
		EmployeeID: testEmployeeID,
		WeekStart:  nextWeek,
		DayOfWeek:  0,
		ShiftID:    &midday.ID,
	})
	require.NoError(t, err)

	copied, err := f.svc.CopyWeek(ctx, schedule.CopyWeekRequest{
		SourceWeekStart: testWeek,
		TargetWeekStart: nextWeek,
	})
	require.NoError(t, err)
	assert.Empty(t, copied, "overlapping slot must be skipped, not fail the copy")
}

func TestCopyWeekSkipsExactDuplicates(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	shift := f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	for _, week := range []string{testWeek, nextWeek} {
		_, err := f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
			EmployeeID: testEmployeeID,
			WeekStart:  week,
			DayOfWeek:  0,
			ShiftID:    &shift.ID,
		})
		require.NoError(t, err)
	}

	copied, err := f.svc.CopyWeek(ctx, schedule.CopyWeekRequest{
		SourceWeekStart: testWeek,
		TargetWeekStart: nextWeek,
	})
	require.NoError(t, err)
	assert.Empty(t, copied)
}

func TestCopyWeekFiltersEmployees(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	f.employees.members["emp-2"] = true
	shift := f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	for _, id := range []string{testEmployeeID, "emp-2"} {
		_, err := f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
			EmployeeID: id,
			WeekStart:  testWeek,
			DayOfWeek:  0,
			ShiftID:    &shift.ID,
		})
		require.NoError(t, err)
	}

	copied, err := f.svc.CopyWeek(ctx, schedule.CopyWeekRequest{
		SourceWeekStart: testWeek,
		TargetWeekStart: nextWeek,
		EmployeeIDs:     []string{"emp-2"},
	})
	require.NoError(t, err)
	require.Len(t, copied, 1)
	assert.Equal(t, "emp-2", copied[0].EmployeeID)
}

func TestCopyWeekRejectsSameWeek(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	ctx := authCtx(t, testCompanyID)

	_, err := f.svc.CopyWeek(ctx, schedule.CopyWeekRequest{
		SourceWeekStart: testWeek,
		TargetWeekStart: testWeek,
	})
	require.Error(t, err)
}

func TestCopyWeekWaitsForSlotLock(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	shift := f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	_, err := f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
		EmployeeID: testEmployeeID,
		WeekStart:  testWeek,
		DayOfWeek:  0,
		ShiftID:    &shift.ID,
	})
	require.NoError(t, err)

	// Hold the target slot the way a concurrent upsert would.
	key := "slot:" + testEmployeeID + ":" + nextWeek + ":0"
	f.locks.Lock(key)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.svc.CopyWeek(ctx, schedule.CopyWeekRequest{
			SourceWeekStart: testWeek,
			TargetWeekStart: nextWeek,
		})
	}()

	select {
	case <-done:
		t.Fatal("copy finished while the target slot was still locked")
	case <-time.After(50 * time.Millisecond):
	}

	f.locks.Unlock(key)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("copy never finished after the slot was released")
	}

	target, err := f.assignments.ListByWeek(ctx, testCompanyID, weekDate(t, nextWeek), nil)
	require.NoError(t, err)
	assert.Len(t, target, 1)
}

// ========================================
// TEMPLATES
// ========================================

func (f *scheduleFixture) seedTemplate(t *testing.T, ctx context.Context, shiftID string) schedule.TemplateResponse {
	t.Helper()
	template, err := f.svc.CreateTemplate(ctx, schedule.CreateTemplateRequest{
		Name: "Standard week",
		Days: []schedule.TemplateDayRequest{
			{DayOfWeek: 0, Entries: []schedule.TemplateEntryRequest{{ShiftID: shiftID}}},
			{DayOfWeek: 1, Entries: []schedule.TemplateEntryRequest{{ShiftID: shiftID}}},
		},
	})
	require.NoError(t, err)
	return template
}

func TestCreateTemplate(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	shift := f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	template := f.seedTemplate(t, ctx, shift.ID)
	assert.Equal(t, "Standard week", template.Name)
	require.Len(t, template.Days, 2)
	assert.Equal(t, 0, template.Days[0].DayOfWeek)
}

func TestCreateTemplateRejectsDuplicateName(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	shift := f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	f.seedTemplate(t, ctx, shift.ID)
	_, err := f.svc.CreateTemplate(ctx, schedule.CreateTemplateRequest{
		Name: "standard WEEK",
		Days: []schedule.TemplateDayRequest{
			{DayOfWeek: 0, Entries: []schedule.TemplateEntryRequest{{ShiftID: shift.ID}}},
		},
	})
	assert.ErrorIs(t, err, schedule.ErrTemplateNameExists)
}

func TestCreateTemplateRejectsUnknownShift(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	ctx := authCtx(t, testCompanyID)

	_, err := f.svc.CreateTemplate(ctx, schedule.CreateTemplateRequest{
		Name: "Broken",
		Days: []schedule.TemplateDayRequest{
			{DayOfWeek: 0, Entries: []schedule.TemplateEntryRequest{{ShiftID: "missing"}}},
		},
	})
	assert.ErrorIs(t, err, schedule.ErrShiftNotFound)
}

func TestApplyTemplate(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	f.employees.members["emp-2"] = true
	shift := f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	template := f.seedTemplate(t, ctx, shift.ID)

	applied, err := f.svc.ApplyTemplate(ctx, schedule.ApplyTemplateRequest{
		TemplateID:  template.ID,
		WeekStart:   testWeek,
		EmployeeIDs: []string{testEmployeeID, "emp-2"},
	})
	require.NoError(t, err)
	// 2 employees x 2 template days.
	assert.Len(t, applied, 4)
	for _, a := range applied {
		require.NotNil(t, a.ShiftName)
		assert.Equal(t, "Morning", *a.ShiftName)
	}
}

func TestApplyTemplateSkipsOccupiedSlots(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	shift := f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	template := f.seedTemplate(t, ctx, shift.ID)

	// Monday already holds the same shift; only Tuesday should be written.
	_, err := f.svc.UpsertAssignment(ctx, schedule.UpsertAssignmentRequest{
		EmployeeID: testEmployeeID,
		WeekStart:  testWeek,
		DayOfWeek:  0,
		ShiftID:    &shift.ID,
	})
	require.NoError(t, err)

	applied, err := f.svc.ApplyTemplate(ctx, schedule.ApplyTemplateRequest{
		TemplateID:  template.ID,
		WeekStart:   testWeek,
		EmployeeIDs: []string{testEmployeeID},
	})
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, 1, applied[0].DayOfWeek)
}

func TestApplyTemplateWaitsForSlotLock(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	shift := f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	template := f.seedTemplate(t, ctx, shift.ID)

	// Hold one of the template's target slots the way a concurrent upsert
	// would.
	key := "slot:" + testEmployeeID + ":" + testWeek + ":1"
	f.locks.Lock(key)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.svc.ApplyTemplate(ctx, schedule.ApplyTemplateRequest{
			TemplateID:  template.ID,
			WeekStart:   testWeek,
			EmployeeIDs: []string{testEmployeeID},
		})
	}()

	select {
	case <-done:
		t.Fatal("apply finished while a target slot was still locked")
	case <-time.After(50 * time.Millisecond):
	}

	f.locks.Unlock(key)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("apply never finished after the slot was released")
	}

	week, err := f.assignments.ListByWeek(ctx, testCompanyID, weekDate(t, testWeek), nil)
	require.NoError(t, err)
	assert.Len(t, week, 2)
}

func TestApplyTemplateUnknownTemplate(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	ctx := authCtx(t, testCompanyID)

	_, err := f.svc.ApplyTemplate(ctx, schedule.ApplyTemplateRequest{
		TemplateID:  "missing",
		WeekStart:   testWeek,
		EmployeeIDs: []string{testEmployeeID},
	})
	assert.ErrorIs(t, err, schedule.ErrTemplateNotFound)
}

func TestApplyTemplateUnknownEmployee(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	shift := f.seedShift(t, "Morning", "09:00", "17:00")
	ctx := authCtx(t, testCompanyID)

	template := f.seedTemplate(t, ctx, shift.ID)

	_, err := f.svc.ApplyTemplate(ctx, schedule.ApplyTemplateRequest{
		TemplateID:  template.ID,
		WeekStart:   testWeek,
		EmployeeIDs: []string{"ghost"},
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestDeleteTemplateNotFound(t *testing.T) {
	t.Parallel()

	f := newScheduleFixture()
	ctx := authCtx(t, testCompanyID)

	err := f.svc.DeleteTemplate(ctx, "missing")
	assert.ErrorIs(t, err, schedule.ErrTemplateNotFound)
}
