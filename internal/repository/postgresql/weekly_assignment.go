package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/presensi-hq/presensi-backend-go/internal/domain/schedule"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/database"
)

type weeklyAssignmentRepository struct {
	db *database.DB
}

const assignmentColumns = `
	wa.id, wa.employee_id, wa.company_id, wa.week_start, wa.day_of_week,
	wa.shift_id, wa.notes, wa.created_at, wa.updated_at,
	s.name, s.start_time, s.end_time
`

func scanAssignment(row interface {
	Scan(dest ...interface{}) error
}) (schedule.WeeklyAssignment, error) {
	var a schedule.WeeklyAssignment
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.CompanyID, &a.WeekStart, &a.DayOfWeek,
		&a.ShiftID, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
		&a.ShiftName, &a.ShiftStartTime, &a.ShiftEndTime,
	)
	return a, err
}

// Create implements schedule.AssignmentRepository.
func (r *weeklyAssignmentRepository) Create(ctx context.Context, assignment schedule.WeeklyAssignment) (schedule.WeeklyAssignment, error) {
	q := GetQuerier(ctx, r.db)

	if assignment.ID == "" {
		assignment.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO weekly_assignments (
			id, employee_id, company_id, week_start, day_of_week, shift_id, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		assignment.ID,
		assignment.EmployeeID,
		assignment.CompanyID,
		assignment.WeekStart,
		assignment.DayOfWeek,
		assignment.ShiftID,
		assignment.Notes,
	).Scan(&assignment.CreatedAt, &assignment.UpdatedAt)

	if err != nil {
		return schedule.WeeklyAssignment{}, fmt.Errorf("failed to create weekly assignment: %w", err)
	}

	return assignment, nil
}

// CreateBatch implements schedule.AssignmentRepository.
func (r *weeklyAssignmentRepository) CreateBatch(ctx context.Context, assignments []schedule.WeeklyAssignment) ([]schedule.WeeklyAssignment, error) {
	if len(assignments) == 0 {
		return nil, nil
	}

	q := GetQuerier(ctx, r.db)

	valueStrings := make([]string, 0, len(assignments))
	valueArgs := make([]interface{}, 0, len(assignments)*7)
	now := time.Now().UTC()

	for i := range assignments {
		if assignments[i].ID == "" {
			assignments[i].ID = uuid.Must(uuid.NewV7()).String()
		}
		assignments[i].CreatedAt = now
		assignments[i].UpdatedAt = now

		base := i * 7
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
		))
		valueArgs = append(valueArgs,
			assignments[i].ID,
			assignments[i].EmployeeID,
			assignments[i].CompanyID,
			assignments[i].WeekStart,
			assignments[i].DayOfWeek,
			assignments[i].ShiftID,
			assignments[i].Notes,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO weekly_assignments (
			id, employee_id, company_id, week_start, day_of_week, shift_id, notes
		) VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return nil, fmt.Errorf("failed to batch create weekly assignments: %w", err)
	}

	return assignments, nil
}

// GetByID implements schedule.AssignmentRepository.
func (r *weeklyAssignmentRepository) GetByID(ctx context.Context, id string, companyID string) (schedule.WeeklyAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + assignmentColumns + `
		FROM weekly_assignments wa
		LEFT JOIN shifts s ON s.id = wa.shift_id
		WHERE wa.id = $1
		  AND wa.company_id = $2
	`

	assignment, err := scanAssignment(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		return schedule.WeeklyAssignment{}, fmt.Errorf("failed to get weekly assignment: %w", err)
	}

	return assignment, nil
}

// ListBySlot implements schedule.AssignmentRepository.
func (r *weeklyAssignmentRepository) ListBySlot(ctx context.Context, employeeID, companyID string, weekStart time.Time, dayOfWeek int) ([]schedule.WeeklyAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + assignmentColumns + `
		FROM weekly_assignments wa
		LEFT JOIN shifts s ON s.id = wa.shift_id
		WHERE wa.employee_id = $1
		  AND wa.company_id = $2
		  AND wa.week_start = $3
		  AND wa.day_of_week = $4
		ORDER BY s.start_time ASC NULLS FIRST
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, weekStart, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to list slot assignments: %w", err)
	}
	defer rows.Close()

	var assignments []schedule.WeeklyAssignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan weekly assignment: %w", err)
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate weekly assignments: %w", err)
	}

	return assignments, nil
}

// ListByWeek implements schedule.AssignmentRepository.
func (r *weeklyAssignmentRepository) ListByWeek(ctx context.Context, companyID string, weekStart time.Time, employeeID *string) ([]schedule.WeeklyAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + assignmentColumns + `
		FROM weekly_assignments wa
		LEFT JOIN shifts s ON s.id = wa.shift_id
		WHERE wa.company_id = $1
		  AND wa.week_start = $2
		  AND ($3::text IS NULL OR wa.employee_id = $3)
		ORDER BY wa.employee_id ASC, wa.day_of_week ASC, s.start_time ASC NULLS FIRST
	`

	rows, err := q.Query(ctx, query, companyID, weekStart, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list week assignments: %w", err)
	}
	defer rows.Close()

	var assignments []schedule.WeeklyAssignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan weekly assignment: %w", err)
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate weekly assignments: %w", err)
	}

	return assignments, nil
}

// Delete implements schedule.AssignmentRepository.
func (r *weeklyAssignmentRepository) Delete(ctx context.Context, id, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM weekly_assignments WHERE id = $1 AND company_id = $2`

	tag, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete weekly assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrAssignmentNotFound
	}

	return nil
}

// DeleteRestBySlot implements schedule.AssignmentRepository.
func (r *weeklyAssignmentRepository) DeleteRestBySlot(ctx context.Context, employeeID, companyID string, weekStart time.Time, dayOfWeek int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM weekly_assignments
		WHERE employee_id = $1
		  AND company_id = $2
		  AND week_start = $3
		  AND day_of_week = $4
		  AND shift_id IS NULL
	`

	if _, err := q.Exec(ctx, query, employeeID, companyID, weekStart, dayOfWeek); err != nil {
		return fmt.Errorf("failed to delete rest day: %w", err)
	}

	return nil
}

// CountByShiftID implements schedule.AssignmentRepository.
func (r *weeklyAssignmentRepository) CountByShiftID(ctx context.Context, shiftID, companyID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT COUNT(*) FROM weekly_assignments WHERE shift_id = $1 AND company_id = $2`

	var count int64
	if err := q.QueryRow(ctx, query, shiftID, companyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count shift assignments: %w", err)
	}

	return count, nil
}

// DeleteByShiftID implements schedule.AssignmentRepository.
func (r *weeklyAssignmentRepository) DeleteByShiftID(ctx context.Context, shiftID, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM weekly_assignments WHERE shift_id = $1 AND company_id = $2`

	if _, err := q.Exec(ctx, query, shiftID, companyID); err != nil {
		return fmt.Errorf("failed to delete shift assignments: %w", err)
	}

	return nil
}

func NewWeeklyAssignmentRepository(db *database.DB) schedule.AssignmentRepository {
	return &weeklyAssignmentRepository{db: db}
}
