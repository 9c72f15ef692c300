package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/presensi-hq/presensi-backend-go/internal/domain/punch"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/database"
)

type workDayRepository struct {
	db *database.DB
}

// Upsert implements punch.WorkDayRepository.
func (r *workDayRepository) Upsert(ctx context.Context, workDay punch.WorkDay) (punch.WorkDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO work_days (
			employee_id, company_id, date, start_time, end_time,
			worked_minutes, break_minutes, overtime_minutes, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (employee_id, company_id, date) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			worked_minutes = EXCLUDED.worked_minutes,
			break_minutes = EXCLUDED.break_minutes,
			overtime_minutes = EXCLUDED.overtime_minutes,
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		workDay.EmployeeID,
		workDay.CompanyID,
		workDay.Date,
		workDay.StartTime,
		workDay.EndTime,
		workDay.WorkedMinutes,
		workDay.BreakMinutes,
		workDay.OvertimeMinutes,
		workDay.Status,
	).Scan(&workDay.CreatedAt, &workDay.UpdatedAt)

	if err != nil {
		return punch.WorkDay{}, fmt.Errorf("failed to upsert work day: %w", err)
	}

	return workDay, nil
}

// Get implements punch.WorkDayRepository.
func (r *workDayRepository) Get(ctx context.Context, employeeID, companyID string, date time.Time) (punch.WorkDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, company_id, date, start_time, end_time,
			   worked_minutes, break_minutes, overtime_minutes, status, created_at, updated_at
		FROM work_days
		WHERE employee_id = $1
		  AND company_id = $2
		  AND date = $3
	`

	var workDay punch.WorkDay
	err := q.QueryRow(ctx, query, employeeID, companyID, date).Scan(
		&workDay.EmployeeID, &workDay.CompanyID, &workDay.Date, &workDay.StartTime, &workDay.EndTime,
		&workDay.WorkedMinutes, &workDay.BreakMinutes, &workDay.OvertimeMinutes, &workDay.Status,
		&workDay.CreatedAt, &workDay.UpdatedAt,
	)
	if err != nil {
		return punch.WorkDay{}, fmt.Errorf("failed to get work day: %w", err)
	}

	return workDay, nil
}

// Delete implements punch.WorkDayRepository.
func (r *workDayRepository) Delete(ctx context.Context, employeeID, companyID string, date time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM work_days WHERE employee_id = $1 AND company_id = $2 AND date = $3`

	if _, err := q.Exec(ctx, query, employeeID, companyID, date); err != nil {
		return fmt.Errorf("failed to delete work day: %w", err)
	}

	return nil
}

// ListOpenBefore implements punch.WorkDayRepository.
func (r *workDayRepository) ListOpenBefore(ctx context.Context, cutoff time.Time) ([]punch.WorkDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, company_id, date, start_time, end_time,
			   worked_minutes, break_minutes, overtime_minutes, status, created_at, updated_at
		FROM work_days
		WHERE status = 'open'
		  AND date < $1
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list open work days: %w", err)
	}
	defer rows.Close()

	var workDays []punch.WorkDay
	for rows.Next() {
		var workDay punch.WorkDay
		if err := rows.Scan(
			&workDay.EmployeeID, &workDay.CompanyID, &workDay.Date, &workDay.StartTime, &workDay.EndTime,
			&workDay.WorkedMinutes, &workDay.BreakMinutes, &workDay.OvertimeMinutes, &workDay.Status,
			&workDay.CreatedAt, &workDay.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan work day: %w", err)
		}
		workDays = append(workDays, workDay)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work days: %w", err)
	}

	return workDays, nil
}

func NewWorkDayRepository(db *database.DB) punch.WorkDayRepository {
	return &workDayRepository{db: db}
}
