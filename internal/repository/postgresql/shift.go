package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/presensi-hq/presensi-backend-go/internal/domain/schedule"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/database"
)

type shiftRepository struct {
	db *database.DB
}

// Create implements schedule.ShiftRepository.
func (r *shiftRepository) Create(ctx context.Context, shift schedule.ShiftDefinition) (schedule.ShiftDefinition, error) {
	q := GetQuerier(ctx, r.db)

	if shift.ID == "" {
		shift.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO shifts (
			id, company_id, name, start_time, end_time, break_minutes, flexible, color, active
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		shift.ID,
		shift.CompanyID,
		shift.Name,
		shift.StartTime,
		shift.EndTime,
		shift.BreakMinutes,
		shift.Flexible,
		shift.Color,
		shift.Active,
	).Scan(&shift.CreatedAt, &shift.UpdatedAt)

	if err != nil {
		return schedule.ShiftDefinition{}, fmt.Errorf("failed to create shift: %w", err)
	}

	return shift, nil
}

// GetByID implements schedule.ShiftRepository.
func (r *shiftRepository) GetByID(ctx context.Context, id string, companyID string) (schedule.ShiftDefinition, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, start_time, end_time, break_minutes, flexible, color, active,
			   created_at, updated_at
		FROM shifts
		WHERE id = $1
		  AND company_id = $2
	`

	var shift schedule.ShiftDefinition
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&shift.ID, &shift.CompanyID, &shift.Name, &shift.StartTime, &shift.EndTime,
		&shift.BreakMinutes, &shift.Flexible, &shift.Color, &shift.Active,
		&shift.CreatedAt, &shift.UpdatedAt,
	)
	if err != nil {
		return schedule.ShiftDefinition{}, fmt.Errorf("failed to get shift: %w", err)
	}

	return shift, nil
}

// GetByIDs implements schedule.ShiftRepository.
func (r *shiftRepository) GetByIDs(ctx context.Context, ids []string, companyID string) ([]schedule.ShiftDefinition, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, start_time, end_time, break_minutes, flexible, color, active,
			   created_at, updated_at
		FROM shifts
		WHERE id = ANY($1)
		  AND company_id = $2
	`

	rows, err := q.Query(ctx, query, ids, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shifts: %w", err)
	}
	defer rows.Close()

	var shifts []schedule.ShiftDefinition
	for rows.Next() {
		var shift schedule.ShiftDefinition
		if err := rows.Scan(
			&shift.ID, &shift.CompanyID, &shift.Name, &shift.StartTime, &shift.EndTime,
			&shift.BreakMinutes, &shift.Flexible, &shift.Color, &shift.Active,
			&shift.CreatedAt, &shift.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, shift)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shifts: %w", err)
	}

	return shifts, nil
}

// List implements schedule.ShiftRepository.
func (r *shiftRepository) List(ctx context.Context, companyID string, activeOnly bool) ([]schedule.ShiftDefinition, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, start_time, end_time, break_minutes, flexible, color, active,
			   created_at, updated_at
		FROM shifts
		WHERE company_id = $1
	`
	if activeOnly {
		query += " AND active = TRUE"
	}
	query += " ORDER BY start_time ASC, name ASC"

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	var shifts []schedule.ShiftDefinition
	for rows.Next() {
		var shift schedule.ShiftDefinition
		if err := rows.Scan(
			&shift.ID, &shift.CompanyID, &shift.Name, &shift.StartTime, &shift.EndTime,
			&shift.BreakMinutes, &shift.Flexible, &shift.Color, &shift.Active,
			&shift.CreatedAt, &shift.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, shift)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shifts: %w", err)
	}

	return shifts, nil
}

// ExistsByName implements schedule.ShiftRepository.
func (r *shiftRepository) ExistsByName(ctx context.Context, name, companyID string, excludeID *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM shifts
			WHERE company_id = $1
			  AND LOWER(name) = LOWER($2)
			  AND ($3::text IS NULL OR id <> $3)
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, companyID, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check shift name: %w", err)
	}

	return exists, nil
}

// Update implements schedule.ShiftRepository.
func (r *shiftRepository) Update(ctx context.Context, shift schedule.ShiftDefinition) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE shifts SET
			name = $1,
			start_time = $2,
			end_time = $3,
			break_minutes = $4,
			flexible = $5,
			color = $6,
			active = $7,
			updated_at = NOW()
		WHERE id = $8
		  AND company_id = $9
	`

	tag, err := q.Exec(ctx, query,
		shift.Name,
		shift.StartTime,
		shift.EndTime,
		shift.BreakMinutes,
		shift.Flexible,
		shift.Color,
		shift.Active,
		shift.ID,
		shift.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrShiftNotFound
	}

	return nil
}

// Delete implements schedule.ShiftRepository.
func (r *shiftRepository) Delete(ctx context.Context, id, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM shifts WHERE id = $1 AND company_id = $2`

	tag, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrShiftNotFound
	}

	return nil
}

func NewShiftRepository(db *database.DB) schedule.ShiftRepository {
	return &shiftRepository{db: db}
}
