package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/presensi-hq/presensi-backend-go/internal/domain/schedule"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/database"
)

type weeklyTemplateRepository struct {
	db *database.DB
}

// Create implements schedule.TemplateRepository. WeekData is stored as a
// JSONB document keyed by day-of-week.
func (r *weeklyTemplateRepository) Create(ctx context.Context, template schedule.WeeklyTemplate) (schedule.WeeklyTemplate, error) {
	q := GetQuerier(ctx, r.db)

	if template.ID == "" {
		template.ID = uuid.Must(uuid.NewV7()).String()
	}

	weekData, err := json.Marshal(template.WeekData)
	if err != nil {
		return schedule.WeeklyTemplate{}, fmt.Errorf("failed to encode template week data: %w", err)
	}

	query := `
		INSERT INTO weekly_templates (id, company_id, name, week_data)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		template.ID,
		template.CompanyID,
		template.Name,
		weekData,
	).Scan(&template.CreatedAt, &template.UpdatedAt)

	if err != nil {
		return schedule.WeeklyTemplate{}, fmt.Errorf("failed to create weekly template: %w", err)
	}

	return template, nil
}

// GetByID implements schedule.TemplateRepository.
func (r *weeklyTemplateRepository) GetByID(ctx context.Context, id string, companyID string) (schedule.WeeklyTemplate, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, week_data, created_at, updated_at
		FROM weekly_templates
		WHERE id = $1
		  AND company_id = $2
	`

	var template schedule.WeeklyTemplate
	var weekData []byte
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&template.ID, &template.CompanyID, &template.Name, &weekData,
		&template.CreatedAt, &template.UpdatedAt,
	)
	if err != nil {
		return schedule.WeeklyTemplate{}, fmt.Errorf("failed to get weekly template: %w", err)
	}

	if err := json.Unmarshal(weekData, &template.WeekData); err != nil {
		return schedule.WeeklyTemplate{}, fmt.Errorf("failed to decode template week data: %w", err)
	}

	return template, nil
}

// List implements schedule.TemplateRepository.
func (r *weeklyTemplateRepository) List(ctx context.Context, companyID string) ([]schedule.WeeklyTemplate, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, week_data, created_at, updated_at
		FROM weekly_templates
		WHERE company_id = $1
		ORDER BY name ASC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly templates: %w", err)
	}
	defer rows.Close()

	var templates []schedule.WeeklyTemplate
	for rows.Next() {
		var template schedule.WeeklyTemplate
		var weekData []byte
		if err := rows.Scan(
			&template.ID, &template.CompanyID, &template.Name, &weekData,
			&template.CreatedAt, &template.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan weekly template: %w", err)
		}
		if err := json.Unmarshal(weekData, &template.WeekData); err != nil {
			return nil, fmt.Errorf("failed to decode template week data: %w", err)
		}
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate weekly templates: %w", err)
	}

	return templates, nil
}

// ExistsByName implements schedule.TemplateRepository.
func (r *weeklyTemplateRepository) ExistsByName(ctx context.Context, name, companyID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM weekly_templates
			WHERE company_id = $1
			  AND LOWER(name) = LOWER($2)
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, companyID, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check template name: %w", err)
	}

	return exists, nil
}

// Delete implements schedule.TemplateRepository.
func (r *weeklyTemplateRepository) Delete(ctx context.Context, id, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM weekly_templates WHERE id = $1 AND company_id = $2`

	tag, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete weekly template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrTemplateNotFound
	}

	return nil
}

func NewWeeklyTemplateRepository(db *database.DB) schedule.TemplateRepository {
	return &weeklyTemplateRepository{db: db}
}
