package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/presensi-hq/presensi-backend-go/internal/domain/punch"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/database"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/timeutil"
)

type punchEventRepository struct {
	db *database.DB
}

// Create implements punch.EventRepository.
func (r *punchEventRepository) Create(ctx context.Context, event punch.Event) (punch.Event, error) {
	q := GetQuerier(ctx, r.db)

	if event.ID == "" {
		event.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO punch_events (
			id, employee_id, company_id, type, timestamp, source,
			latitude, longitude, is_remote_work, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		event.ID,
		event.EmployeeID,
		event.CompanyID,
		event.Type,
		event.Timestamp,
		event.Source,
		event.Latitude,
		event.Longitude,
		event.IsRemoteWork,
		event.Notes,
	).Scan(&event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		return punch.Event{}, fmt.Errorf("failed to create punch event: %w", err)
	}

	return event, nil
}

// CreateBatch implements punch.EventRepository.
func (r *punchEventRepository) CreateBatch(ctx context.Context, events []punch.Event) ([]punch.Event, error) {
	if len(events) == 0 {
		return nil, nil
	}

	q := GetQuerier(ctx, r.db)

	valueStrings := make([]string, 0, len(events))
	valueArgs := make([]interface{}, 0, len(events)*10)
	now := time.Now().UTC()

	for i := range events {
		if events[i].ID == "" {
			events[i].ID = uuid.Must(uuid.NewV7()).String()
		}
		events[i].CreatedAt = now
		events[i].UpdatedAt = now

		base := i * 10
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10,
		))
		valueArgs = append(valueArgs,
			events[i].ID,
			events[i].EmployeeID,
			events[i].CompanyID,
			events[i].Type,
			events[i].Timestamp,
			events[i].Source,
			events[i].Latitude,
			events[i].Longitude,
			events[i].IsRemoteWork,
			events[i].Notes,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO punch_events (
			id, employee_id, company_id, type, timestamp, source,
			latitude, longitude, is_remote_work, notes
		) VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return nil, fmt.Errorf("failed to batch create punch events: %w", err)
	}

	return events, nil
}

// GetByID implements punch.EventRepository.
func (r *punchEventRepository) GetByID(ctx context.Context, id string, companyID string) (punch.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, company_id, type, timestamp, source,
			   latitude, longitude, is_remote_work, notes, created_at, updated_at
		FROM punch_events
		WHERE id = $1
		  AND company_id = $2
	`

	var event punch.Event
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&event.ID, &event.EmployeeID, &event.CompanyID, &event.Type, &event.Timestamp, &event.Source,
		&event.Latitude, &event.Longitude, &event.IsRemoteWork, &event.Notes, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return punch.Event{}, fmt.Errorf("failed to get punch event: %w", err)
	}

	return event, nil
}

// ListByWindow implements punch.EventRepository.
func (r *punchEventRepository) ListByWindow(ctx context.Context, employeeID, companyID string, start, end time.Time) ([]punch.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, company_id, type, timestamp, source,
			   latitude, longitude, is_remote_work, notes, created_at, updated_at
		FROM punch_events
		WHERE employee_id = $1
		  AND company_id = $2
		  AND timestamp >= $3
		  AND timestamp < $4
		ORDER BY timestamp ASC, created_at ASC, id ASC
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list punch events: %w", err)
	}
	defer rows.Close()

	var events []punch.Event
	for rows.Next() {
		var event punch.Event
		if err := rows.Scan(
			&event.ID, &event.EmployeeID, &event.CompanyID, &event.Type, &event.Timestamp, &event.Source,
			&event.Latitude, &event.Longitude, &event.IsRemoteWork, &event.Notes, &event.CreatedAt, &event.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan punch event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate punch events: %w", err)
	}

	return events, nil
}

// List implements punch.EventRepository.
func (r *punchEventRepository) List(ctx context.Context, filter punch.ListPunchFilter, companyID string) ([]punch.Event, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"pe.company_id = $1"}
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("pe.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("pe.type = $%d", argIdx))
		args = append(args, *filter.Type)
		argIdx++
	}
	if filter.StartDate != nil {
		start, _ := time.Parse("2006-01-02", *filter.StartDate)
		conditions = append(conditions, fmt.Sprintf("pe.timestamp >= $%d", argIdx))
		args = append(args, start)
		argIdx++
	}
	if filter.EndDate != nil {
		end, _ := time.Parse("2006-01-02", *filter.EndDate)
		conditions = append(conditions, fmt.Sprintf("pe.timestamp < $%d", argIdx))
		args = append(args, end.Add(timeutil.MinutesPerDay*time.Minute))
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := "SELECT COUNT(*) FROM punch_events pe WHERE " + whereClause
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count punch events: %w", err)
	}

	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT pe.id, pe.employee_id, pe.company_id, pe.type, pe.timestamp, pe.source,
			   pe.latitude, pe.longitude, pe.is_remote_work, pe.notes, pe.created_at, pe.updated_at,
			   e.full_name
		FROM punch_events pe
		JOIN employees e ON e.id = pe.employee_id
		WHERE %s
		ORDER BY pe.timestamp %s, pe.created_at %s, pe.id %s
		LIMIT $%d OFFSET $%d
	`, whereClause, sortOrder, sortOrder, sortOrder, argIdx, argIdx+1)

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list punch events: %w", err)
	}
	defer rows.Close()

	var events []punch.Event
	for rows.Next() {
		var event punch.Event
		if err := rows.Scan(
			&event.ID, &event.EmployeeID, &event.CompanyID, &event.Type, &event.Timestamp, &event.Source,
			&event.Latitude, &event.Longitude, &event.IsRemoteWork, &event.Notes, &event.CreatedAt, &event.UpdatedAt,
			&event.EmployeeName,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan punch event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate punch events: %w", err)
	}

	return events, total, nil
}

// UpdateTimestamp implements punch.EventRepository.
func (r *punchEventRepository) UpdateTimestamp(ctx context.Context, id, companyID string, timestamp time.Time, notes *string) error {
	q := GetQuerier(ctx, r.db)

	updates := []string{"timestamp = $1", "updated_at = NOW()"}
	args := []interface{}{timestamp}
	argIdx := 2

	if notes != nil {
		updates = append(updates, fmt.Sprintf("notes = $%d", argIdx))
		args = append(args, *notes)
		argIdx++
	}

	query := "UPDATE punch_events SET " + strings.Join(updates, ", ") +
		fmt.Sprintf(" WHERE id = $%d AND company_id = $%d", argIdx, argIdx+1)
	args = append(args, id, companyID)

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update punch event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return punch.ErrPunchNotFound
	}

	return nil
}

// Delete implements punch.EventRepository.
func (r *punchEventRepository) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM punch_events WHERE id = $1 AND company_id = $2`

	tag, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete punch event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return punch.ErrPunchNotFound
	}

	return nil
}

func NewPunchEventRepository(db *database.DB) punch.EventRepository {
	return &punchEventRepository{db: db}
}
