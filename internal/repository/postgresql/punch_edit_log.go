package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/presensi-hq/presensi-backend-go/internal/domain/punch"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/database"
)

type punchEditLogRepository struct {
	db *database.DB
}

// Create implements punch.EditLogRepository.
func (r *punchEditLogRepository) Create(ctx context.Context, entry punch.EditLogEntry) (punch.EditLogEntry, error) {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO punch_edit_logs (
			id, punch_id, company_id, actor_id, old_timestamp, new_timestamp, reason
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		) RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		entry.ID,
		entry.PunchID,
		entry.CompanyID,
		entry.ActorID,
		entry.OldTimestamp,
		entry.NewTimestamp,
		entry.Reason,
	).Scan(&entry.CreatedAt)

	if err != nil {
		return punch.EditLogEntry{}, fmt.Errorf("failed to create punch edit log: %w", err)
	}

	return entry, nil
}

// ListByPunchID implements punch.EditLogRepository.
func (r *punchEditLogRepository) ListByPunchID(ctx context.Context, punchID, companyID string, page, limit int) ([]punch.EditLogEntry, int64, error) {
	q := GetQuerier(ctx, r.db)

	countQuery := `
		SELECT COUNT(*)
		FROM punch_edit_logs
		WHERE punch_id = $1
		  AND company_id = $2
	`
	var total int64
	if err := q.QueryRow(ctx, countQuery, punchID, companyID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count punch edit logs: %w", err)
	}

	query := `
		SELECT id, punch_id, company_id, actor_id, old_timestamp, new_timestamp, reason, created_at
		FROM punch_edit_logs
		WHERE punch_id = $1
		  AND company_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := q.Query(ctx, query, punchID, companyID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list punch edit logs: %w", err)
	}
	defer rows.Close()

	var entries []punch.EditLogEntry
	for rows.Next() {
		var entry punch.EditLogEntry
		if err := rows.Scan(
			&entry.ID, &entry.PunchID, &entry.CompanyID, &entry.ActorID,
			&entry.OldTimestamp, &entry.NewTimestamp, &entry.Reason, &entry.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan punch edit log: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate punch edit logs: %w", err)
	}

	return entries, total, nil
}

func NewPunchEditLogRepository(db *database.DB) punch.EditLogRepository {
	return &punchEditLogRepository{db: db}
}
