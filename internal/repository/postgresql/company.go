package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/presensi-hq/presensi-backend-go/internal/domain/company"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/database"
)

type companyRepository struct {
	db *database.DB
}

// GetByID implements company.CompanyRepository.
func (r *companyRepository) GetByID(ctx context.Context, id string) (company.Company, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, created_at, updated_at
		FROM companies
		WHERE id = $1
	`

	var c company.Company
	err := q.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return company.Company{}, fmt.Errorf("failed to get company: %w", err)
	}

	return c, nil
}

// GetGeofence implements company.CompanyRepository. Companies without a
// configured geofence yield nil, which callers read as "no restriction".
func (r *companyRepository) GetGeofence(ctx context.Context, companyID string) (*company.Geofence, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT geofence_latitude, geofence_longitude, geofence_radius_meters
		FROM companies
		WHERE id = $1
	`

	var lat, lon, radius *float64
	err := q.QueryRow(ctx, query, companyID).Scan(&lat, &lon, &radius)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company geofence: %w", err)
	}

	if lat == nil || lon == nil || radius == nil {
		return nil, nil
	}

	return &company.Geofence{
		Latitude:     *lat,
		Longitude:    *lon,
		RadiusMeters: *radius,
	}, nil
}

func NewCompanyRepository(db *database.DB) company.CompanyRepository {
	return &companyRepository{db: db}
}
