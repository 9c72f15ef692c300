package company

import "context"

type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (Company, error)

	// GetGeofence returns the company's punch geofence, or nil when the
	// company does not restrict punch locations.
	GetGeofence(ctx context.Context, companyID string) (*Geofence, error)
}
