package company

import "time"

type Company struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Geofence is the optional punch-location circle of a company. Punches
// carrying a geolocation are checked against it unless flagged as remote
// work.
type Geofence struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}
