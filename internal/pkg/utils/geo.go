package utils

import "math"

const earthRadiusMeters = 6371000

// CalculateHaversineDistance returns the great-circle distance between two
// coordinates in meters.
func CalculateHaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// WithinRadius reports whether (lat, lon) falls inside the geofence circle
// and returns the measured distance in meters either way.
func WithinRadius(lat, lon, centerLat, centerLon, radiusMeters float64) (bool, float64) {
	distance := CalculateHaversineDistance(lat, lon, centerLat, centerLon)
	return distance <= radiusMeters, distance
}
