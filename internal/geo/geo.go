// Package geo provides great-circle distance math on WGS-84 coordinates.
// Every distance the cancellation policy compares (accept to pickup,
// current position to pickup) uses the same haversine formula so the
// tiers stay consistent.
package geo

import "math"

const (
	// EarthRadiusKm is the mean radius of Earth in kilometers.
	EarthRadiusKm = 6371.0
)

// DistanceKm returns the great-circle distance between two points in
// kilometers using the haversine formula.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degToRad(lat2 - lat1)
	dLng := degToRad(lng2 - lng1)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat +
		math.Cos(degToRad(lat1))*math.Cos(degToRad(lat2))*sinLng*sinLng

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// DistanceM returns the great-circle distance between two points in meters.
func DistanceM(lat1, lng1, lat2, lng2 float64) float64 {
	return DistanceKm(lat1, lng1, lat2, lng2) * 1000.0
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
