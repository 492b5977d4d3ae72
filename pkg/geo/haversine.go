package geo

import "math"

const earthRadiusMeters = 6_371_000.0

// MetersPerDegree is the length of one degree of latitude, and of longitude
// at the equator.
const MetersPerDegree = earthRadiusMeters * math.Pi / 180

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// RoundCentimeters rounds a length in meters to two decimals, the precision
// edge distances are stored with.
func RoundCentimeters(meters float64) float64 {
	return math.Round(meters*100) / 100
}
