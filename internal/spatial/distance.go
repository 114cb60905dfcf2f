package spatial

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/itplace/locator-backend-go/internal/models"
)

// EarthRadiusMeters is the Earth's mean radius
const EarthRadiusMeters = 6371000.0

// LatLng converts a coordinate into an S2 LatLng
func LatLng(c models.GeoCoordinate) s2.LatLng {
	return s2.LatLngFromDegrees(c.Latitude, c.Longitude)
}

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(a, b models.GeoCoordinate) float64 {
	return LatLng(a).Distance(LatLng(b)).Radians() * EarthRadiusMeters
}

// Bearing calculates the initial bearing (forward azimuth) from one point to another.
// Returns bearing in degrees [0, 360), where 0 is North, 90 is East, etc.
// Identical points yield 0.
func Bearing(from, to models.GeoCoordinate) float64 {
	if from == to {
		return 0
	}

	lat1 := from.Latitude * math.Pi / 180
	lat2 := to.Latitude * math.Pi / 180
	lonDiff := (to.Longitude - from.Longitude) * math.Pi / 180

	y := math.Sin(lonDiff) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(lonDiff)

	return NormalizeDegrees(math.Atan2(y, x) * 180 / math.Pi)
}

// DestinationPoint calculates the destination point given a start point, bearing, and distance
// bearing: degrees (0-360), distance: meters
func DestinationPoint(from models.GeoCoordinate, bearing, distance float64) models.GeoCoordinate {
	p := LatLng(from)
	bearingRad := bearing * math.Pi / 180
	angularDistance := distance / EarthRadiusMeters

	latRad := p.Lat.Radians()
	lonRad := p.Lng.Radians()

	lat2 := math.Asin(math.Sin(latRad)*math.Cos(angularDistance) +
		math.Cos(latRad)*math.Sin(angularDistance)*math.Cos(bearingRad))

	lon2 := lonRad + math.Atan2(
		math.Sin(bearingRad)*math.Sin(angularDistance)*math.Cos(latRad),
		math.Cos(angularDistance)-math.Sin(latRad)*math.Sin(lat2))

	dest := s2.LatLng{Lat: s1.Angle(lat2), Lng: s1.Angle(lon2)}.Normalized()
	return models.GeoCoordinate{Latitude: dest.Lat.Degrees(), Longitude: dest.Lng.Degrees()}
}

// RadiusBound returns a lat/lng rectangle that contains every point within
// radius meters of center. Useful as a cheap prefilter before exact distances.
// The rectangle is padded by one meter so points on the boundary survive rounding.
func RadiusBound(center models.GeoCoordinate, radius float64) s2.Rect {
	angle := s1.Angle((radius + 1) / EarthRadiusMeters)
	return s2.CapFromCenterAngle(s2.PointFromLatLng(LatLng(center)), angle).RectBound()
}

// ValidCoordinate reports whether c is finite and inside the valid degree ranges
func ValidCoordinate(c models.GeoCoordinate) bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}
