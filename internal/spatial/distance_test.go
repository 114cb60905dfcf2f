package spatial

import (
	"math"
	"testing"

	"github.com/itplace/locator-backend-go/internal/models"
	"github.com/stretchr/testify/assert"
)

var seoulCityHall = models.GeoCoordinate{Latitude: 37.5665, Longitude: 126.9780}

func TestHaversineDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     models.GeoCoordinate
		expected float64
		delta    float64
	}{
		{
			name:     "same point",
			a:        seoulCityHall,
			b:        seoulCityHall,
			expected: 0,
			delta:    0,
		},
		{
			name:     "0.009 degrees north is about one kilometer",
			a:        seoulCityHall,
			b:        models.GeoCoordinate{Latitude: 37.5755, Longitude: 126.9780},
			expected: 1000,
			delta:    5,
		},
		{
			name:     "Seoul to Busan",
			a:        seoulCityHall,
			b:        models.GeoCoordinate{Latitude: 35.1796, Longitude: 129.0756},
			expected: 325000,
			delta:    2000,
		},
		{
			name:     "across the antimeridian",
			a:        models.GeoCoordinate{Latitude: 0, Longitude: 179.99},
			b:        models.GeoCoordinate{Latitude: 0, Longitude: -179.99},
			expected: 2224,
			delta:    5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, HaversineDistance(tt.a, tt.b), tt.delta)
		})
	}
}

func TestHaversineDistanceSymmetric(t *testing.T) {
	points := []models.GeoCoordinate{
		seoulCityHall,
		{Latitude: 37.4979, Longitude: 127.0276},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 89.9, Longitude: 0},
		{Latitude: 0, Longitude: -180},
	}

	for _, a := range points {
		assert.Equal(t, 0.0, HaversineDistance(a, a))
		for _, b := range points {
			assert.InDelta(t, HaversineDistance(a, b), HaversineDistance(b, a), 1e-6)
		}
	}
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name     string
		to       models.GeoCoordinate
		expected float64
	}{
		{"north", models.GeoCoordinate{Latitude: 37.5755, Longitude: 126.9780}, 0},
		{"east", models.GeoCoordinate{Latitude: 37.5665, Longitude: 126.9880}, 90},
		{"south", models.GeoCoordinate{Latitude: 37.5575, Longitude: 126.9780}, 180},
		{"west", models.GeoCoordinate{Latitude: 37.5665, Longitude: 126.9680}, 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Bearing(seoulCityHall, tt.to), 0.01)
		})
	}
}

func TestBearingIdenticalPointsIsZero(t *testing.T) {
	b := Bearing(seoulCityHall, seoulCityHall)
	assert.False(t, math.IsNaN(b))
	assert.Equal(t, 0.0, b)
}

func TestBearingRange(t *testing.T) {
	for deg := 0.0; deg < 360; deg += 7.5 {
		to := DestinationPoint(seoulCityHall, deg, 500)
		b := Bearing(seoulCityHall, to)
		assert.GreaterOrEqual(t, b, 0.0)
		assert.Less(t, b, 360.0)
		assert.Equal(t, 0.0, AngularDifference(b, b))
		assert.InDelta(t, 0, AngularDifference(deg, b), 0.01, "bearing %v", deg)
	}
}

func TestDestinationPoint(t *testing.T) {
	dest := DestinationPoint(seoulCityHall, 45, 750)
	assert.InDelta(t, 750, HaversineDistance(seoulCityHall, dest), 0.5)
	assert.InDelta(t, 45, Bearing(seoulCityHall, dest), 0.01)

	wrapped := DestinationPoint(models.GeoCoordinate{Latitude: 0, Longitude: 179.999}, 90, 1000)
	assert.True(t, ValidCoordinate(wrapped))
	assert.Less(t, wrapped.Longitude, 0.0)
}

func TestRadiusBound(t *testing.T) {
	rect := RadiusBound(seoulCityHall, 1000)
	for deg := 0.0; deg < 360; deg += 30 {
		inside := DestinationPoint(seoulCityHall, deg, 990)
		assert.True(t, rect.ContainsLatLng(LatLng(inside)), "bearing %v", deg)
	}
	far := DestinationPoint(seoulCityHall, 0, 5000)
	assert.False(t, rect.ContainsLatLng(LatLng(far)))
}

func TestValidCoordinate(t *testing.T) {
	assert.True(t, ValidCoordinate(seoulCityHall))
	assert.True(t, ValidCoordinate(models.GeoCoordinate{Latitude: -90, Longitude: 180}))
	assert.False(t, ValidCoordinate(models.GeoCoordinate{Latitude: 90.1, Longitude: 0}))
	assert.False(t, ValidCoordinate(models.GeoCoordinate{Latitude: 0, Longitude: -180.5}))
	assert.False(t, ValidCoordinate(models.GeoCoordinate{Latitude: math.NaN(), Longitude: 0}))
	assert.False(t, ValidCoordinate(models.GeoCoordinate{Latitude: 0, Longitude: math.Inf(1)}))
}
