package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAngularDifference(t *testing.T) {
	tests := []struct {
		a, b     float64
		expected float64
	}{
		{350, 10, 20},
		{10, 350, 20},
		{0, 180, 180},
		{180, 0, 180},
		{0, 0, 0},
		{359, 1, 2},
		{90, 270, 180},
		{45, 10, 35},
		{720, 10, 10},
		{-10, 10, 20},
	}

	for _, tt := range tests {
		got := AngularDifference(tt.a, tt.b)
		assert.InDelta(t, tt.expected, got, 1e-9, "AngularDifference(%v, %v)", tt.a, tt.b)
		assert.InDelta(t, got, AngularDifference(tt.b, tt.a), 1e-9)
	}
}

func TestSignedAngularDifference(t *testing.T) {
	assert.InDelta(t, 20, SignedAngularDifference(350, 10), 1e-9)
	assert.InDelta(t, -20, SignedAngularDifference(10, 350), 1e-9)
	assert.InDelta(t, -180, SignedAngularDifference(0, 180), 1e-9)
	assert.InDelta(t, 0, SignedAngularDifference(123, 123), 1e-9)
}

func TestNormalizeDegrees(t *testing.T) {
	assert.Equal(t, 0.0, NormalizeDegrees(360))
	assert.Equal(t, 0.0, NormalizeDegrees(-1e-15))
	assert.Equal(t, 350.0, NormalizeDegrees(-10))
	assert.Equal(t, 10.0, NormalizeDegrees(730))
}

func TestGeohash(t *testing.T) {
	hash := EncodeGeohash(37.5665, 126.9780, 8)
	assert.Len(t, hash, 8)
	assert.Equal(t, "wydm9qy8", hash)
	assert.True(t, ValidGeohash(hash))
	assert.True(t, ValidGeohash("wyd"))
	assert.False(t, ValidGeohash(""))
	assert.False(t, ValidGeohash("wydA"))
	assert.False(t, ValidGeohash("wydmi"))
}
