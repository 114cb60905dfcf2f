package models

import "time"

// PositionSample is one reading from the device location service.
// Timestamp is the server receive time and orders samples; DeviceTimestamp
// is whatever the client reported and is never compared.
type PositionSample struct {
	Location        GeoCoordinate `json:"location"`
	Accuracy        *float64      `json:"accuracy,omitempty"` // Meters, optional
	Timestamp       time.Time     `json:"timestamp"`
	DeviceTimestamp *time.Time    `json:"deviceTimestamp,omitempty"`
}

// HeadingSample is one compass reading, degrees clockwise from north
type HeadingSample struct {
	HeadingDegrees  float64    `json:"headingDegrees"` // [0, 360)
	Timestamp       time.Time  `json:"timestamp"`
	DeviceTimestamp *time.Time `json:"deviceTimestamp,omitempty"`
}

// PositionRequest is the request body for a position update
type PositionRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Accuracy  *float64 `json:"accuracy"`
	Timestamp int64    `json:"timestamp"` // Unix milliseconds, optional
}

// HeadingRequest is the request body for a heading update
type HeadingRequest struct {
	Heading   *float64 `json:"heading" binding:"required"`
	Timestamp int64    `json:"timestamp"` // Unix milliseconds, optional
}
