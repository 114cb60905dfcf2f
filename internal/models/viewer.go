package models

import "time"

// ViewerSession holds the latest samples reported by one viewer
type ViewerSession struct {
	ID        string          `json:"id"`
	Position  *PositionSample `json:"position,omitempty"`
	Heading   *HeadingSample  `json:"heading,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// VisibilityEntry is a store currently inside the viewer's field of view
type VisibilityEntry struct {
	Store                Store   `json:"store"`
	DistanceMeters       float64 `json:"distanceMeters"`
	BearingDegrees       float64 `json:"bearingDegrees"`       // [0, 360)
	AngularOffsetDegrees float64 `json:"angularOffsetDegrees"` // [0, 180]

	// Signed offset from the heading, negative when the store is to the left
	RelativeBearingDegrees float64 `json:"relativeBearingDegrees"`
}

// VisibilityResponse is returned by the visibility endpoints
type VisibilityResponse struct {
	Entries        []VisibilityEntry `json:"entries"`
	HasPosition    bool              `json:"hasPosition"`
	HasHeading     bool              `json:"hasHeading"`
	MaxRangeMeters float64           `json:"maxRangeMeters"`
	HalfAngle      float64           `json:"fieldOfViewHalfAngleDegrees"`
}
