// Package visibility decides which stores are in front of a viewer.
//
// The engine is a pure function of the latest position sample, the latest
// heading sample, the store list and its configuration. Callers keep the
// latest samples themselves and pass them in on every call.
package visibility

import (
	"fmt"

	"github.com/itplace/locator-backend-go/internal/models"
	"github.com/itplace/locator-backend-go/internal/spatial"
)

// Default thresholds
const (
	DefaultMaxRangeMeters              = 1000.0
	DefaultFieldOfViewHalfAngleDegrees = 45.0
)

// Config holds the visibility thresholds
type Config struct {
	MaxRangeMeters              float64 `json:"maxRangeMeters"`
	FieldOfViewHalfAngleDegrees float64 `json:"fieldOfViewHalfAngleDegrees"`
}

// DefaultConfig returns the canonical thresholds
func DefaultConfig() Config {
	return Config{
		MaxRangeMeters:              DefaultMaxRangeMeters,
		FieldOfViewHalfAngleDegrees: DefaultFieldOfViewHalfAngleDegrees,
	}
}

// Validate checks that the thresholds describe a usable field of view
func (c Config) Validate() error {
	if !(c.MaxRangeMeters > 0) {
		return fmt.Errorf("max range must be positive, got %v", c.MaxRangeMeters)
	}
	if !(c.FieldOfViewHalfAngleDegrees > 0 && c.FieldOfViewHalfAngleDegrees <= 180) {
		return fmt.Errorf("field of view half-angle must be in (0, 180], got %v", c.FieldOfViewHalfAngleDegrees)
	}
	return nil
}

// State is the latest position and heading known for a viewer.
// Either may be nil when no sample has arrived yet.
type State struct {
	Position *models.PositionSample
	Heading  *models.HeadingSample
}

// Ready reports whether both samples are present
func (s State) Ready() bool {
	return s.Position != nil && s.Heading != nil
}

// Engine computes visibility lists
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given thresholds
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine thresholds
func (e *Engine) Config() Config {
	return e.cfg
}

// Visible returns the stores within range and inside the field of view, in
// the order they appear in stores. The result is empty, never nil, when
// either sample is missing.
func (e *Engine) Visible(state State, stores []models.Store) []models.VisibilityEntry {
	entries := make([]models.VisibilityEntry, 0)
	if !state.Ready() {
		return entries
	}

	origin := state.Position.Location
	heading := state.Heading.HeadingDegrees

	for _, s := range stores {
		if entry, ok := e.evaluate(origin, heading, s); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

func (e *Engine) evaluate(origin models.GeoCoordinate, heading float64, s models.Store) (models.VisibilityEntry, bool) {
	distance := spatial.HaversineDistance(origin, s.Location)
	if distance > e.cfg.MaxRangeMeters {
		return models.VisibilityEntry{}, false
	}

	bearing := spatial.Bearing(origin, s.Location)
	offset := spatial.AngularDifference(bearing, heading)
	if offset > e.cfg.FieldOfViewHalfAngleDegrees {
		return models.VisibilityEntry{}, false
	}

	return models.VisibilityEntry{
		Store:                  s,
		DistanceMeters:         distance,
		BearingDegrees:         bearing,
		AngularOffsetDegrees:   offset,
		RelativeBearingDegrees: spatial.SignedAngularDifference(heading, bearing),
	}, true
}
