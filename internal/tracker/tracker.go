// Package tracker keeps the latest position and heading sample reported by
// each viewer session.
package tracker

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/itplace/locator-backend-go/internal/models"
)

// ErrSessionNotFound is returned for unknown or expired sessions
var ErrSessionNotFound = errors.New("viewer session not found")

// Store holds viewer sessions. Only the latest sample of each kind is kept;
// a sample older than the one already stored is ignored.
type Store interface {
	Create(ctx context.Context) (*models.ViewerSession, error)
	Get(ctx context.Context, id string) (*models.ViewerSession, error)
	SetPosition(ctx context.Context, id string, sample models.PositionSample) (*models.ViewerSession, error)
	SetHeading(ctx context.Context, id string, sample models.HeadingSample) (*models.ViewerSession, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

func newSessionID() string {
	return uuid.NewString()
}

// ValidSessionID reports whether id looks like an ID issued by newSessionID
func ValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// applyPosition stores sample unless it is older than the current one
func applyPosition(s *models.ViewerSession, sample models.PositionSample) bool {
	if s.Position != nil && sample.Timestamp.Before(s.Position.Timestamp) {
		return false
	}
	s.Position = &sample
	return true
}

// applyHeading stores sample unless it is older than the current one
func applyHeading(s *models.ViewerSession, sample models.HeadingSample) bool {
	if s.Heading != nil && sample.Timestamp.Before(s.Heading.Timestamp) {
		return false
	}
	s.Heading = &sample
	return true
}
