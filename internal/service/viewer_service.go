package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/itplace/locator-backend-go/internal/catalog"
	"github.com/itplace/locator-backend-go/internal/metrics"
	"github.com/itplace/locator-backend-go/internal/models"
	"github.com/itplace/locator-backend-go/internal/spatial"
	"github.com/itplace/locator-backend-go/internal/tracker"
	"github.com/itplace/locator-backend-go/internal/visibility"
)

// ViewerService records viewer samples and computes what each viewer sees
type ViewerService struct {
	sessions tracker.Store
	holder   *catalog.Holder
	engine   *visibility.Engine
	now      func() time.Time
}

// NewViewerService creates a new viewer service
func NewViewerService(sessions tracker.Store, holder *catalog.Holder, engine *visibility.Engine) *ViewerService {
	return &ViewerService{
		sessions: sessions,
		holder:   holder,
		engine:   engine,
		now:      time.Now,
	}
}

// CreateSession starts a viewer session
func (s *ViewerService) CreateSession(ctx context.Context) (*models.ViewerSession, error) {
	return s.sessions.Create(ctx)
}

// GetSession returns a viewer session
func (s *ViewerService) GetSession(ctx context.Context, id string) (*models.ViewerSession, error) {
	return s.sessions.Get(ctx, id)
}

// DeleteSession ends a viewer session
func (s *ViewerService) DeleteSession(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

// RecordPosition validates and stores a position sample
func (s *ViewerService) RecordPosition(ctx context.Context, id string, req models.PositionRequest) (*models.ViewerSession, error) {
	sample, err := s.positionSample(req)
	if err != nil {
		metrics.SamplesRejected.WithLabelValues("position").Inc()
		return nil, err
	}

	session, err := s.sessions.SetPosition(ctx, id, sample)
	if err != nil {
		return nil, err
	}
	metrics.SamplesReceived.WithLabelValues("position").Inc()
	return session, nil
}

// RecordHeading validates and stores a heading sample
func (s *ViewerService) RecordHeading(ctx context.Context, id string, req models.HeadingRequest) (*models.ViewerSession, error) {
	sample, err := s.headingSample(req)
	if err != nil {
		metrics.SamplesRejected.WithLabelValues("heading").Inc()
		return nil, err
	}

	session, err := s.sessions.SetHeading(ctx, id, sample)
	if err != nil {
		return nil, err
	}
	metrics.SamplesReceived.WithLabelValues("heading").Inc()
	return session, nil
}

// Visible computes the visibility list from a session's latest samples
func (s *ViewerService) Visible(ctx context.Context, id string) (*models.VisibilityResponse, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.compute(visibility.State{Position: session.Position, Heading: session.Heading}), nil
}

// VisibleAt computes a visibility list without a session. Missing
// parameters give an empty list; malformed ones are an error.
func (s *ViewerService) VisibleAt(q models.VisibilityQuery) (*models.VisibilityResponse, error) {
	var state visibility.State

	if q.Lat != nil || q.Lon != nil {
		if q.Lat == nil || q.Lon == nil {
			return nil, fmt.Errorf("%w: lat and lon must be given together", ErrInvalidQuery)
		}
		sample, err := s.positionSample(models.PositionRequest{Latitude: q.Lat, Longitude: q.Lon})
		if err != nil {
			return nil, err
		}
		state.Position = &sample
	}

	if q.Heading != nil {
		sample, err := s.headingSample(models.HeadingRequest{Heading: q.Heading})
		if err != nil {
			return nil, err
		}
		state.Heading = &sample
	}

	return s.compute(state), nil
}

func (s *ViewerService) compute(state visibility.State) *models.VisibilityResponse {
	cfg := s.engine.Config()
	entries := s.engine.Visible(state, s.holder.Load().Stores())

	metrics.VisibilityComputations.Inc()
	metrics.VisibleStores.Observe(float64(len(entries)))

	return &models.VisibilityResponse{
		Entries:        entries,
		HasPosition:    state.Position != nil,
		HasHeading:     state.Heading != nil,
		MaxRangeMeters: cfg.MaxRangeMeters,
		HalfAngle:      cfg.FieldOfViewHalfAngleDegrees,
	}
}

func (s *ViewerService) positionSample(req models.PositionRequest) (models.PositionSample, error) {
	if req.Latitude == nil || req.Longitude == nil {
		return models.PositionSample{}, fmt.Errorf("%w: latitude and longitude are required", ErrInvalidSample)
	}

	loc := models.GeoCoordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if !spatial.ValidCoordinate(loc) {
		return models.PositionSample{}, fmt.Errorf("%w: coordinate (%v, %v) out of range", ErrInvalidSample, loc.Latitude, loc.Longitude)
	}

	if req.Accuracy != nil && (math.IsNaN(*req.Accuracy) || math.IsInf(*req.Accuracy, 0) || *req.Accuracy < 0) {
		return models.PositionSample{}, fmt.Errorf("%w: accuracy must be a non-negative number", ErrInvalidSample)
	}

	return models.PositionSample{
		Location:        loc,
		Accuracy:        req.Accuracy,
		Timestamp:       s.now(),
		DeviceTimestamp: deviceTime(req.Timestamp),
	}, nil
}

func (s *ViewerService) headingSample(req models.HeadingRequest) (models.HeadingSample, error) {
	if req.Heading == nil {
		return models.HeadingSample{}, fmt.Errorf("%w: heading is required", ErrInvalidSample)
	}

	h := *req.Heading
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return models.HeadingSample{}, fmt.Errorf("%w: heading must be a finite number", ErrInvalidSample)
	}

	return models.HeadingSample{
		HeadingDegrees:  spatial.NormalizeDegrees(h),
		Timestamp:       s.now(),
		DeviceTimestamp: deviceTime(req.Timestamp),
	}, nil
}

// deviceTime converts a client timestamp in Unix milliseconds. Device clocks
// drift, so the value is kept for clients but samples are ordered by arrival.
func deviceTime(ms int64) *time.Time {
	if ms <= 0 {
		return nil
	}
	t := time.UnixMilli(ms)
	return &t
}
