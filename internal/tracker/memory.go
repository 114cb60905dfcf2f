package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/itplace/locator-backend-go/internal/models"
)

// MemoryStore keeps sessions in process memory. Sessions idle for longer
// than the TTL are removed by a background sweep.
type MemoryStore struct {
	sessions map[string]*models.ViewerSession
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

// NewMemoryStore creates a memory store and starts its cleanup goroutine
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return newMemoryStore(ttl, time.Now)
}

func newMemoryStore(ttl time.Duration, now func() time.Time) *MemoryStore {
	m := &MemoryStore{
		sessions: make(map[string]*models.ViewerSession),
		ttl:      ttl,
		now:      now,
		stop:     make(chan struct{}),
	}

	go m.cleanup()

	return m
}

// cleanup removes expired sessions periodically
func (m *MemoryStore) cleanup() {
	ticker := time.NewTicker(m.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *MemoryStore) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
		}
	}
}

func (m *MemoryStore) expired(s *models.ViewerSession, now time.Time) bool {
	return now.Sub(s.UpdatedAt) >= m.ttl
}

// lookup returns the live session with the given id. Caller holds mu.
func (m *MemoryStore) lookup(id string) (*models.ViewerSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if m.expired(s, m.now()) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// snapshot copies a session so callers never share memory with the store
func snapshot(s *models.ViewerSession) *models.ViewerSession {
	out := *s
	if s.Position != nil {
		p := *s.Position
		out.Position = &p
	}
	if s.Heading != nil {
		h := *s.Heading
		out.Heading = &h
	}
	return &out
}

// Create starts a new session
func (m *MemoryStore) Create(ctx context.Context) (*models.ViewerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s := &models.ViewerSession{
		ID:        newSessionID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.sessions[s.ID] = s
	return snapshot(s), nil
}

// Get returns a session
func (m *MemoryStore) Get(ctx context.Context, id string) (*models.ViewerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return snapshot(s), nil
}

// SetPosition records a position sample
func (m *MemoryStore) SetPosition(ctx context.Context, id string, sample models.PositionSample) (*models.ViewerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	if applyPosition(s, sample) {
		s.UpdatedAt = m.now()
	}
	return snapshot(s), nil
}

// SetHeading records a heading sample
func (m *MemoryStore) SetHeading(ctx context.Context, id string, sample models.HeadingSample) (*models.ViewerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	if applyHeading(s, sample) {
		s.UpdatedAt = m.now()
	}
	return snapshot(s), nil
}

// Delete removes a session
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.lookup(id); err != nil {
		return err
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of sessions currently held, expired or not
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the cleanup goroutine
func (m *MemoryStore) Close() error {
	m.once.Do(func() { close(m.stop) })
	return nil
}
