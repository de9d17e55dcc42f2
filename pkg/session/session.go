// Package session keeps per-chart state for long-lived callers such as the
// HTTP API.
//
// A [Session] owns one natal chart and the [timing.Engine] built for it, so
// repeated transit requests reuse the engine's position and stay caches.
// Replacing the chart clears those caches.
//
// Stores:
//   - [MemoryStore]: in-process, keeps engines warm between requests
//   - [FileStore]: JSON files, survives restarts; engines are rebuilt on load
//
// # Usage
//
//	store := session.NewMemoryStore()
//	sess := session.New(session.DefaultTTL)
//	sess.SetChart(natal)
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if errors.Is(err, errors.ErrCodeSessionNotFound) {
//	    // unknown or expired
//	}
//	engine, err := sess.Engine(runner.NewEngine)
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/jyotish/pkg/core/chart"
	"github.com/matzehuels/jyotish/pkg/core/timing"
	"github.com/matzehuels/jyotish/pkg/errors"
)

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// Session stores one natal chart and its timing engine.
type Session struct {
	ID        string       `json:"id"`
	Natal     *chart.Natal `json:"natal,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`

	mu     sync.Mutex
	engine *timing.Engine
}

// New creates an empty session that expires after ttl.
func New(ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.Expires())
}

// Expires returns the current expiry instant. Use it instead of reading
// ExpiresAt on a shared session, since [Session.Touch] moves it.
func (s *Session) Expires() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ExpiresAt
}

// Touch extends the session to ttl from now.
func (s *Session) Touch(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ExpiresAt = time.Now().UTC().Add(ttl)
}

// Chart returns the session's natal chart or CHART_NOT_FOUND.
func (s *Session) Chart() (*chart.Natal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Natal == nil {
		return nil, errors.New(errors.ErrCodeChartNotFound, "session %s has no chart", s.ID)
	}
	return s.Natal, nil
}

// SetChart replaces the natal chart and drops cached timings.
func (s *Session) SetChart(natal *chart.Natal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Natal = natal
	if s.engine != nil {
		s.engine.Clear()
	}
}

// Engine returns the session's timing engine, creating it with newEngine
// on first use.
func (s *Session) Engine(newEngine func() (*timing.Engine, error)) (*timing.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		e, err := newEngine()
		if err != nil {
			return nil, err
		}
		s.engine = e
	}
	return s.engine, nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. Unknown IDs fail with
	// SESSION_NOT_FOUND, expired ones with SESSION_EXPIRED.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and reports how many were dropped.
	Cleanup(ctx context.Context) (int, error)
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
}

func expired(id string) error {
	return errors.New(errors.ErrCodeSessionExpired, "session %s expired", id)
}
