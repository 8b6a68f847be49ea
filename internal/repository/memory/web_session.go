package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	"github.com/chinobetoska/nenemi-a-html/internal/core/port"
	"github.com/chinobetoska/nenemi-a-html/internal/repository"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// WebSessionStore keeps sessions in process memory. Suitable for tests and single-node development.
type WebSessionStore struct {
	mu        sync.Mutex
	entries   map[string]entry
	now       func() time.Time
	lastSweep time.Time
}

// sweepInterval bounds how often Save walks the map for expired entries.
const sweepInterval = time.Minute

// NewWebSessionStore constructs an empty in-memory store.
func NewWebSessionStore() *WebSessionStore {
	return &WebSessionStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// WithClock overrides the clock used for expiry checks.
func (s *WebSessionStore) WithClock(now func() time.Time) *WebSessionStore {
	if now != nil {
		s.now = now
	}
	return s
}

// Load returns a decoded copy of the stored session so callers never share state.
func (s *WebSessionStore) Load(_ context.Context, id string) (*domain.WebSession, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, repository.ErrNotFound
	}

	s.mu.Lock()
	e, ok := s.entries[id]
	if ok && !s.now().Before(e.expiresAt) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, repository.ErrNotFound
	}

	var session domain.WebSession
	if err := json.Unmarshal(e.payload, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	session.ID = id
	return &session, nil
}

// Save stores an encoded snapshot of the session.
func (s *WebSessionStore) Save(_ context.Context, session *domain.WebSession, ttl time.Duration) error {
	if session == nil || strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("session id is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweepLocked(now)
	}
	s.entries[strings.TrimSpace(session.ID)] = entry{payload: payload, expiresAt: now.Add(ttl)}
	return nil
}

// sweepLocked drops every expired entry. Callers hold s.mu.
func (s *WebSessionStore) sweepLocked(now time.Time) {
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
	s.lastSweep = now
}

// Delete removes the session if present.
func (s *WebSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, strings.TrimSpace(id))
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored entries. Expired entries count until the next sweep
// in Save or a Load of the same id removes them.
func (s *WebSessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ port.WebSessionStore = (*WebSessionStore)(nil)
