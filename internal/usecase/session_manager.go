package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	"github.com/chinobetoska/nenemi-a-html/internal/core/port"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/security"
	"github.com/chinobetoska/nenemi-a-html/internal/repository"
)

const defaultWebSessionTTL = 24 * time.Hour

// SessionManager owns the lifecycle of web sessions: lookup by cookie value,
// identifier regeneration, persistence and destruction.
type SessionManager struct {
	store  port.WebSessionStore
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
	newID  func() (string, error)
}

// NewSessionManager constructs a SessionManager backed by store.
func NewSessionManager(store port.WebSessionStore, ttl time.Duration, logger *zap.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = defaultWebSessionTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		store:  store,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		newID:  security.NewSessionID,
	}
}

// WithClock overrides the clock (tests).
func (m *SessionManager) WithClock(now func() time.Time) *SessionManager {
	if now != nil {
		m.now = now
	}
	return m
}

// WithIDGenerator overrides session id generation (tests).
func (m *SessionManager) WithIDGenerator(gen func() (string, error)) *SessionManager {
	if gen != nil {
		m.newID = gen
	}
	return m
}

// Start returns the live session for id. A missing or unknown id yields a fresh
// anonymous session under a server-generated id; the client's value is never adopted.
// A fresh session is not persisted until something is written to it.
func (m *SessionManager) Start(ctx context.Context, id string) (*domain.WebSession, error) {
	if id != "" {
		sess, err := m.store.Load(ctx, id)
		switch {
		case err == nil:
			return sess, nil
		case errors.Is(err, repository.ErrNotFound):
		default:
			return nil, fmt.Errorf("load session: %w", err)
		}
	}

	fresh, err := m.newID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	sess := domain.NewWebSession(fresh, m.now().UTC())
	sess.ClearDirty()
	return sess, nil
}

// Regenerate moves sess to a new identifier and removes the old one from the store,
// so an identifier known before authentication is useless afterwards.
func (m *SessionManager) Regenerate(ctx context.Context, sess *domain.WebSession) error {
	if sess == nil {
		return fmt.Errorf("session is required")
	}

	fresh, err := m.newID()
	if err != nil {
		return fmt.Errorf("generate session id: %w", err)
	}

	old := sess.ID
	sess.ID = fresh
	sess.MarkDirty()

	if old != "" {
		if err := m.store.Delete(ctx, old); err != nil {
			return fmt.Errorf("delete previous session: %w", err)
		}
	}
	return nil
}

// Save persists sess when it changed during the request. Authenticated sessions are
// always written so their expiry slides with activity.
func (m *SessionManager) Save(ctx context.Context, sess *domain.WebSession) error {
	if sess == nil || sess.ID == "" {
		return nil
	}
	if !sess.Dirty() && !sess.LoggedIn {
		return nil
	}
	if err := m.store.Save(ctx, sess, m.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	sess.ClearDirty()
	return nil
}

// Destroy removes sess from the store and resets it in place to an unsaved anonymous
// session under a new identifier.
func (m *SessionManager) Destroy(ctx context.Context, sess *domain.WebSession) error {
	if sess == nil {
		return nil
	}

	old := sess.ID
	fresh, err := m.newID()
	if err != nil {
		return fmt.Errorf("generate session id: %w", err)
	}
	*sess = *domain.NewWebSession(fresh, m.now().UTC())
	sess.ClearDirty()

	if old == "" {
		return nil
	}
	if err := m.store.Delete(ctx, old); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	m.logger.Debug("web session destroyed")
	return nil
}
