package port

import (
	"context"
	"time"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
)

// WebSessionStore persists per-client session state keyed by the session cookie value.
// Load returns repository.ErrNotFound when no live session exists for the id.
type WebSessionStore interface {
	Load(ctx context.Context, id string) (*domain.WebSession, error)
	Save(ctx context.Context, session *domain.WebSession, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
