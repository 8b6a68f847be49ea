package port

import (
	"context"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
)

// SessionRepository stores the observational session-tracking rows.
type SessionRepository interface {
	Upsert(ctx context.Context, record domain.SessionRecord) error
	GetByID(ctx context.Context, id string) (*domain.SessionRecord, error)
}
