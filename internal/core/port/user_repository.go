package port

import (
	"context"
	"time"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
)

// UserRepository exposes persistence behavior for users.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	TouchLastAccess(ctx context.Context, id string, at time.Time) error
}
