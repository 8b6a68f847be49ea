package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chinobetoska/nenemi-a-html/internal/core/port"
)

// Rate limit scopes.
const (
	RateLimitScopeLogin        = "login"
	RateLimitScopeRegistration = "registration"
)

// AttemptLimiter enforces a sliding-window cap on form submissions per client. Store
// failures are logged and the attempt is allowed.
type AttemptLimiter struct {
	store  port.RateLimitStore
	window time.Duration
	limit  int
	scope  string
	logger *zap.Logger
}

// NewAttemptLimiter returns nil, meaning unlimited, when store is nil or the limit is not positive.
func NewAttemptLimiter(store port.RateLimitStore, scope string, limit int, window time.Duration, logger *zap.Logger) *AttemptLimiter {
	if store == nil || limit <= 0 {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttemptLimiter{store: store, window: window, limit: limit, scope: scope, logger: logger}
}

// Allow records one attempt for identifier and returns *RateLimitExceededError when the
// window is already full.
func (l *AttemptLimiter) Allow(ctx context.Context, identifier string, now time.Time) error {
	if l == nil {
		return nil
	}
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" {
		return nil
	}

	key := fmt.Sprintf("%s:%s", l.scope, identifier)

	if err := l.store.TrimWindow(ctx, key, l.window, now); err != nil {
		l.logger.Warn("rate limit trim failed", zap.String("scope", l.scope), zap.Error(err))
		return nil
	}

	count, err := l.store.CountAttempts(ctx, key, l.window, now)
	if err != nil {
		l.logger.Warn("rate limit count failed", zap.String("scope", l.scope), zap.Error(err))
		return nil
	}

	if count >= l.limit {
		retryAfter := time.Duration(0)
		if oldest, ok, err := l.store.OldestAttempt(ctx, key, l.window, now); err == nil && ok {
			if reset := oldest.Add(l.window); reset.After(now) {
				retryAfter = reset.Sub(now)
			}
		} else if err != nil {
			l.logger.Warn("rate limit oldest lookup failed", zap.String("scope", l.scope), zap.Error(err))
		}
		return &RateLimitExceededError{Scope: l.scope, RetryAfter: retryAfter}
	}

	if err := l.store.RecordAttempt(ctx, key, now); err != nil {
		l.logger.Warn("rate limit record failed", zap.String("scope", l.scope), zap.Error(err))
	}
	return nil
}
