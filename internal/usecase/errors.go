package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chinobetoska/nenemi-a-html/internal/infra/logger"
)

var (
	// ErrEmailTaken indicates an account already exists for the submitted email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount indicates the account has been deactivated.
	ErrInactiveAccount = errors.New("account is not active")
	// ErrUnauthorizedAccess indicates a processing endpoint was reached without a form submission.
	ErrUnauthorizedAccess = errors.New("unauthorized access")
	// ErrSystem marks storage or infrastructure failures. The cause is wrapped alongside it.
	ErrSystem = errors.New("system failure")
)

// ValidationError carries every rule violation found in a submission, in rule order.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// RateLimitExceededError indicates too many submissions from one client within the window.
type RateLimitExceededError struct {
	Scope      string
	RetryAfter time.Duration
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.Scope, e.RetryAfter)
}

func systemError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrSystem, err)
}

func requestLogger(ctx context.Context, base *zap.Logger) *zap.Logger {
	if id := logger.RequestIDFromContext(ctx); id != "" {
		return base.With(zap.String("request_id", id))
	}
	return base
}
