package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	"github.com/chinobetoska/nenemi-a-html/internal/core/port"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a logging event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, fields ...zap.Field) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		append([]zap.Field{
			zap.String("event_type", eventType),
			zap.String("user_id", userID),
			zap.Time("timestamp", at.UTC()),
		}, fields...)...,
	)
}

// PublishUserRegistered logs user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.logEvent(EventUserRegistered, event.UserID, event.RegisteredAt,
		zap.String("email", logger.MaskEmail(event.Email)),
		zap.String("phone", logger.MaskPhone(event.Phone)),
	)
	return nil
}

// PublishUserLoggedIn logs user.logged_in events.
func (p *StubPublisher) PublishUserLoggedIn(_ context.Context, event domain.UserLoggedInEvent) error {
	p.logEvent(EventUserLoggedIn, event.UserID, event.LoggedAt,
		zap.String("client_ip", logger.MaskIP(event.IP)),
		zap.Bool("remember", event.Remember),
	)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
