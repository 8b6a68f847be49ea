package usecase

import (
	"context"
	"errors"
	"time"

	uuid "github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	"github.com/chinobetoska/nenemi-a-html/internal/core/port"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/logger"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/telemetry"
	"github.com/chinobetoska/nenemi-a-html/internal/repository"
)

// RegistrationService handles new account sign-up.
type RegistrationService struct {
	users     port.UserRepository
	hasher    port.PasswordHasher
	sessions  *SessionManager
	validator *Validator
	events    port.EventPublisher
	limiter   *AttemptLimiter
	metrics   *telemetry.AuthMetrics
	tracer    trace.Tracer
	logger    *zap.Logger
	now       func() time.Time
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(users port.UserRepository, hasher port.PasswordHasher, sessions *SessionManager, logger *zap.Logger) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		users:     users,
		hasher:    hasher,
		sessions:  sessions,
		validator: NewValidator(),
		tracer:    noop.NewTracerProvider().Tracer(telemetry.TracerName),
		logger:    logger,
		now:       time.Now,
	}
}

// WithEvents sets the publisher notified after a successful registration.
func (s *RegistrationService) WithEvents(events port.EventPublisher) *RegistrationService {
	s.events = events
	return s
}

// WithLimiter caps registration attempts per client IP.
func (s *RegistrationService) WithLimiter(limiter *AttemptLimiter) *RegistrationService {
	s.limiter = limiter
	return s
}

// WithMetrics sets the outcome counters.
func (s *RegistrationService) WithMetrics(metrics *telemetry.AuthMetrics) *RegistrationService {
	s.metrics = metrics
	return s
}

// WithTracer sets the tracer used for the registration span.
func (s *RegistrationService) WithTracer(tracer trace.Tracer) *RegistrationService {
	if tracer != nil {
		s.tracer = tracer
	}
	return s
}

// WithClock overrides the clock (tests).
func (s *RegistrationService) WithClock(now func() time.Time) *RegistrationService {
	if now != nil {
		s.now = now
	}
	return s
}

// Register creates an account from the submitted form and signs the visitor in on sess.
// It never returns a Go error: every failure is folded into the Outcome.
func (s *RegistrationService) Register(ctx context.Context, sess *domain.WebSession, in RegistrationInput) Outcome {
	ctx, span := s.tracer.Start(ctx, "registration.register")
	defer span.End()

	out := s.register(ctx, sess, in.Normalize())

	span.SetAttributes(attribute.String("registration.outcome", out.Kind.String()))
	if out.Kind == OutcomeSystemFailure {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, "registration failed")
	}
	s.metrics.ObserveRegistration(out.Kind.String())

	return out
}

func (s *RegistrationService) register(ctx context.Context, sess *domain.WebSession, in RegistrationInput) Outcome {
	log := requestLogger(ctx, s.logger)
	now := s.now().UTC()

	if err := s.limiter.Allow(ctx, in.ClientIP, now); err != nil {
		log.Warn("registration rate limited", zap.String("client_ip", logger.MaskIP(in.ClientIP)), zap.Error(err))
		return failed(OutcomeRateLimited, err)
	}

	if msgs := s.validator.ValidateRegistration(in); len(msgs) > 0 {
		return Outcome{Kind: OutcomeValidationFailed, Errors: msgs, Err: &ValidationError{Messages: msgs}}
	}

	exists, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		err = systemError("check email", err)
		log.Error("registration duplicate check failed", zap.String("email", logger.MaskEmail(in.Email)), zap.Error(err))
		return failed(OutcomeSystemFailure, err)
	}
	if exists {
		return failed(OutcomeConflict, ErrEmailTaken)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		err = systemError("hash password", err)
		log.Error("registration hash failed", zap.Error(err))
		return failed(OutcomeSystemFailure, err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		IsActive:     true,
		RegisteredAt: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The pre-check holds no lock; a concurrent sign-up surfaces here.
		if errors.Is(err, repository.ErrDuplicate) {
			log.Info("registration lost duplicate race", zap.String("email", logger.MaskEmail(in.Email)))
			return failed(OutcomeConflict, ErrEmailTaken)
		}
		err = systemError("create user", err)
		log.Error("registration insert failed", zap.String("email", logger.MaskEmail(in.Email)), zap.Error(err))
		return failed(OutcomeSystemFailure, err)
	}

	if err := s.sessions.Regenerate(ctx, sess); err != nil {
		err = systemError("regenerate session", err)
		log.Error("registration session regenerate failed", zap.String("user_id", user.ID), zap.Error(err))
		return failed(OutcomeSystemFailure, err)
	}
	sess.Authenticate(user, now)

	if err := s.users.TouchLastAccess(ctx, user.ID, now); err != nil {
		log.Warn("registration last access update failed", zap.String("user_id", user.ID), zap.Error(err))
	} else {
		user.LastAccess = &now
	}

	s.publishRegistered(ctx, user, in.ClientIP)

	log.Info("user registered", zap.String("user_id", user.ID), zap.String("email", logger.MaskEmail(user.Email)))

	sanitized := user.Sanitized()
	return Outcome{Kind: OutcomeSuccess, User: &sanitized}
}

func (s *RegistrationService) publishRegistered(ctx context.Context, user domain.User, clientIP string) {
	if s.events == nil {
		return
	}
	event := domain.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       user.ID,
		Email:        user.Email,
		Phone:        user.Phone,
		RegisteredAt: user.RegisteredAt,
	}
	if clientIP != "" {
		event.Metadata = map[string]any{"ip_address": clientIP}
	}
	if err := s.events.PublishUserRegistered(ctx, event); err != nil {
		requestLogger(ctx, s.logger).Warn("publish user registered event failed", zap.String("user_id", user.ID), zap.Error(err))
	}
}
