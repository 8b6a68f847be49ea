package usecase

import (
	"context"
	"errors"
	"strings"
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
	"github.com/chinobetoska/nenemi-a-html/internal/infra/security"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/telemetry"
	"github.com/chinobetoska/nenemi-a-html/internal/repository"
)

const defaultTrackingTTL = time.Hour

// AuthService signs visitors in against the usuarios table.
type AuthService struct {
	users       port.UserRepository
	tracking    port.SessionRepository
	hasher      port.PasswordHasher
	sessions    *SessionManager
	validator   *Validator
	events      port.EventPublisher
	limiter     *AttemptLimiter
	metrics     *telemetry.AuthMetrics
	tracer      trace.Tracer
	logger      *zap.Logger
	trackingTTL time.Duration
	now         func() time.Time
}

// NewAuthService constructs an AuthService. tracking may be nil to skip session tracking rows.
func NewAuthService(users port.UserRepository, tracking port.SessionRepository, hasher port.PasswordHasher, sessions *SessionManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:       users,
		tracking:    tracking,
		hasher:      hasher,
		sessions:    sessions,
		validator:   NewValidator(),
		tracer:      noop.NewTracerProvider().Tracer(telemetry.TracerName),
		logger:      logger,
		trackingTTL: defaultTrackingTTL,
		now:         time.Now,
	}
}

// WithTrackingTTL sets the expiry written on session tracking rows.
func (s *AuthService) WithTrackingTTL(ttl time.Duration) *AuthService {
	if ttl > 0 {
		s.trackingTTL = ttl
	}
	return s
}

// WithEvents sets the publisher notified after a successful login.
func (s *AuthService) WithEvents(events port.EventPublisher) *AuthService {
	s.events = events
	return s
}

// WithLimiter caps login attempts per client IP.
func (s *AuthService) WithLimiter(limiter *AttemptLimiter) *AuthService {
	s.limiter = limiter
	return s
}

// WithMetrics sets the outcome counters.
func (s *AuthService) WithMetrics(metrics *telemetry.AuthMetrics) *AuthService {
	s.metrics = metrics
	return s
}

// WithTracer sets the tracer used for the login span.
func (s *AuthService) WithTracer(tracer trace.Tracer) *AuthService {
	if tracer != nil {
		s.tracer = tracer
	}
	return s
}

// WithClock overrides the clock (tests).
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

// Login verifies the submitted credentials and, on success, binds sess to the account
// under a freshly generated session identifier.
func (s *AuthService) Login(ctx context.Context, sess *domain.WebSession, in LoginInput) Outcome {
	ctx, span := s.tracer.Start(ctx, "auth.login")
	defer span.End()

	out := s.login(ctx, sess, in.Normalize())

	span.SetAttributes(attribute.String("auth.outcome", out.Kind.String()))
	if out.Kind == OutcomeSystemFailure {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, "login failed")
	}
	s.metrics.ObserveLogin(out.Kind.String())

	return out
}

func (s *AuthService) login(ctx context.Context, sess *domain.WebSession, in LoginInput) Outcome {
	log := requestLogger(ctx, s.logger)
	now := s.now().UTC()

	if err := s.limiter.Allow(ctx, in.ClientIP, now); err != nil {
		log.Warn("login rate limited", zap.String("client_ip", logger.MaskIP(in.ClientIP)), zap.Error(err))
		return failed(OutcomeRateLimited, err)
	}

	if msgs := s.validator.ValidateLogin(in); len(msgs) > 0 {
		return Outcome{Kind: OutcomeValidationFailed, Errors: msgs, Err: &ValidationError{Messages: msgs}}
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("login rejected", zap.String("email", logger.MaskEmail(in.Email)), zap.String("reason", "unknown_email"))
			return failed(OutcomeAuthFailed, ErrInvalidCredentials)
		}
		err = systemError("lookup user", err)
		log.Error("login lookup failed", zap.String("email", logger.MaskEmail(in.Email)), zap.Error(err))
		return failed(OutcomeSystemFailure, err)
	}

	if !user.IsActive {
		log.Info("login rejected", zap.String("user_id", user.ID), zap.String("reason", "inactive"))
		return failed(OutcomeInactive, ErrInactiveAccount)
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		err = systemError("verify password", err)
		log.Error("login verify failed", zap.String("user_id", user.ID), zap.Error(err))
		return failed(OutcomeSystemFailure, err)
	}
	if !ok {
		log.Info("login rejected", zap.String("user_id", user.ID), zap.String("reason", "password_mismatch"))
		return failed(OutcomeAuthFailed, ErrInvalidCredentials)
	}

	if err := s.sessions.Regenerate(ctx, sess); err != nil {
		err = systemError("regenerate session", err)
		log.Error("login session regenerate failed", zap.String("user_id", user.ID), zap.Error(err))
		return failed(OutcomeSystemFailure, err)
	}

	// Written before the session is populated so a failure leaves the visitor signed out.
	if err := s.users.TouchLastAccess(ctx, user.ID, now); err != nil {
		err = systemError("update last access", err)
		log.Error("login last access update failed", zap.String("user_id", user.ID), zap.Error(err))
		return failed(OutcomeSystemFailure, err)
	}
	user.LastAccess = &now

	sess.Authenticate(*user, now)
	sess.Remember = in.Remember
	returnTo := sess.TakeReturnTo()

	s.track(ctx, sess.ID, user.ID, in, now)
	s.publishLoggedIn(ctx, user.ID, in, now)

	log.Info("user logged in", zap.String("user_id", user.ID), zap.String("client_ip", logger.MaskIP(in.ClientIP)))

	sanitized := user.Sanitized()
	out := Outcome{Kind: OutcomeSuccess, User: &sanitized}
	if IsLocalPath(returnTo) {
		out.ReturnTo = returnTo
	}
	return out
}

// track upserts the observational sesiones row. Failures never affect the login.
func (s *AuthService) track(ctx context.Context, sessionID, userID string, in LoginInput, now time.Time) {
	if s.tracking == nil {
		return
	}

	record := domain.SessionRecord{
		ID:        security.HashToken(sessionID),
		UserID:    userID,
		IP:        in.ClientIP,
		UserAgent: in.UserAgent,
		ExpiresAt: now.Add(s.trackingTTL),
	}
	if err := s.tracking.Upsert(ctx, record); err != nil {
		s.metrics.ObserveTrackingFailure()
		requestLogger(ctx, s.logger).Warn("session tracking upsert failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *AuthService) publishLoggedIn(ctx context.Context, userID string, in LoginInput, now time.Time) {
	if s.events == nil {
		return
	}
	event := domain.UserLoggedInEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		IP:        in.ClientIP,
		UserAgent: in.UserAgent,
		Remember:  in.Remember,
		LoggedAt:  now,
	}
	if err := s.events.PublishUserLoggedIn(ctx, event); err != nil {
		requestLogger(ctx, s.logger).Warn("publish user logged in event failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// IsLocalPath reports whether target is a same-origin absolute path. Scheme-relative
// ("//host") and backslash variants are rejected.
func IsLocalPath(target string) bool {
	if target == "" || target[0] != '/' {
		return false
	}
	if len(target) > 1 && (target[1] == '/' || target[1] == '\\') {
		return false
	}
	return !strings.ContainsAny(target, "\r\n")
}
