package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/chinobetoska/nenemi-a-html/internal/core/port"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/config"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/database"
	kafkainfra "github.com/chinobetoska/nenemi-a-html/internal/infra/kafka"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/logger"
	redisinfra "github.com/chinobetoska/nenemi-a-html/internal/infra/redis"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/security"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/telemetry"
	memoryrepo "github.com/chinobetoska/nenemi-a-html/internal/repository/memory"
	postgresrepo "github.com/chinobetoska/nenemi-a-html/internal/repository/postgres"
	redisrepo "github.com/chinobetoska/nenemi-a-html/internal/repository/redis"
	"github.com/chinobetoska/nenemi-a-html/internal/transport/http/routes"
	"github.com/chinobetoska/nenemi-a-html/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	tracing  *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &Application{cfg: cfg, logger: log}
	ok := false
	defer func() {
		if !ok {
			a.release(context.Background())
		}
	}()

	a.tracing, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	a.pool, err = database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	repos := postgresrepo.NewRepositories(a.pool)

	hasher, err := security.NewArgon2Hasher(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	})
	if err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	var (
		sessionStore   port.WebSessionStore
		rateLimitStore port.RateLimitStore
		cache          routes.CacheChecker
	)
	if cfg.Session.Store == config.SessionStoreMemory {
		log.Warn("using in-memory session store; sessions are lost on restart and not shared between instances")
		sessionStore = memoryrepo.NewWebSessionStore()
	} else {
		a.redis, err = redisinfra.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		cache = a.redis
		sessionStore = redisrepo.NewWebSessionStore(a.redis.Client(), cfg.Redis.SessionPrefix)

		window := cfg.RateLimit.WindowDuration
		if window <= 0 {
			window = time.Minute
		}
		rateLimitStore = redisrepo.NewRateLimitRepository(a.redis.Client(), redisrepo.SlidingWindowConfig{
			KeyPrefix: cfg.Redis.RateLimitPrefix,
			TTL:       window * 2,
		})
	}

	eventPublisher := a.newEventPublisher()

	authMetrics, err := telemetry.NewAuthMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("init auth metrics: %w", err)
	}
	tracer := a.tracing.Tracer()

	sessions := usecase.NewSessionManager(sessionStore, cfg.Session.TTL, log)

	registrationService := usecase.NewRegistrationService(repos.Users, hasher, sessions, log).
		WithEvents(eventPublisher).
		WithLimiter(usecase.NewAttemptLimiter(rateLimitStore, usecase.RateLimitScopeRegistration, cfg.RateLimit.RegisterMaxAttempts, cfg.RateLimit.WindowDuration, log)).
		WithMetrics(authMetrics).
		WithTracer(tracer)

	authService := usecase.NewAuthService(repos.Users, repos.Sessions, hasher, sessions, log).
		WithTrackingTTL(cfg.Session.TrackingTTL).
		WithEvents(eventPublisher).
		WithLimiter(usecase.NewAttemptLimiter(rateLimitStore, usecase.RateLimitScopeLogin, cfg.RateLimit.LoginMaxAttempts, cfg.RateLimit.WindowDuration, log)).
		WithMetrics(authMetrics).
		WithTracer(tracer)

	a.engine, err = routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Tracer:      tracer,
		AuthMetrics: authMetrics,
		Services: routes.ServiceSet{
			Registration: registrationService,
			Auth:         authService,
			Sessions:     sessions,
		},
		Database: a.pool,
		Cache:    cache,
	})
	if err != nil {
		return nil, fmt.Errorf("init routes: %w", err)
	}

	ok = true
	return a, nil
}

// newEventPublisher prefers Kafka and falls back to logging the events.
func (a *Application) newEventPublisher() port.EventPublisher {
	if len(a.cfg.Kafka.Brokers) == 0 {
		a.logger.Info("kafka brokers not configured, using stub publisher")
		return kafkainfra.NewStubPublisher(a.logger)
	}

	producer, err := kafkainfra.NewProducer(a.cfg.Kafka, a.logger)
	if err != nil {
		a.logger.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
		return kafkainfra.NewStubPublisher(a.logger)
	}
	a.producer = producer
	a.logger.Info("kafka event publisher initialized", zap.Strings("brokers", a.cfg.Kafka.Brokers))
	return kafkainfra.NewEventPublisher(producer, a.cfg.App, a.logger)
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.release(context.Background())

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting NENEMI-A account service",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
		zap.String("session_store", a.cfg.Session.Store),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		a.logger.Info("server stopped")
		return nil
	case err := <-serverErrCh:
		return err
	}
}

// release closes every resource New managed to open. It is safe to call on a partly
// built Application.
func (a *Application) release(ctx context.Context) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("close kafka producer", zap.Error(err))
		}
		a.producer = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
		a.redis = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	if a.tracing != nil {
		if err := a.tracing.Shutdown(ctx); err != nil {
			a.logger.Warn("shutdown tracer provider", zap.Error(err))
		}
		a.tracing = nil
	}
}
