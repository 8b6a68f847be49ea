package routes

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/chinobetoska/nenemi-a-html/internal/infra/config"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/telemetry"
	"github.com/chinobetoska/nenemi-a-html/internal/transport/http/handlers"
	"github.com/chinobetoska/nenemi-a-html/internal/transport/http/middleware"
	"github.com/chinobetoska/nenemi-a-html/internal/transport/http/templates"
	"github.com/chinobetoska/nenemi-a-html/internal/usecase"
)

// ServiceSet groups the pipelines the HTTP layer depends on.
type ServiceSet struct {
	Registration handlers.Registrar
	Auth         handlers.Authenticator
	Sessions     *usecase.SessionManager
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Services ServiceSet
	Tracer   trace.Tracer
	// AuthMetrics counts direct visits to the processing endpoints. Optional.
	AuthMetrics *telemetry.AuthMetrics
	// Registerer receives the HTTP collectors; Gatherer backs /metrics. Both default
	// to the Prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Database   DatabaseChecker
	Cache      CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	Ping(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) (*gin.Engine, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Services.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Tracer == nil {
		deps.Tracer = noop.NewTracerProvider().Tracer("")
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := templates.Load()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Registerer: deps.Registerer})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Tracing(deps.Tracer))
	r.Use(middleware.EnrichContext())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(httpMetrics.Handler())

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.Ping))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	web := r.Group("/")
	web.Use(middleware.Session(deps.Services.Sessions, middleware.CookieOptions{
		Name:   deps.Config.Session.CookieName,
		Path:   deps.Config.Session.CookiePath,
		Secure: deps.Config.Session.CookieSecure,
	}, deps.Logger))
	{
		pages := handlers.NewPageHandler()
		toHome := middleware.RedirectAuthenticated(handlers.HomePage)

		for _, path := range []string{"/", handlers.RegistrationPage, "/index.php"} {
			web.GET(path, toHome, pages.Registration)
		}
		for _, path := range []string{handlers.LoginPage, "/php-html/login.php"} {
			web.GET(path, toHome, pages.Login)
		}

		requireLogin := middleware.RequireLogin(handlers.SessionExpiredURL())
		for _, path := range []string{handlers.HomePage, "/html/inicio.php"} {
			web.GET(path, requireLogin, pages.Home)
		}

		handlers.NewRegistrationHandler(deps.Services.Registration).
			WithMetrics(deps.AuthMetrics).
			RegisterRoutes(web)
		handlers.NewAuthHandler(deps.Services.Auth, deps.Services.Sessions).
			WithMetrics(deps.AuthMetrics).
			RegisterRoutes(web)
	}

	return r, nil
}
