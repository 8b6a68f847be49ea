package routes_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/config"
	"github.com/chinobetoska/nenemi-a-html/internal/repository/memory"
	httproutes "github.com/chinobetoska/nenemi-a-html/internal/transport/http/routes"
	"github.com/chinobetoska/nenemi-a-html/internal/usecase"
)

type stubRegistrar struct{}

func (stubRegistrar) Register(context.Context, *domain.WebSession, usecase.RegistrationInput) usecase.Outcome {
	return usecase.Outcome{Kind: usecase.OutcomeConflict}
}

type stubAuthenticator struct{}

func (stubAuthenticator) Login(context.Context, *domain.WebSession, usecase.LoginInput) usecase.Outcome {
	return usecase.Outcome{Kind: usecase.OutcomeAuthFailed}
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func newEngine(t *testing.T, db, cache httproutes.DatabaseChecker) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.AppConfig{
		App:     config.AppSettings{Env: "test"},
		Session: config.SessionSettings{CookieName: "NENEMIASESSID", CookiePath: "/"},
	}
	reg := prometheus.NewRegistry()

	r, err := httproutes.Register(httproutes.Dependencies{
		Config: cfg,
		Logger: zap.NewNop(),
		Services: httproutes.ServiceSet{
			Registration: stubRegistrar{},
			Auth:         stubAuthenticator{},
			Sessions:     usecase.NewSessionManager(memory.NewWebSessionStore(), time.Hour, zap.NewNop()),
		},
		Registerer: reg,
		Gatherer:   reg,
		Database:   db,
		Cache:      cache,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return r
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	r := newEngine(t, nil, nil)

	if w := serve(r, http.MethodGet, "/healthz"); w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestReadinessUsesCheckers(t *testing.T) {
	r := newEngine(t, pinger{}, pinger{err: errors.New("redis down")})

	if w := serve(r, http.MethodGet, "/readyz"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
}

func TestPagesAreServedOnEveryAlias(t *testing.T) {
	r := newEngine(t, nil, nil)

	cases := map[string]string{
		"/":                   "Registro De Usuarios",
		"/index.html":         "Registro De Usuarios",
		"/index.php":          "Registro De Usuarios",
		"/html/login.html":    "Iniciar Sesión",
		"/php-html/login.php": "Iniciar Sesión",
	}
	for path, marker := range cases {
		w := serve(r, http.MethodGet, path)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
		if !strings.Contains(w.Body.String(), marker) {
			t.Fatalf("%s: expected page containing %q", path, marker)
		}
	}
}

func TestHomeIsGated(t *testing.T) {
	r := newEngine(t, nil, nil)

	for _, path := range []string{"/html/inicio.html", "/html/inicio.php"} {
		w := serve(r, http.MethodGet, path)
		if w.Code != http.StatusFound {
			t.Fatalf("%s: expected 302, got %d", path, w.Code)
		}
		if loc := w.Header().Get("Location"); loc != "/html/login.html?error=sesion_expirada" {
			t.Fatalf("%s: unexpected location %q", path, loc)
		}
	}
}

func TestProcessingEndpointsRedirect(t *testing.T) {
	r := newEngine(t, nil, nil)

	cases := []struct {
		method, path, location string
	}{
		{http.MethodGet, "/procesar_registro.php", "/index.html"},
		{http.MethodGet, "/procesar_login.php", "/html/login.html"},
		{http.MethodPost, "/procesar_registro.php", "/index.html?error=duplicado"},
		{http.MethodPost, "/procesar_login.php", "/html/login.html?error=credenciales"},
		{http.MethodPost, "/logout", "/html/login.html?logout=exitoso"},
	}
	for _, tc := range cases {
		w := serve(r, tc.method, tc.path)
		if w.Code != http.StatusFound {
			t.Fatalf("%s %s: expected 302, got %d", tc.method, tc.path, w.Code)
		}
		if loc := w.Header().Get("Location"); loc != tc.location {
			t.Fatalf("%s %s: expected %q, got %q", tc.method, tc.path, tc.location, loc)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newEngine(t, nil, nil)
	serve(r, http.MethodGet, "/healthz")

	w := serve(r, http.MethodGet, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "nenemia_http_requests_total") {
		t.Fatal("expected http request counter in exposition")
	}
}
