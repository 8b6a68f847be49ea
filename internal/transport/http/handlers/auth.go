package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	appLogger "github.com/chinobetoska/nenemi-a-html/internal/infra/logger"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/telemetry"
	"github.com/chinobetoska/nenemi-a-html/internal/transport/http/middleware"
	"github.com/chinobetoska/nenemi-a-html/internal/usecase"
)

// Authenticator runs the sign-in pipeline.
type Authenticator interface {
	Login(ctx context.Context, sess *domain.WebSession, in usecase.LoginInput) usecase.Outcome
}

// SessionTerminator ends a web session.
type SessionTerminator interface {
	Destroy(ctx context.Context, sess *domain.WebSession) error
}

// LoginForm is the body posted by the login page. Checkboxes post "on" when ticked.
type LoginForm struct {
	Email    string `form:"e-mail_registro"`
	Password string `form:"contrasena_registro"`
	Remember string `form:"recordar"`
}

// AuthHandler processes sign-in and sign-out.
type AuthHandler struct {
	auth     Authenticator
	sessions SessionTerminator
	metrics  *telemetry.AuthMetrics
}

func NewAuthHandler(auth Authenticator, sessions SessionTerminator) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

// WithMetrics counts rejected direct visits alongside the pipeline results.
func (h *AuthHandler) WithMetrics(metrics *telemetry.AuthMetrics) *AuthHandler {
	h.metrics = metrics
	return h
}

// RegisterRoutes binds the login and logout endpoints.
func (h *AuthHandler) RegisterRoutes(r gin.IRoutes) {
	r.Any("/procesar_login.php", h.Login)
	r.POST("/logout", h.Logout)
}

// Login runs the login pipeline. On success the visitor resumes the page that sent them
// to the login form, or lands on the home page.
func (h *AuthHandler) Login(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	defer recoverToGeneral(c, sess, LoginPage)

	if c.Request.Method != http.MethodPost {
		rejectNonPost(c, sess, LoginPage, h.metrics.ObserveLogin)
		return
	}

	var form LoginForm
	_ = c.ShouldBindWith(&form, binding.Form)

	reqCtx := middleware.GetRequestContext(c)
	in := usecase.LoginInput{
		Email:     form.Email,
		Password:  form.Password,
		Remember:  form.Remember != "",
		ClientIP:  reqCtx.IP,
		UserAgent: reqCtx.UserAgent,
	}

	out := h.auth.Login(c.Request.Context(), sess, in)
	if !out.OK() {
		RedirectWithOutcome(c, sess, out, loginCases, LoginPage, nil)
		return
	}

	sess.SetSuccess(usecase.MsgWelcomeBack)
	target := withQuery(HomePage, "login", MarkerSuccess)
	if out.ReturnTo != "" {
		target = out.ReturnTo
	}
	c.Redirect(http.StatusFound, target)
}

// Logout destroys the session and shows the farewell banner on the login page.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	userID := sess.UserID

	if err := h.sessions.Destroy(c.Request.Context(), sess); err != nil {
		appLogger.WithContext(c.Request.Context()).Warn("logout failed to destroy session", zap.String("user_id", userID), zap.Error(err))
	} else if userID != "" {
		appLogger.WithContext(c.Request.Context()).Info("user logged out", zap.String("user_id", userID))
	}

	c.Redirect(http.StatusFound, withQuery(LoginPage, "logout", MarkerSuccess))
}
