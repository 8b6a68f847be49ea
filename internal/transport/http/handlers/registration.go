package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/telemetry"
	"github.com/chinobetoska/nenemi-a-html/internal/transport/http/middleware"
	"github.com/chinobetoska/nenemi-a-html/internal/usecase"
)

// Registrar runs the sign-up pipeline.
type Registrar interface {
	Register(ctx context.Context, sess *domain.WebSession, in usecase.RegistrationInput) usecase.Outcome
}

// RegistrationForm is the body posted by the registration page.
type RegistrationForm struct {
	Email    string `form:"e-mail_registro"`
	Phone    string `form:"telefono_registro"`
	Password string `form:"contrasena_registro"`
}

// RegistrationHandler processes the sign-up form.
type RegistrationHandler struct {
	registration Registrar
	metrics      *telemetry.AuthMetrics
}

func NewRegistrationHandler(registration Registrar) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// WithMetrics counts rejected direct visits alongside the pipeline results.
func (h *RegistrationHandler) WithMetrics(metrics *telemetry.AuthMetrics) *RegistrationHandler {
	h.metrics = metrics
	return h
}

// RegisterRoutes binds the processing endpoint for every method so direct visits
// get the unauthorized flash instead of a 404.
func (h *RegistrationHandler) RegisterRoutes(r gin.IRoutes) {
	r.Any("/procesar_registro.php", h.Submit)
}

// Submit runs the registration pipeline and redirects with the outcome.
func (h *RegistrationHandler) Submit(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	defer recoverToGeneral(c, sess, RegistrationPage)

	if c.Request.Method != http.MethodPost {
		rejectNonPost(c, sess, RegistrationPage, h.metrics.ObserveRegistration)
		return
	}

	var form RegistrationForm
	// A malformed body is treated as an empty form and fails validation.
	_ = c.ShouldBindWith(&form, binding.Form)

	in := usecase.RegistrationInput{
		Email:    form.Email,
		Phone:    form.Phone,
		Password: form.Password,
		ClientIP: middleware.GetRequestContext(c).IP,
	}.Normalize()

	out := h.registration.Register(c.Request.Context(), sess, in)
	if out.OK() {
		sess.SetSuccess(usecase.MsgRegistrationSuccess)
		c.Redirect(http.StatusFound, withQuery(HomePage, "registro", MarkerSuccess))
		return
	}

	RedirectWithOutcome(c, sess, out, registrationCases, RegistrationPage, map[string]string{
		domain.FieldEmail: in.Email,
		domain.FieldPhone: in.Phone,
	})
}
