package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	"github.com/chinobetoska/nenemi-a-html/internal/transport/http/middleware"
	"github.com/chinobetoska/nenemi-a-html/internal/transport/http/templates"
	"github.com/chinobetoska/nenemi-a-html/internal/usecase"
)

// PageData is the view model shared by every page.
type PageData struct {
	Title string
	// Info and Notice come from query markers rather than the session.
	Info   string
	Notice string
	Flash  domain.Flash
	Form   map[string]string
	Email  string
}

// PageHandler renders the HTML pages. Rendering consumes the pending flash.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Registration renders the sign-up form, re-populated from a failed submission.
func (h *PageHandler) Registration(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	c.HTML(http.StatusOK, templates.Registration, PageData{
		Title: "Registro",
		Flash: sess.TakeFlash(),
		Form:  sess.TakeForm(),
	})
}

// Login renders the sign-in form.
func (h *PageHandler) Login(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	data := PageData{
		Title: "Iniciar Sesión",
		Flash: sess.TakeFlash(),
	}
	// The login form is never re-populated; drop values stashed by a failed registration.
	sess.TakeForm()
	if c.Query("error") == MarkerSessionExpired {
		data.Info = usecase.MsgSessionExpired
	}
	if c.Query("logout") == MarkerSuccess {
		data.Notice = usecase.MsgLoggedOut
	}
	c.HTML(http.StatusOK, templates.Login, data)
}

// Home renders the signed-in landing page.
func (h *PageHandler) Home(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	c.HTML(http.StatusOK, templates.Home, PageData{
		Title: "Inicio",
		Flash: sess.TakeFlash(),
		Email: sess.Email,
	})
}
