package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	appLogger "github.com/chinobetoska/nenemi-a-html/internal/infra/logger"
	"github.com/chinobetoska/nenemi-a-html/internal/usecase"
)

// WebSessionKey is the gin context key holding the request's *domain.WebSession.
const WebSessionKey = "web_session"

// CookieOptions controls the session cookie attributes.
type CookieOptions struct {
	Name   string
	Path   string
	Secure bool
}

// Session loads the visitor's session from the cookie before the handler runs and
// persists it just before the response header is written, so redirects carry the
// updated cookie.
func Session(manager *usecase.SessionManager, opts CookieOptions, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Path == "" {
		opts.Path = "/"
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		incoming, _ := c.Cookie(opts.Name)
		sess, err := manager.Start(ctx, incoming)
		if err != nil {
			appLogger.WithContext(ctx).Error("session load failed", zap.Error(err))
			// Requests still run against an unsaved session so the visitor gets a page.
			sess = domain.NewWebSession("", time.Now().UTC())
			sess.ClearDirty()
		}
		c.Set(WebSessionKey, sess)

		sw := &sessionWriter{ResponseWriter: c.Writer}
		sw.commit = func() {
			persist := sess.ID != "" && (sess.Dirty() || sess.LoggedIn)
			if persist {
				if err := manager.Save(ctx, sess); err != nil {
					appLogger.WithContext(ctx).Error("session save failed", zap.Error(err))
					return
				}
				if sess.ID != incoming {
					http.SetCookie(sw.ResponseWriter.Header(), sessionCookie(opts, sess.ID, 0))
				}
				return
			}
			if incoming != "" && sess.ID != incoming {
				http.SetCookie(sw.ResponseWriter.Header(), sessionCookie(opts, "", -1))
			}
		}
		c.Writer = sw

		c.Next()

		sw.flush()
	}
}

func sessionCookie(opts CookieOptions, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     opts.Name,
		Value:    value,
		Path:     opts.Path,
		MaxAge:   maxAge,
		Secure:   opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// CurrentSession returns the session attached by Session. It never returns nil.
func CurrentSession(c *gin.Context) *domain.WebSession {
	if v, ok := c.Get(WebSessionKey); ok {
		if sess, ok := v.(*domain.WebSession); ok && sess != nil {
			return sess
		}
	}
	sess := domain.NewWebSession("", time.Now().UTC())
	c.Set(WebSessionKey, sess)
	return sess
}

// sessionWriter runs commit once, right before the first byte of the header goes out.
type sessionWriter struct {
	gin.ResponseWriter
	once   sync.Once
	commit func()
}

func (w *sessionWriter) flush() {
	w.once.Do(w.commit)
}

func (w *sessionWriter) WriteHeader(code int) {
	w.flush()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) WriteHeaderNow() {
	w.flush()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(data []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(data)
}

func (w *sessionWriter) WriteString(s string) (int, error) {
	w.flush()
	return w.ResponseWriter.WriteString(s)
}
