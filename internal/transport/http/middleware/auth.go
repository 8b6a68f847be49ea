package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireLogin lets authenticated visitors through. Anonymous visitors have the requested
// URL remembered on their session and are sent to loginURL.
func RequireLogin(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess.LoggedIn {
			c.Next()
			return
		}

		if c.Request.Method == http.MethodGet {
			sess.ReturnTo = c.Request.URL.RequestURI()
			sess.MarkDirty()
		}
		c.Redirect(http.StatusFound, loginURL)
		c.Abort()
	}
}

// RedirectAuthenticated sends visitors who are already signed in to target.
func RedirectAuthenticated(target string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c).LoggedIn {
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}
