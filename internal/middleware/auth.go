package middleware

import (
	"net/http"

	"simplegest/internal/apiclient"
	"simplegest/internal/model"
	"simplegest/internal/session"
	"simplegest/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	// UserKey holds the model.SessionUser of a logged-in request
	UserKey = "sessionUser"
	// FallbackPath is where non-admins land when they open an admin screen
	FallbackPath = "/nueva-solicitud"
)

// LoadSession resolves the session cookie and forwards the backend token on the
// request context so every apiclient call made for this request carries it.
func LoadSession(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions.Load(c)

		if user, ok := sessions.CurrentUser(c); ok {
			c.Set(UserKey, user)
			ctx := apiclient.ContextWithToken(c.Request.Context(), sessions.Token(c))
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}

// CurrentUser reads the user placed by LoadSession
func CurrentUser(c *gin.Context) (model.SessionUser, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return model.SessionUser{}, false
	}
	user, ok := v.(model.SessionUser)
	return user, ok
}

// RequireAdmin redirects to the new-request screen unless the session user is an admin.
// This only hides screens; the backend enforces its own authorization.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin() {
			c.Redirect(http.StatusSeeOther, FallbackPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdminJSON is the JSON counterpart used on /ui/api routes
func RequireAdminJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Sesión requerida"))
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Acceso denegado"))
			return
		}
		c.Next()
	}
}

// RequireLoginJSON rejects /ui/api calls without a session
func RequireLoginJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Sesión requerida"))
			return
		}
		c.Next()
	}
}
