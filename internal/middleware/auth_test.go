package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"simplegest/internal/apiclient"
	"simplegest/internal/model"
	"simplegest/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sessions, err := session.NewManager(session.NewMemoryStore(), session.Options{Secret: "k"})
	require.NoError(t, err)

	r := gin.New()
	r.Use(LoadSession(sessions))
	r.GET("/login-as/:role", func(c *gin.Context) {
		require.NoError(t, sessions.Login(c, "tok-"+c.Param("role"), model.SessionUser{Username: "u", Role: c.Param("role")}))
	})
	r.GET("/dashboard", RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, "panel")
	})
	r.GET("/token", func(c *gin.Context) {
		c.String(http.StatusOK, apiclient.TokenFromContext(c.Request.Context()))
	})
	r.GET("/ui/api/admin", RequireAdminJSON(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/ui/api/any", RequireLoginJSON(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, sessions
}

func get(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAdminRedirectsAnonymous(t *testing.T) {
	r, _ := newRouter(t)

	rec := get(r, "/dashboard", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, FallbackPath, rec.Header().Get("Location"))
}

func TestRequireAdminRedirectsUsuario(t *testing.T) {
	r, _ := newRouter(t)
	cookies := get(r, "/login-as/usuario", nil).Result().Cookies()

	rec := get(r, "/dashboard", cookies)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, FallbackPath, rec.Header().Get("Location"))
}

func TestRequireAdminRendersForAdmin(t *testing.T) {
	r, _ := newRouter(t)
	cookies := get(r, "/login-as/admin", nil).Result().Cookies()

	rec := get(r, "/dashboard", cookies)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "panel", rec.Body.String())
}

func TestLoadSessionForwardsToken(t *testing.T) {
	r, _ := newRouter(t)
	cookies := get(r, "/login-as/usuario", nil).Result().Cookies()

	assert.Equal(t, "tok-usuario", get(r, "/token", cookies).Body.String())
	assert.Empty(t, get(r, "/token", nil).Body.String())
}

func TestJSONGates(t *testing.T) {
	r, _ := newRouter(t)
	usuario := get(r, "/login-as/usuario", nil).Result().Cookies()
	admin := get(r, "/login-as/admin", nil).Result().Cookies()

	assert.Equal(t, http.StatusUnauthorized, get(r, "/ui/api/any", nil).Code)
	assert.Equal(t, http.StatusOK, get(r, "/ui/api/any", usuario).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/ui/api/admin", usuario).Code)
	assert.Equal(t, http.StatusOK, get(r, "/ui/api/admin", admin).Code)
}

func TestCurrentUserAbsent(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background())
	_, ok := CurrentUser(c)
	assert.False(t, ok)
}
