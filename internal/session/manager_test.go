package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simplegest/internal/model"
)

func newTestManager(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := NewMemoryStore()
	m, err := NewManager(store, Options{Secret: "test-secret", TTL: time.Hour})
	require.NoError(t, err)
	return m, store
}

func do(r *gin.Engine, method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestLoginPersistsAcrossRequests(t *testing.T) {
	m, _ := newTestManager(t)
	r := gin.New()
	r.POST("/login", func(c *gin.Context) {
		require.NoError(t, m.Login(c, "tok", model.SessionUser{Username: "ana", Role: model.RoleAdmin}))
		c.Status(http.StatusNoContent)
	})
	r.GET("/me", func(c *gin.Context) {
		user, ok := m.CurrentUser(c)
		if !ok {
			c.String(http.StatusUnauthorized, "")
			return
		}
		c.String(http.StatusOK, user.Username+"|"+m.Token(c))
	})

	login := do(r, http.MethodPost, "/login", nil)
	cookies := login.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	me := do(r, http.MethodGet, "/me", cookies)
	assert.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "ana|tok", me.Body.String())

	anon := do(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, anon.Code)
}

func TestTamperedCookieIsAnonymous(t *testing.T) {
	m, _ := newTestManager(t)
	r := gin.New()
	r.GET("/me", func(c *gin.Context) {
		_, ok := m.CurrentUser(c)
		c.JSON(http.StatusOK, ok)
	})

	rec := do(r, http.MethodGet, "/me", []*http.Cookie{{Name: CookieName, Value: "not-a-jwt"}})
	assert.Equal(t, "false", rec.Body.String())

	other, err := NewManager(NewMemoryStore(), Options{Secret: "other"})
	require.NoError(t, err)
	r2 := gin.New()
	r2.GET("/set", func(c *gin.Context) {
		require.NoError(t, other.Login(c, "tok", model.SessionUser{Username: "x"}))
	})
	foreign := do(r2, http.MethodGet, "/set", nil).Result().Cookies()
	rec = do(r, http.MethodGet, "/me", foreign)
	assert.Equal(t, "false", rec.Body.String())
}

func TestLoggedInRequiresTokenAndUser(t *testing.T) {
	m, _ := newTestManager(t)
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		require.NoError(t, m.Login(c, "", model.SessionUser{Username: "ana"}))
		_, ok := m.CurrentUser(c)
		assert.False(t, ok)
		assert.Empty(t, m.Token(c))
	})
	do(r, http.MethodGet, "/", nil)
}

func TestFlashesAreReturnedOnce(t *testing.T) {
	m, _ := newTestManager(t)
	r := gin.New()
	r.GET("/add", func(c *gin.Context) {
		m.AddFlash(c, FlashSuccess, "Solicitud enviada")
		m.AddFlash(c, FlashError, "otro")
	})
	var got []Flash
	r.GET("/read", func(c *gin.Context) {
		got = m.Flashes(c)
	})

	cookies := do(r, http.MethodGet, "/add", nil).Result().Cookies()
	do(r, http.MethodGet, "/read", cookies)
	assert.Equal(t, []Flash{{FlashSuccess, "Solicitud enviada"}, {FlashError, "otro"}}, got)

	do(r, http.MethodGet, "/read", cookies)
	assert.Empty(t, got)
}

func TestLogoutDropsSession(t *testing.T) {
	m, store := newTestManager(t)
	r := gin.New()
	r.GET("/login", func(c *gin.Context) {
		require.NoError(t, m.Login(c, "tok", model.SessionUser{Username: "ana"}))
	})
	r.GET("/logout", func(c *gin.Context) {
		require.NoError(t, m.Logout(c))
		_, ok := m.CurrentUser(c)
		assert.False(t, ok)
	})

	cookies := do(r, http.MethodGet, "/login", nil).Result().Cookies()
	require.Len(t, store.entries, 1)

	rec := do(r, http.MethodGet, "/logout", cookies)
	assert.Empty(t, store.entries)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.True(t, cleared[0].MaxAge < 0)
}

func TestDraftPendingAndAvailability(t *testing.T) {
	m, _ := newTestManager(t)
	r := gin.New()
	r.GET("/write", func(c *gin.Context) {
		m.SetDraft(c, model.NewRequest{RequesterName: "Ana"})
		m.SetPendingMaterials(c, []model.PendingMaterial{{ArticleID: "a1", Name: "Cable", Quantity: 2}})
		m.SetAvailability(c, "r1", 0, false)
	})
	r.GET("/check", func(c *gin.Context) {
		assert.Equal(t, "Ana", m.Draft(c).RequesterName)
		assert.Equal(t, []model.PendingMaterial{{ArticleID: "a1", Name: "Cable", Quantity: 2}}, m.PendingMaterials(c))
		assert.Equal(t, map[string]bool{"r1:0": false}, m.Availability(c))
		m.ClearDraft(c)
		assert.Empty(t, m.Draft(c).RequesterName)
		assert.Empty(t, m.PendingMaterials(c))
	})

	cookies := do(r, http.MethodGet, "/write", nil).Result().Cookies()
	do(r, http.MethodGet, "/check", cookies)
}

func TestKeptFormIsReturnedOnce(t *testing.T) {
	m, _ := newTestManager(t)
	r := gin.New()
	r.GET("/write", func(c *gin.Context) {
		m.KeepForm(c, "registro", KeptForm{ID: "a1", Values: map[string][]string{"nombreArticulo": {"Taladro"}}})
	})
	r.GET("/check", func(c *gin.Context) {
		_, ok := m.TakeForm(c, "prestamos")
		assert.False(t, ok)

		form, ok := m.TakeForm(c, "registro")
		require.True(t, ok)
		assert.Equal(t, "a1", form.ID)
		assert.Equal(t, "Taladro", form.Get("nombreArticulo"))
		assert.Empty(t, form.Get("stock"))

		_, ok = m.TakeForm(c, "registro")
		assert.False(t, ok)
	})

	cookies := do(r, http.MethodGet, "/write", nil).Result().Cookies()
	do(r, http.MethodGet, "/check", cookies)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", []byte("x"), now.Add(time.Minute)))
	require.NoError(t, store.Save(ctx, "b", []byte("y"), now.Add(time.Hour)))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Sweep())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, store.Sweep())
}

func TestDeriveKey(t *testing.T) {
	a, err := deriveKey("one")
	require.NoError(t, err)
	b, err := deriveKey("one")
	require.NoError(t, err)
	c, err := deriveKey("two")
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager(NewMemoryStore(), Options{})
	assert.Error(t, err)
}
