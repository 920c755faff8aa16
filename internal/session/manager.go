// Package session keeps the logged-in user, the backend token and transient UI state
// on the server. The browser only holds a signed cookie naming the session.
package session

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"simplegest/internal/model"
)

const (
	CookieName = "simplegest_session"
	DefaultTTL = 24 * time.Hour

	contextKey = "simplegest.session"
	keyInfo    = "simplegest session cookie v1"
)

// Options configures a Manager
type Options struct {
	Secret string
	TTL    time.Duration
	// Secure marks the cookie HTTPS-only
	Secure bool
}

// Manager reads and writes sessions for gin requests
type Manager struct {
	store  Store
	key    []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

type entry struct {
	id   string
	data Data
	// sent is set once the cookie has been written for this request
	sent bool
}

func NewManager(store Store, opts Options) (*Manager, error) {
	if opts.Secret == "" {
		return nil, errors.New("session secret is required")
	}
	key, err := deriveKey(opts.Secret)
	if err != nil {
		return nil, err
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: store, key: key, ttl: ttl, secure: opts.Secure, now: time.Now}, nil
}

func deriveKey(secret string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return key, nil
}

// Load resolves the session cookie and attaches the session to the context.
// A missing, tampered or expired cookie yields an empty anonymous session.
func (m *Manager) Load(c *gin.Context) {
	e := &entry{}
	if id, ok := m.readCookie(c); ok {
		payload, err := m.store.Get(c.Request.Context(), id)
		switch {
		case err == nil:
			if err := json.Unmarshal(payload, &e.data); err != nil {
				log.Printf("session: discarding undecodable session %s: %v", id, err)
			} else {
				e.id = id
			}
		case !errors.Is(err, ErrNotFound):
			log.Printf("session: load %s: %v", id, err)
		}
	}
	c.Set(contextKey, e)
}

func (m *Manager) entry(c *gin.Context) *entry {
	if v, ok := c.Get(contextKey); ok {
		if e, ok := v.(*entry); ok {
			return e
		}
	}
	m.Load(c)
	v, _ := c.Get(contextKey)
	return v.(*entry)
}

func (m *Manager) save(c *gin.Context, e *entry) error {
	if e.id == "" {
		e.id = uuid.NewString()
	}
	payload, err := json.Marshal(e.data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	expiresAt := m.now().Add(m.ttl)
	if err := m.store.Save(c.Request.Context(), e.id, payload, expiresAt); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if e.sent {
		return nil
	}
	if err := m.writeCookie(c, e.id, expiresAt); err != nil {
		return err
	}
	e.sent = true
	return nil
}

func (m *Manager) persist(c *gin.Context, e *entry) {
	if err := m.save(c, e); err != nil {
		log.Printf("session: %v", err)
	}
}

// CurrentUser returns the logged-in user
func (m *Manager) CurrentUser(c *gin.Context) (model.SessionUser, bool) {
	e := m.entry(c)
	if !e.data.LoggedIn() {
		return model.SessionUser{}, false
	}
	return *e.data.User, true
}

// Token returns the backend bearer token, empty when logged out
func (m *Manager) Token(c *gin.Context) string {
	e := m.entry(c)
	if !e.data.LoggedIn() {
		return ""
	}
	return e.data.Token
}

// Login replaces the current session with a fresh one holding token and user
func (m *Manager) Login(c *gin.Context, token string, user model.SessionUser) error {
	old := m.entry(c)
	if old.id != "" {
		if err := m.store.Delete(c.Request.Context(), old.id); err != nil {
			log.Printf("session: delete previous %s: %v", old.id, err)
		}
	}
	e := &entry{data: Data{Token: token, User: &user}}
	c.Set(contextKey, e)
	return m.save(c, e)
}

// Logout drops the session and clears the cookie
func (m *Manager) Logout(c *gin.Context) error {
	e := m.entry(c)
	var err error
	if e.id != "" {
		err = m.store.Delete(c.Request.Context(), e.id)
	}
	c.Set(contextKey, &entry{})
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", m.secure, true)
	return err
}

func (m *Manager) AddFlash(c *gin.Context, kind FlashKind, message string) {
	e := m.entry(c)
	e.data.Flashes = append(e.data.Flashes, Flash{Kind: kind, Message: message})
	m.persist(c, e)
}

// Flashes returns and clears the pending flashes
func (m *Manager) Flashes(c *gin.Context) []Flash {
	e := m.entry(c)
	flashes := e.data.Flashes
	if len(flashes) > 0 {
		e.data.Flashes = nil
		m.persist(c, e)
	}
	return flashes
}

// Draft returns the saved new-request form, or an empty one
func (m *Manager) Draft(c *gin.Context) model.NewRequest {
	e := m.entry(c)
	if e.data.Draft == nil {
		return model.NewRequest{}
	}
	return *e.data.Draft
}

func (m *Manager) SetDraft(c *gin.Context, draft model.NewRequest) {
	e := m.entry(c)
	e.data.Draft = &draft
	m.persist(c, e)
}

func (m *Manager) PendingMaterials(c *gin.Context) []model.PendingMaterial {
	return append([]model.PendingMaterial(nil), m.entry(c).data.Pending...)
}

func (m *Manager) SetPendingMaterials(c *gin.Context, pending []model.PendingMaterial) {
	e := m.entry(c)
	e.data.Pending = pending
	m.persist(c, e)
}

// ClearDraft empties both the form draft and the pending materials
func (m *Manager) ClearDraft(c *gin.Context) {
	e := m.entry(c)
	e.data.Draft = nil
	e.data.Pending = nil
	m.persist(c, e)
}

// Availability returns a copy of the per-line availability toggles
func (m *Manager) Availability(c *gin.Context) map[string]bool {
	out := make(map[string]bool)
	for k, v := range m.entry(c).data.Availability {
		out[k] = v
	}
	return out
}

func (m *Manager) SetAvailability(c *gin.Context, requestID string, index int, available bool) {
	e := m.entry(c)
	if e.data.Availability == nil {
		e.data.Availability = make(map[string]bool)
	}
	e.data.Availability[AvailabilityKey(requestID, index)] = available
	m.persist(c, e)
}

// KeepForm stores a rejected submission for the next render of screen
func (m *Manager) KeepForm(c *gin.Context, screen string, form KeptForm) {
	e := m.entry(c)
	if e.data.Forms == nil {
		e.data.Forms = make(map[string]KeptForm)
	}
	e.data.Forms[screen] = form
	m.persist(c, e)
}

// TakeForm returns and clears the submission kept for screen
func (m *Manager) TakeForm(c *gin.Context, screen string) (KeptForm, bool) {
	e := m.entry(c)
	form, ok := e.data.Forms[screen]
	if !ok {
		return KeptForm{}, false
	}
	delete(e.data.Forms, screen)
	if len(e.data.Forms) == 0 {
		e.data.Forms = nil
	}
	m.persist(c, e)
	return form, true
}

func (m *Manager) writeCookie(c *gin.Context, id string, expiresAt time.Time) error {
	claims := jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(m.now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, signed, int(m.ttl.Seconds()), "/", "", m.secure, true)
	return nil
}

func (m *Manager) readCookie(c *gin.Context) (string, bool) {
	raw, err := c.Cookie(CookieName)
	if err != nil || raw == "" {
		return "", false
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid || claims.ID == "" {
		return "", false
	}
	return claims.ID, true
}
