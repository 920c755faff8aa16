package handler

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"simplegest/internal/model"
	"simplegest/internal/service"
	"simplegest/internal/session"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	base
	userService  service.UserService
	auditService service.AuditService
}

func NewAuthHandler(sessions *session.Manager, userService service.UserService, auditService service.AuditService) *AuthHandler {
	return &AuthHandler{base: newBase(sessions), userService: userService, auditService: auditService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/", h.Root)
	router.GET("/login", h.LoginPage)
	router.POST("/login", h.Login)
	router.GET("/logout", h.Logout)
	router.POST("/logout", h.Logout)
}

// Root sends visitors to the login screen
func (h *AuthHandler) Root(c *gin.Context) {
	c.Redirect(http.StatusFound, "/login")
}

// LoginPage renders the login form without the application chrome
func (h *AuthHandler) LoginPage(c *gin.Context) {
	p := h.page(c, "/login", gin.H{"Username": c.Query("usuario")})
	p.Title = "Iniciar sesión"
	p.Nav = nil
	c.HTML(http.StatusOK, "login", p)
}

// Login authenticates against the backend. On success the token and user are kept
// in the session; on failure nothing is stored.
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginUserRequest
	if err := c.ShouldBind(&req); err != nil {
		h.failure(c, "Ingrese usuario y contraseña")
		h.retryLogin(c)
		return
	}

	token, user, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		h.failure(c, service.UserMessage(err, "Error al iniciar sesión"))
		h.retryLogin(c)
		return
	}

	if err := h.sessions.Login(c, token, user); err != nil {
		log.Printf("login: store session for %s: %v", user.Username, err)
		h.failure(c, "No se pudo iniciar la sesión")
		h.retryLogin(c)
		return
	}

	h.success(c, "Bienvenido, "+user.DisplayName())
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// retryLogin returns to the login form with the typed username filled in
func (h *AuthHandler) retryLogin(c *gin.Context) {
	target := "/login"
	if username := strings.TrimSpace(c.PostForm("username")); username != "" {
		target += "?" + url.Values{"usuario": {username}}.Encode()
	}
	c.Redirect(http.StatusSeeOther, target)
}

// Logout clears the session and returns to the login screen
func (h *AuthHandler) Logout(c *gin.Context) {
	if user, ok := h.sessions.CurrentUser(c); ok {
		h.auditService.Record(c.Request.Context(), service.AuditEntry{
			Username: user.Username,
			Action:   model.ActionLogout,
			EntityID: user.Username,
		})
	}
	if err := h.sessions.Logout(c); err != nil {
		log.Printf("logout: %v", err)
	}
	c.Redirect(http.StatusSeeOther, "/login")
}
