package handler

import (
	"simplegest/internal/middleware"
	"simplegest/internal/model"
	"simplegest/internal/service"
	"simplegest/internal/session"
	"simplegest/pkg/pagination"

	"github.com/gin-gonic/gin"
)

const usuariosPageSize = 4

type UserHandler struct {
	base
	userService service.UserService
}

// NewUserHandler sets up the Usuarios screen
func NewUserHandler(sessions *session.Manager, userService service.UserService) *UserHandler {
	return &UserHandler{base: newBase(sessions), userService: userService}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/usuarios")
	users.Use(middleware.RequireAdmin())
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.POST("/:id/eliminar", h.DeleteUser)
	}
}

type usersView struct {
	Users     pagination.Page[model.User]
	Pager     Pager
	Roles     []string
	Form      userForm
	ConfirmID string
	Error     string
}

// userForm refills the registration form. The password is never kept.
type userForm struct {
	FullName string
	Username string
	Role     string
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	params := pagination.Parse(c)
	view := usersView{
		Roles:     []string{model.RoleUsuario, model.RoleAdmin},
		Form:      userForm{Role: model.RoleUsuario},
		ConfirmID: c.Query("confirmar"),
	}
	if kept, ok := h.sessions.TakeForm(c, "usuarios"); ok {
		view.Form = userForm{
			FullName: kept.Get("nombrecompleto"),
			Username: kept.Get("username"),
			Role:     kept.Get("rol"),
		}
	}

	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		view.Error = service.UserMessage(err, "No se pudieron cargar los usuarios")
	}

	view.Users = pagination.Paginate(service.FilterUsers(users, params.Query), params.Page, usuariosPageSize)
	view.Pager = newPager("/usuarios", params, view.Users)
	h.render(c, "usuarios", "/usuarios", view)
}

// CreateUser registers an account; the list is fetched again on redirect
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		h.keep(c, "usuarios", "", "password")
		h.failure(c, "Datos del usuario inválidos")
		h.back(c, "/usuarios")
		return
	}

	msg, err := h.userService.Register(c.Request.Context(), h.actor(c), req)
	if err != nil {
		h.keep(c, "usuarios", "", "password")
		h.failure(c, service.UserMessage(err, "Error al registrar el usuario"))
		h.back(c, "/usuarios")
		return
	}
	h.success(c, msg)
	h.back(c, "/usuarios")
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if !confirmed(c) {
		h.back(c, "/usuarios")
		return
	}
	msg, err := h.userService.DeleteUser(c.Request.Context(), h.actor(c), c.Param("id"))
	if err != nil {
		h.failure(c, service.UserMessage(err, "Error al eliminar el usuario"))
		h.back(c, "/usuarios")
		return
	}
	h.success(c, msg)
	h.back(c, "/usuarios")
}
