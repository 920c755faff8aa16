package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"simplegest/internal/apiclient"
	"simplegest/internal/model"
	"simplegest/pkg/search"
)

// ErrInvalidLoginResponse is returned when the backend accepts a login without a token or user
var ErrInvalidLoginResponse = errors.New("respuesta de inicio de sesión inválida")

type UserAPI interface {
	Login(ctx context.Context, creds apiclient.Credentials) (apiclient.LoginResponse, error)
	Register(ctx context.Context, user model.User) (apiclient.RegisterResponse, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, id string) (string, error)
}

// CreateUserRequest is the Usuarios form
type CreateUserRequest struct {
	FullName string `form:"nombrecompleto" json:"nombrecompleto"`
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Role     string `form:"rol" json:"rol"`
}

// LoginUserRequest is the login form
type LoginUserRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type UserService interface {
	Login(ctx context.Context, req LoginUserRequest) (string, model.SessionUser, error)
	Register(ctx context.Context, actor string, req CreateUserRequest) (string, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, actor, id string) (string, error)
}

type userService struct {
	api   UserAPI
	audit AuditService
}

func NewUserService(api UserAPI, audit AuditService) UserService {
	return &userService{api: api, audit: audit}
}

func validateRole(role string) bool {
	return role == model.RoleAdmin || role == model.RoleUsuario
}

// FilterUsers searches full name, username and role
func FilterUsers(users []model.User, query string) []model.User {
	return search.Filter(users, query, func(u model.User) []string {
		return []string{u.FullName, u.Username, u.Role}
	})
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (string, model.SessionUser, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return "", model.SessionUser{}, invalid("Ingrese usuario y contraseña")
	}

	res, err := s.api.Login(ctx, apiclient.Credentials{Username: username, Password: req.Password})
	if err != nil {
		return "", model.SessionUser{}, fmt.Errorf("login: %w", err)
	}
	if res.Token == "" || res.User == nil {
		return "", model.SessionUser{}, ErrInvalidLoginResponse
	}

	user := model.SessionUser{
		Username: res.User.Username,
		Role:     res.User.Role,
		FullName: res.User.FullName,
	}
	if user.Username == "" {
		user.Username = username
	}

	s.audit.Record(ctx, AuditEntry{
		Username:   user.Username,
		Action:     model.ActionLogin,
		EntityID:   user.Username,
		EntityName: user.DisplayName(),
		Details:    map[string]string{"rol": user.Role},
	})
	return res.Token, user, nil
}

func (s *userService) Register(ctx context.Context, actor string, req CreateUserRequest) (string, error) {
	user := model.User{
		FullName: strings.TrimSpace(req.FullName),
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
		Role:     strings.TrimSpace(req.Role),
	}
	if user.Role == "" {
		user.Role = model.RoleUsuario
	}
	switch {
	case user.FullName == "":
		return "", invalid("El nombre completo es obligatorio")
	case user.Username == "":
		return "", invalid("El usuario es obligatorio")
	case user.Password == "":
		return "", invalid("La contraseña es obligatoria")
	case !validateRole(user.Role):
		return "", invalid("Rol no válido")
	}

	res, err := s.api.Register(ctx, user)
	if err != nil {
		return "", fmt.Errorf("register user: %w", err)
	}

	entityID := user.Username
	if res.User != nil && res.User.ID != "" {
		entityID = res.User.ID
	}
	s.audit.Record(ctx, AuditEntry{
		Username:   actor,
		Action:     model.ActionRegisterUser,
		EntityID:   entityID,
		EntityName: user.Username,
		Details:    map[string]string{"nombrecompleto": user.FullName, "rol": user.Role},
	})

	if res.Message == "" {
		return "Usuario registrado correctamente", nil
	}
	return res.Message, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) DeleteUser(ctx context.Context, actor, id string) (string, error) {
	if id == "" {
		return "", &NotFoundError{What: "Usuario"}
	}
	msg, err := s.api.DeleteUser(ctx, id)
	if err != nil {
		return "", fmt.Errorf("delete user: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{
		Username: actor,
		Action:   model.ActionDeleteUser,
		EntityID: id,
		Details:  map[string]bool{"deleted": true},
	})

	if msg == "" {
		return "Usuario eliminado", nil
	}
	return msg, nil
}
