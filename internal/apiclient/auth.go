package apiclient

import (
	"context"
	"net/http"

	"simplegest/internal/model"
)

// Credentials is the login payload
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the backend answer to a successful login
type LoginResponse struct {
	Token string `json:"token"`
	User  *struct {
		Username string `json:"username"`
		Role     string `json:"rol"`
		FullName string `json:"nombrecompleto"`
	} `json:"user"`
}

// RegisterResponse is the backend answer to a user registration
type RegisterResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"usuario,omitempty"`
}

// Login authenticates against POST /api/auth/login
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResponse, error) {
	var res LoginResponse
	err := c.Do(ctx, "/api/auth/login", Options{Method: http.MethodPost, Body: creds}, &res)
	return res, err
}

// Register creates an account through POST /api/auth/register
func (c *Client) Register(ctx context.Context, user model.User) (RegisterResponse, error) {
	var res RegisterResponse
	err := c.Do(ctx, "/api/auth/register", Options{Method: http.MethodPost, Body: user}, &res)
	return res, err
}
