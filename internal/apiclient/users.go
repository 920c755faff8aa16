package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"simplegest/internal/model"
)

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, "/api/usuarios", Options{}, &raw); err != nil {
		return nil, err
	}
	users, err := decodeList[model.User](raw)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// DeleteUser removes an account and returns the backend's {msg}
func (c *Client) DeleteUser(ctx context.Context, id string) (string, error) {
	var res struct {
		Msg string `json:"msg"`
	}
	err := c.Do(ctx, "/api/usuarios/"+url.PathEscape(id), Options{Method: http.MethodDelete}, &res)
	return res.Msg, err
}
