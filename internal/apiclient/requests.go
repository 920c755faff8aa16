package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"simplegest/internal/model"
)

// ListRequests reads GET /api/solicitudes
func (c *Client) ListRequests(ctx context.Context) ([]model.Request, error) {
	return c.listRequests(ctx, "/api/solicitudes")
}

// ListAllRequests reads GET /api/solicitudes/todas, the approval panel's feed
func (c *Client) ListAllRequests(ctx context.Context) ([]model.Request, error) {
	return c.listRequests(ctx, "/api/solicitudes/todas")
}

func (c *Client) listRequests(ctx context.Context, endpoint string) ([]model.Request, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, endpoint, Options{}, &raw); err != nil {
		return nil, err
	}
	return decodeList[model.Request](raw)
}

func (c *Client) CreateRequest(ctx context.Context, r model.NewRequest) (model.Request, error) {
	var created model.Request
	err := c.Do(ctx, "/api/solicitudes", Options{Method: http.MethodPost, Body: r}, &created)
	return created, err
}

func (c *Client) UpdateRequestStatus(ctx context.Context, id string, status model.RequestStatus) (model.Request, error) {
	var updated model.Request
	body := map[string]model.RequestStatus{"estado": status}
	err := c.Do(ctx, "/api/solicitudes/"+url.PathEscape(id)+"/estado", Options{Method: http.MethodPut, Body: body}, &updated)
	return updated, err
}

func (c *Client) UpdateRequestMaterial(ctx context.Context, id string, index, quantity int) (model.Request, error) {
	var updated model.Request
	endpoint := "/api/solicitudes/" + url.PathEscape(id) + "/materiales/" + strconv.Itoa(index)
	body := map[string]int{"cantidad": quantity}
	err := c.Do(ctx, endpoint, Options{Method: http.MethodPut, Body: body}, &updated)
	return updated, err
}

func (c *Client) DeleteRequest(ctx context.Context, id string) error {
	return c.Do(ctx, "/api/solicitudes/"+url.PathEscape(id), Options{Method: http.MethodDelete}, nil)
}
