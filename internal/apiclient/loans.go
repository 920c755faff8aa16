package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"simplegest/internal/model"
)

func (c *Client) ListLoans(ctx context.Context) ([]model.Loan, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, "/api/prestamos", Options{}, &raw); err != nil {
		return nil, err
	}
	return decodeList[model.Loan](raw)
}

func (c *Client) CreateLoan(ctx context.Context, l model.Loan) (model.Loan, error) {
	l.ID = ""
	var created model.Loan
	err := c.Do(ctx, "/api/prestamos", Options{Method: http.MethodPost, Body: l}, &created)
	return created, err
}

func (c *Client) UpdateLoan(ctx context.Context, id string, d model.LoanDelivery) (model.Loan, error) {
	var updated model.Loan
	err := c.Do(ctx, "/api/prestamos/"+url.PathEscape(id), Options{Method: http.MethodPut, Body: d}, &updated)
	return updated, err
}
