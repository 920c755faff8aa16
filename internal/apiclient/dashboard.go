package apiclient

import (
	"context"

	"simplegest/internal/model"
)

func (c *Client) DashboardSummary(ctx context.Context) (model.DashboardSummary, error) {
	var summary model.DashboardSummary
	err := c.Do(ctx, "/api/dashboard/resumen", Options{}, &summary)
	return summary, err
}
