package service

import (
	"context"
	"errors"
	"testing"

	"simplegest/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDashboard(t *testing.T) {
	api := newFakeBackend()
	api.summary = model.DashboardSummary{TotalArticles: 3, TotalRequests: 4, PendingLoans: 1, Delivered: 2}
	api.articles = []model.Article{{Code: "a", Stock: 2}, {Code: "b", Stock: 50}, {Code: "c", Stock: 5}}
	svc := NewStatisticsService(api)

	dash, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, api.summary, dash.Summary)
	require.Len(t, dash.LowStock, 2)
	assert.Equal(t, "a", dash.LowStock[0].Code)
}

func TestGetDashboardPartialFailure(t *testing.T) {
	api := newFakeBackend()
	api.fail["DashboardSummary"] = errors.New("down")
	api.articles = []model.Article{{Code: "a", Stock: 1}}
	svc := NewStatisticsService(api)

	dash, err := svc.GetDashboard(context.Background())
	require.Error(t, err)
	assert.Zero(t, dash.Summary)
	assert.Len(t, dash.LowStock, 1)
}

func TestGetCategories(t *testing.T) {
	api := newFakeBackend()
	api.articles = []model.Article{{Code: "a", Stock: 2, RecordType: model.RecordTypeMaterial}}
	svc := NewStatisticsService(api)

	cats, err := svc.GetCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, 1, cats[0].Articles)

	api.fail["ListArticles"] = errors.New("down")
	cats, err = svc.GetCategories(context.Background())
	require.Error(t, err)
	assert.Len(t, cats, 2, "known record types are still listed")
}
