package service

import (
	"context"
	"errors"
	"fmt"

	"simplegest/internal/model"
)

type DashboardAPI interface {
	DashboardSummary(ctx context.Context) (model.DashboardSummary, error)
	ListArticles(ctx context.Context) ([]model.Article, error)
}

// Dashboard is the admin landing page: backend counts plus the low-stock articles
type Dashboard struct {
	Summary  model.DashboardSummary `json:"resumen"`
	LowStock []model.Article        `json:"stockBajo"`
}

type StatisticsService interface {
	// GetDashboard loads both halves independently; a failed half stays empty and
	// its error is joined into the returned error.
	GetDashboard(ctx context.Context) (Dashboard, error)
	GetCategories(ctx context.Context) ([]model.CategorySummary, error)
}

type statisticsService struct {
	api DashboardAPI
}

func NewStatisticsService(api DashboardAPI) StatisticsService {
	return &statisticsService{api: api}
}

func (s *statisticsService) GetDashboard(ctx context.Context) (Dashboard, error) {
	var dash Dashboard
	var errs []error

	summary, err := s.api.DashboardSummary(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("dashboard summary: %w", err))
	} else {
		dash.Summary = summary
	}

	articles, err := s.api.ListArticles(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("list articles: %w", err))
	}
	dash.LowStock = LowStock(articles)

	return dash, errors.Join(errs...)
}

func (s *statisticsService) GetCategories(ctx context.Context) ([]model.CategorySummary, error) {
	articles, err := s.api.ListArticles(ctx)
	if err != nil {
		return CategorySummaries(nil), fmt.Errorf("list articles: %w", err)
	}
	return CategorySummaries(articles), nil
}
