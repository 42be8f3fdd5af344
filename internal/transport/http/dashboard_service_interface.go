package http

import (
	"context"

	"ecomdash/internal/services"
	"ecomdash/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations the handlers use
type DashboardServiceInterface interface {
	Dashboard(ctx context.Context, q services.DashboardQuery) (*domain.Dashboard, error)
	Range(ctx context.Context) (domain.DatasetInfo, error)
	Daily(ctx context.Context, q services.DashboardQuery) ([]domain.DailyOrders, error)
	Categories(ctx context.Context, q services.DashboardQuery) (*services.CategoryRanking, error)
	Reviews(ctx context.Context, q services.DashboardQuery) ([]domain.ReviewPreference, error)
}
