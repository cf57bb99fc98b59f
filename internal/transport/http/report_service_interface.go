package http

import (
	"context"

	apiv1 "bikepulse/pkg/contracts/api/v1"
	"bikepulse/pkg/contracts/domain"
)

// ReportServiceInterface defines the report operations the handlers need
type ReportServiceInterface interface {
	Profiles(ctx context.Context) ([]domain.AreaProfile, error)
	Stations(ctx context.Context) ([]domain.Station, error)
	Sites(ctx context.Context) ([]domain.CandidateSite, error)
	Chart(ctx context.Context, kind domain.ChartKind, metric domain.Metric) (*domain.BarChart, error)
	ChartOptions(ctx context.Context, kind domain.ChartKind) (*apiv1.ChartOptionsResponse, error)
	ModelDataPath() string
}
