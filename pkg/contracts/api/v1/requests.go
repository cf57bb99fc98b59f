// Package api contains API contract definitions for the BikePulse report server.
// Version v1 represents the current stable API version.
package api

import (
	"bikepulse/pkg/contracts/domain"
)

// ChartRequest selects the metric plotted by a dropdown-driven chart
type ChartRequest struct {
	Metric domain.Metric `json:"metric" query:"metric" validate:"required"`
}

// HealthResponse is returned by GET /api/health
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Profiles int    `json:"profiles"`
	Stations int    `json:"stations"`
	LoadedAt string `json:"loaded_at"`
}

// ProfilesResponse is returned by GET /api/data/profiles
type ProfilesResponse struct {
	Count    int                  `json:"count"`
	Profiles []domain.AreaProfile `json:"profiles"`
}

// ChartOptionsResponse lists the metrics a dropdown may select
type ChartOptionsResponse struct {
	Chart   domain.ChartKind `json:"chart"`
	Default domain.Metric    `json:"default"`
	Options []domain.Metric  `json:"options"`
}
