package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bikepulse/internal/config"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/report"
	apiv1 "bikepulse/pkg/contracts/api/v1"
	"bikepulse/pkg/contracts/domain"
)

// ReportService serves the loaded combined table. Load must complete before
// the first request; after that the service is read-only and safe for
// concurrent use.
type ReportService struct {
	paths  *config.Paths
	logger *slog.Logger

	loaded   bool
	loadedAt time.Time
	profiles []domain.AreaProfile
	complete []domain.AreaProfile
	stations []domain.Station
	sites    []domain.CandidateSite
}

// NewReportService creates a report service reading from paths
func NewReportService(paths *config.Paths, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		paths:  paths,
		logger: logger.With(slog.String("service", "report")),
	}
}

// Load reads the combined table, the station list and the candidate sites
func (s *ReportService) Load(ctx context.Context) error {
	start := time.Now()

	profiles, err := report.LoadProfiles(s.paths.ModelDataCSV)
	if err != nil {
		return fmt.Errorf("load combined table: %w", err)
	}
	if len(profiles) == 0 {
		return apierrors.NewAppValidationError(s.paths.ModelDataCSV+" has no rows", ErrNoData)
	}

	stations, err := report.LoadStations(s.paths.StationsCSV)
	if err != nil {
		return fmt.Errorf("load stations: %w", err)
	}

	sites, err := report.CandidateSites()
	if err != nil {
		return err
	}

	s.profiles = profiles
	s.complete = report.CompleteCases(profiles)
	s.stations = stations
	s.sites = sites
	s.loadedAt = time.Now()
	s.loaded = true

	s.logger.InfoContext(ctx, "report data loaded",
		slog.Int("profiles", len(profiles)),
		slog.Int("complete_profiles", len(s.complete)),
		slog.Int("stations", len(stations)),
		slog.Int("sites", len(sites)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Loaded reports whether Load has succeeded
func (s *ReportService) Loaded() bool {
	return s.loaded
}

// LoadedAt returns when the tables were loaded
func (s *ReportService) LoadedAt() time.Time {
	return s.loadedAt
}

// Profiles returns the combined table
func (s *ReportService) Profiles(ctx context.Context) ([]domain.AreaProfile, error) {
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	return s.profiles, nil
}

// Stations returns the station list
func (s *ReportService) Stations(ctx context.Context) ([]domain.Station, error) {
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	return s.stations, nil
}

// Sites returns the candidate expansion sites
func (s *ReportService) Sites(ctx context.Context) ([]domain.CandidateSite, error) {
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	return s.sites, nil
}

// Chart recomputes the named chart for metric over the loaded rows that
// have every figure
func (s *ReportService) Chart(ctx context.Context, kind domain.ChartKind, metric domain.Metric) (*domain.BarChart, error) {
	spec, err := report.LookupChart(kind)
	if err != nil {
		return nil, err
	}
	if !s.loaded {
		return nil, ErrNotLoaded
	}

	chart, err := spec.Build(s.complete, metric)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "chart computed",
		slog.String("chart", string(kind)),
		slog.String("metric", string(chart.Metric)))
	return chart, nil
}

// ChartOptions lists the dropdown options of the named chart
func (s *ReportService) ChartOptions(ctx context.Context, kind domain.ChartKind) (*apiv1.ChartOptionsResponse, error) {
	spec, err := report.LookupChart(kind)
	if err != nil {
		return nil, err
	}
	return &apiv1.ChartOptionsResponse{
		Chart:   spec.Kind,
		Default: spec.Default,
		Options: spec.Options,
	}, nil
}

// ModelDataPath is the file served by the download endpoint
func (s *ReportService) ModelDataPath() string {
	return s.paths.ModelDataCSV
}
