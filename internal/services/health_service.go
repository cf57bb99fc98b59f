package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"bikepulse/pkg/contracts"
	apiv1 "bikepulse/pkg/contracts/api/v1"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	report    *ReportService
	startTime time.Time
	logger    *slog.Logger
}

// LivenessStatus represents the liveness response
type LivenessStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(report *ReportService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   contracts.Version,
		report:    report,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck reports "ok" once the report data is loaded and "loading"
// before that
func (hs *HealthService) HealthCheck(ctx context.Context) apiv1.HealthResponse {
	resp := apiv1.HealthResponse{
		Status:  "loading",
		Version: hs.version,
	}
	if hs.report != nil && hs.report.Loaded() {
		profiles, _ := hs.report.Profiles(ctx)
		stations, _ := hs.report.Stations(ctx)
		resp.Status = "ok"
		resp.Profiles = len(profiles)
		resp.Stations = len(stations)
		resp.LoadedAt = hs.report.LoadedAt().Format(time.RFC3339)
	}

	hs.logger.DebugContext(ctx, "health check",
		slog.String("status", resp.Status),
		slog.Int("profiles", resp.Profiles))
	return resp
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) LivenessStatus {
	return LivenessStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":    info.Version,
		"build_time": info.BuildTime,
		"git_commit": info.GitCommit,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
	}
}
