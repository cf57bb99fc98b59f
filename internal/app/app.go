package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"bikepulse/internal/config"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/infrastructure"
	customMiddleware "bikepulse/internal/middleware"
	"bikepulse/internal/services"
	"bikepulse/internal/snapshot"
	handlers "bikepulse/internal/transport/http"
	"bikepulse/pkg/contracts"
)

// AppName is shown in startup logs and the console banner
const AppName = "BikePulse - BikePoint Data Review"

// Application represents the report server container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Report        *services.ReportService
	Health        *services.HealthService
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics

	errorHandler *apierrors.ErrorHandler
	listener     net.Listener
	openBrowser  func(ctx context.Context, url string) error
	capture      func(ctx context.Context, opts snapshot.Options) error
}

// NewApplication loads configuration from configPath (or the default
// locations), initialises logging and telemetry and wires the server
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	return New(cfg, logger, otelProviders)
}

// New wires an application from already-initialised dependencies
func New(cfg *config.Config, logger *slog.Logger, otelProviders *infrastructure.OTelProviders) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	paths := cfg.ArtifactPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	metrics, err := infrastructure.NewPipelineMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	report := services.NewReportService(paths, logger)
	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		Report:        report,
		Health:        services.NewHealthService(report, logger),
		OTelProviders: otelProviders,
		Metrics:       metrics,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Level == "debug"),
		openBrowser:   OpenBrowser,
		capture:       snapshot.New(logger).Capture,
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

// setupRouter registers middleware and routes.
// Order: RequestID → RealIP → OTel → Logger → Recoverer → headers → rate limit
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.errorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	if a.Config.Server.RateLimitRPS > 0 {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Server.RateLimitRPS,
			a.Config.Server.RateLimitBurst,
			a.Logger,
			a.errorHandler,
		).Handler)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	pages := handlers.NewPageHandler(a.Report, a.Logger, a.errorHandler)
	r.Get("/", pages.ServeReport)
	r.Get("/maps/stations", pages.ServeStationMap)
	r.Get("/maps/expansion", pages.ServeExpansionMap)

	a.setupAPIRoutes(r)

	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	a.Router = r
}

// setupAPIRoutes configures the JSON API
func (a *Application) setupAPIRoutes(r chi.Router) {
	health := handlers.NewHealthHandler(a.Health, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.HealthCheck)
		r.Get("/health/live", health.LivenessCheck)
		r.Get("/version", health.Version)

		r.Mount("/charts", handlers.NewChartHandler(a.Report, a.Logger, a.errorHandler).Routes())
		r.Mount("/data", handlers.NewDataHandler(a.Report, a.Logger, a.errorHandler).Routes())
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start loads the report data, begins serving and, when configured, opens
// a browser tab once /api/health answers. A serve failure calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Config.Address()),
		slog.String("level", a.Config.Logging.Level))

	if err := a.Report.Load(ctx); err != nil {
		return fmt.Errorf("failed to load report data: %w", err)
	}

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("url", a.URL()))

	if a.Config.Report.OpenBrowser {
		go a.launchBrowser(ctx)
	}
	return nil
}

// URL returns the address the server is reachable on. Before Start it is
// the configured address; afterwards the actual listener address.
func (a *Application) URL() string {
	if a.listener != nil {
		return fmt.Sprintf("http://%s/", a.listener.Addr().String())
	}
	return a.Config.BaseURL()
}

// WaitReady polls /api/health until it answers 200 or the startup timeout
// passes
func (a *Application) WaitReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.Config.Report.StartupTimeout)
	defer cancel()

	healthURL := a.URL() + "api/health"
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				a.Logger.DebugContext(ctx, "Server is ready", slog.Int("attempts", attempt))
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("server not ready after %d attempts: %w", attempt, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (a *Application) launchBrowser(ctx context.Context) {
	if err := a.WaitReady(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "Server did not become ready for browser opening",
			slog.String("url", a.URL()),
			slog.String("error", err.Error()))
		return
	}

	url := a.URL()
	if err := a.openBrowser(ctx, url); err != nil {
		a.Logger.WarnContext(ctx, "Failed to open browser",
			slog.String("error", err.Error()),
			slog.String("url", url))
		fmt.Printf("\nBikePulse is running. Open %s in your browser.\n\n", url)
		return
	}
	a.Logger.InfoContext(ctx, "Browser opened", slog.String("url", url))
}

// Stop gracefully shuts down the server and telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run starts the application and blocks until SIGINT/SIGTERM or a server
// failure, then shuts down
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
