// Command pipeline runs the fetch and clean stages that produce the CSV
// artifacts the reporter serves.
//
//	pipeline -step=full_pipeline   fetch stations, geocode, clean (default)
//	pipeline -step=fetch           write bikepoints.csv and la_counts.csv
//	pipeline -step=clean           write model_data.csv from existing inputs
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"bikepulse/internal/config"
	"bikepulse/internal/infrastructure"
	"bikepulse/internal/operations"
	"bikepulse/pkg/contracts"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, executes the requested step and returns the exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	fs.SetOutput(stderr)
	step := fs.String("step", operations.StepFullPipeline, "step to run: fetch | clean | full_pipeline")
	configPath := fs.String("config", "", "path to bikepulse.yaml (defaults to the well-known locations)")
	version := fs.Bool("version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *version {
		fmt.Fprintln(stdout, contracts.GetVersionString())
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry", slog.String("error", err.Error()))
		return 1
	}
	defer providers.Shutdown(context.Background())

	metrics, err := infrastructure.NewPipelineMetrics(providers.Meter)
	if err != nil {
		logger.Error("Failed to create metrics", slog.String("error", err.Error()))
		return 1
	}

	paths := cfg.ArtifactPaths()
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("Failed to create required directories", slog.String("error", err.Error()))
		return 1
	}
	paths.LogPathResolution(logger)

	manager := operations.NewManager(nil, nil, logger, metrics)
	for _, s := range []operations.Step{
		operations.NewFetchStep(cfg, paths, logger, metrics),
		operations.NewCleanStep(cfg, paths, logger, metrics),
	} {
		if err := manager.RegisterStep(s); err != nil {
			logger.Error("Failed to register step", slog.String("error", err.Error()))
			return 1
		}
	}

	resp, err := manager.Execute(ctx, operations.OperationRequest{Step: *step})
	printSummary(stdout, resp)
	if err != nil {
		logger.Error("Pipeline failed",
			slog.String("step", *step),
			slog.String("error_type", string(operations.GetErrorType(err))),
			slog.String("error", err.Error()))
		return 1
	}
	return 0
}

// printSummary writes one line per step in execution order
func printSummary(w io.Writer, resp *operations.OperationResponse) {
	if resp == nil {
		return
	}
	fmt.Fprintf(w, "run %s: %s (%s)\n", resp.ID, resp.Status, resp.Duration.Round(time.Millisecond))
	for _, id := range resp.Order {
		s := resp.Steps[id]
		if s == nil {
			continue
		}
		fmt.Fprintf(w, "  %-6s %-9s", id, s.Status)
		keys := make([]string, 0, len(s.Metadata))
		for k := range s.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, " %s=%v", k, s.Metadata[k])
		}
		fmt.Fprintln(w)
	}
	if resp.Error != "" {
		fmt.Fprintf(w, "error: %s\n", resp.Error)
	}
}
