package operations

import (
	"context"
	"fmt"
	"log/slog"

	"bikepulse/internal/config"
	"bikepulse/internal/dataprocessing"
	"bikepulse/internal/exporter"
	"bikepulse/internal/fetcher"
	"bikepulse/internal/infrastructure"
	"bikepulse/internal/validation"
)

// FetchStep downloads the stations, geocodes them to LSOAs and writes
// bikepoints.csv and la_counts.csv. Nothing is written unless every batch
// succeeded, and the two files are only replaced together.
type FetchStep struct {
	BaseStep
	sources   config.SourcesConfig
	client    *fetcher.Client
	geocoder  *fetcher.Geocoder
	writer    *exporter.CSVWriter
	validator *validation.FileValidator
	paths     *config.Paths
	logger    *slog.Logger
	metrics   *infrastructure.PipelineMetrics
}

// NewFetchStep creates the fetch step from configuration
func NewFetchStep(cfg *config.Config, paths *config.Paths, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *FetchStep {
	client := fetcher.NewFromConfig(cfg.Sources, logger)
	return NewFetchStepWithClient(cfg.Sources, client, paths, logger, metrics)
}

// NewFetchStepWithClient creates the fetch step around an existing client
func NewFetchStepWithClient(sources config.SourcesConfig, client *fetcher.Client, paths *config.Paths, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *FetchStep {
	return &FetchStep{
		BaseStep:  NewBaseStep(StepIDFetch, StepNameFetch, nil),
		sources:   sources,
		client:    client,
		geocoder:  fetcher.NewGeocoder(client, fetcher.GeocoderOptionsFromConfig(sources), metrics),
		writer:    exporter.NewCSVWriter(paths, logger, metrics),
		validator: validation.NewFileValidator(logger),
		paths:     paths,
		logger:    infrastructure.WithComponent(logger, "fetch_step"),
		metrics:   metrics,
	}
}

// Validate checks the data directory is writable
func (s *FetchStep) Validate(state *OperationState) error {
	return s.validator.ValidateOutputDirectory(s.paths.DataDir)
}

// Execute runs the fetch
func (s *FetchStep) Execute(ctx context.Context, state *OperationState) error {
	stepState := state.GetStep(s.ID())

	stations, err := s.client.FetchStations(ctx, s.sources.BikePointURL)
	if err != nil {
		return fmt.Errorf("fetch stations: %w", err)
	}
	s.metrics.RecordStationsFetched(ctx, len(stations))

	counts, stats, err := s.geocoder.CountAreas(ctx, stations)
	if err != nil {
		return fmt.Errorf("count areas: %w", err)
	}

	sorted := fetcher.SortedAreaCounts(counts)
	if err := s.writer.ReplaceAll(ctx,
		exporter.StationsOutput(stations),
		exporter.AreaCountsOutput(sorted),
	); err != nil {
		return err
	}

	state.SetContext(ContextKeyStations, len(stations))
	state.SetContext(ContextKeyAreaCounts, len(sorted))
	if stepState != nil {
		stepState.SetMetadata("stations", len(stations))
		stepState.SetMetadata("batches", stats.Batches)
		stepState.SetMetadata("located", stats.Located)
		stepState.SetMetadata("skipped", stats.Skipped)
		stepState.SetMetadata("areas", len(sorted))
	}

	s.logger.InfoContext(ctx, "fetch step finished",
		slog.Int("stations", len(stations)),
		slog.Int("located", stats.Located),
		slog.Int("areas", len(sorted)))
	return nil
}

// CleanStep joins the fetched and reference tables and writes
// model_data.csv
type CleanStep struct {
	BaseStep
	cleaner   *dataprocessing.Cleaner
	writer    *exporter.CSVWriter
	validator *validation.FileValidator
	paths     *config.Paths
	logger    *slog.Logger
}

// NewCleanStep creates the clean step from configuration
func NewCleanStep(cfg *config.Config, paths *config.Paths, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *CleanStep {
	return &CleanStep{
		BaseStep:  NewBaseStep(StepIDClean, StepNameClean, []string{StepIDFetch}),
		cleaner:   dataprocessing.NewCleaner(cfg.Cleaning, logger, metrics),
		writer:    exporter.NewCSVWriter(paths, logger, metrics),
		validator: validation.NewFileValidator(logger),
		paths:     paths,
		logger:    infrastructure.WithComponent(logger, "clean_step"),
	}
}

// Validate checks that all five inputs exist. In a full pipeline the fetch
// outputs do not exist yet, so only the reference datasets are checked.
func (s *CleanStep) Validate(state *OperationState) error {
	if state.GetStep(StepIDFetch) != nil {
		return s.validator.ValidateInputs(s.paths.DeprivationFile, s.paths.ChildObesityFile, s.paths.AdultObesityFile)
	}
	return s.validator.ValidateInputs(s.paths.CleanerInputs()...)
}

// Execute runs the cleaner
func (s *CleanStep) Execute(ctx context.Context, state *OperationState) error {
	if areas, ok := state.GetContext(ContextKeyAreaCounts); ok {
		s.logger.DebugContext(ctx, "using area counts from this run", slog.Any("areas", areas))
	}

	result, err := s.cleaner.Clean(ctx, dataprocessing.InputsFromPaths(s.paths))
	if err != nil {
		return fmt.Errorf("clean: %w", err)
	}

	if err := s.writer.WriteProfiles(ctx, result.Profiles); err != nil {
		return err
	}

	state.SetContext(ContextKeyProfiles, len(result.Profiles))
	if stepState := state.GetStep(s.ID()); stepState != nil {
		stepState.SetMetadata("profiles", len(result.Profiles))
		for join, n := range result.Dropped {
			stepState.SetMetadata("dropped_"+join, n)
		}
	}

	s.logger.InfoContext(ctx, "clean step finished",
		slog.Int("profiles", len(result.Profiles)),
		slog.String("output", s.paths.ModelDataCSV))
	return nil
}
