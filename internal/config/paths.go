package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Artifact file names written by the pipeline.
const (
	StationsFile  = "bikepoints.csv"
	AreaCountFile = "la_counts.csv"
	ModelDataFile = "model_data.csv"
)

// Paths contains every file the pipeline reads or writes.
// It is the single place file names are joined onto directories.
type Paths struct {
	DataDir string
	LogsDir string

	// Fetcher outputs
	StationsCSV  string
	AreaCountCSV string

	// Reference inputs
	DeprivationFile  string
	ChildObesityFile string
	AdultObesityFile string

	// Cleaner output, reporter input
	ModelDataCSV string
}

// ArtifactPaths resolves the artifact locations for this configuration
func (c *Config) ArtifactPaths() *Paths {
	dataDir := c.Paths.DataDir
	return &Paths{
		DataDir:          dataDir,
		LogsDir:          c.Paths.LogsDir,
		StationsCSV:      filepath.Join(dataDir, StationsFile),
		AreaCountCSV:     filepath.Join(dataDir, AreaCountFile),
		DeprivationFile:  resolveUnder(dataDir, c.Paths.DeprivationFile),
		ChildObesityFile: resolveUnder(dataDir, c.Paths.ChildObesityFile),
		AdultObesityFile: resolveUnder(dataDir, c.Paths.AdultObesityFile),
		ModelDataCSV:     filepath.Join(dataDir, ModelDataFile),
	}
}

// CleanerInputs lists every file the cleaner needs, in load order
func (p *Paths) CleanerInputs() []string {
	return []string{
		p.StationsCSV,
		p.AreaCountCSV,
		p.DeprivationFile,
		p.ChildObesityFile,
		p.AdultObesityFile,
	}
}

// EnsureDirectories creates the data and logs directories if missing
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPathResolution logs the resolved paths at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Resolved pipeline paths",
		slog.String("data_dir", p.DataDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("stations", p.StationsCSV),
		slog.String("area_counts", p.AreaCountCSV),
		slog.String("model_data", p.ModelDataCSV))
}

func resolveUnder(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
