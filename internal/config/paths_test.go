package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactPaths(t *testing.T) {
	cfg := Default()
	cfg.Paths.DataDir = "/srv/bike"
	cfg.Paths.AdultObesityFile = "/elsewhere/adults.csv"

	p := cfg.ArtifactPaths()

	assert.Equal(t, "/srv/bike/bikepoints.csv", p.StationsCSV)
	assert.Equal(t, "/srv/bike/la_counts.csv", p.AreaCountCSV)
	assert.Equal(t, "/srv/bike/model_data.csv", p.ModelDataCSV)
	assert.Equal(t, "/srv/bike/deprivation.csv", p.DeprivationFile)
	assert.Equal(t, "/elsewhere/adults.csv", p.AdultObesityFile)
	assert.Len(t, p.CleanerInputs(), 5)
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Paths.DataDir = filepath.Join(root, "data")
	cfg.Paths.LogsDir = filepath.Join(root, "logs")

	p := cfg.ArtifactPaths()
	require.NoError(t, p.EnsureDirectories())
	p.LogPathResolution(slog.New(slog.NewTextHandler(io.Discard, nil)))

	for _, dir := range []string{p.DataDir, p.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
