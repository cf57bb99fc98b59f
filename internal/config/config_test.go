package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bikepulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with empty file",
			file: "",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 1222, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "https://api.tfl.gov.uk/BikePoint/", cfg.Sources.BikePointURL)
				assert.Equal(t, "https://api.postcodes.io/postcodes", cfg.Sources.PostcodesURL)
				assert.Equal(t, 100, cfg.Sources.BatchSize)
				assert.Equal(t, 300, cfg.Sources.Radius)
				assert.Equal(t, 1, cfg.Sources.Limit)
				assert.Equal(t, "2022/23", cfg.Cleaning.ChildPeriod)
				assert.Equal(t, "E09", cfg.Cleaning.LondonPrefix)
				assert.True(t, cfg.Cleaning.LondonOnly)
				assert.True(t, filepath.IsAbs(cfg.Paths.DataDir))
				assert.True(t, filepath.IsAbs(cfg.Paths.LogsDir))
			},
		},
		{
			name: "file overrides defaults",
			file: "server:\n  port: 9000\nsources:\n  batch_size: 50\nlogging:\n  format: text\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, 50, cfg.Sources.BatchSize)
				assert.Equal(t, "text", cfg.Logging.Format)
				// untouched keys keep their defaults
				assert.Equal(t, 300, cfg.Sources.Radius)
			},
		},
		{
			name: "environment overrides file",
			file: "server:\n  port: 9000\n",
			env: map[string]string{
				"BIKEPULSE_SERVER_PORT":          "9100",
				"BIKEPULSE_CLEANING_LONDON_ONLY": "false",
				"BIKEPULSE_SOURCES_TIMEOUT":      "5s",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9100, cfg.Server.Port)
				assert.False(t, cfg.Cleaning.LondonOnly)
				assert.Equal(t, 5*time.Second, cfg.Sources.Timeout)
			},
		},
		{
			name:    "batch size above the geocoder cap",
			env:     map[string]string{"BIKEPULSE_SOURCES_BATCH_SIZE": "101"},
			wantErr: true,
		},
		{
			name:    "malformed station url",
			file:    "sources:\n  bikepoint_url: not a url\n",
			wantErr: true,
		},
		{
			name:    "unknown log level",
			env:     map[string]string{"BIKEPULSE_LOGGING_LEVEL": "verbose"},
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			file:    "server: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load(writeConfigFile(t, tt.file))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("default is valid", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})

	t.Run("file output needs a path", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Output = "file"
		cfg.Logging.FilePath = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("port out of range", func(t *testing.T) {
		cfg := Default()
		cfg.Server.Port = 70000
		assert.Error(t, cfg.Validate())
	})
}

func TestAddress(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "127.0.0.1:1222", cfg.Address())
	assert.Equal(t, "http://127.0.0.1:1222/", cfg.BaseURL())
}
