package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the namespace of every environment variable read by Load.
const EnvPrefix = "BIKEPULSE"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Sources   SourcesConfig   `yaml:"sources" envconfig:"SOURCES"`
	Cleaning  CleaningConfig  `yaml:"cleaning" envconfig:"CLEANING"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST" validate:"required"`
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" validate:"gte=0"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`

	// Reference datasets, relative to DataDir unless absolute.
	DeprivationFile  string `yaml:"deprivation_file" envconfig:"DEPRIVATION_FILE" validate:"required"`
	ChildObesityFile string `yaml:"child_obesity_file" envconfig:"CHILD_OBESITY_FILE" validate:"required"`
	AdultObesityFile string `yaml:"adult_obesity_file" envconfig:"ADULT_OBESITY_FILE" validate:"required"`
}

// SourcesConfig describes the two remote APIs the fetcher talks to
type SourcesConfig struct {
	BikePointURL   string        `yaml:"bikepoint_url" envconfig:"BIKEPOINT_URL" validate:"required,url"`
	PostcodesURL   string        `yaml:"postcodes_url" envconfig:"POSTCODES_URL" validate:"required,url"`
	BatchSize      int           `yaml:"batch_size" envconfig:"BATCH_SIZE" validate:"min=1,max=100"`
	Radius         int           `yaml:"radius" envconfig:"RADIUS" validate:"min=1,max=2000"`
	Limit          int           `yaml:"limit" envconfig:"LIMIT" validate:"min=1,max=100"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	RequestsPerSec float64       `yaml:"requests_per_sec" envconfig:"REQUESTS_PER_SEC" validate:"gte=0"`
	Burst          int           `yaml:"burst" envconfig:"BURST" validate:"min=1"`
	UserAgent      string        `yaml:"user_agent" envconfig:"USER_AGENT"`
}

// CleaningConfig holds the filters applied to the reference datasets
type CleaningConfig struct {
	ChildPeriod         string `yaml:"child_period" envconfig:"CHILD_PERIOD" validate:"required"`
	ChildAreaType       string `yaml:"child_area_type" envconfig:"CHILD_AREA_TYPE" validate:"required"`
	AdultAreaType       string `yaml:"adult_area_type" envconfig:"ADULT_AREA_TYPE" validate:"required"`
	AdultCurrentPeriod  string `yaml:"adult_current_period" envconfig:"ADULT_CURRENT_PERIOD" validate:"required"`
	AdultHistoricPeriod string `yaml:"adult_historic_period" envconfig:"ADULT_HISTORIC_PERIOD" validate:"required"`
	ReceptionOverweight string `yaml:"reception_overweight" envconfig:"RECEPTION_OVERWEIGHT" validate:"required"`
	ReceptionObese      string `yaml:"reception_obese" envconfig:"RECEPTION_OBESE" validate:"required"`
	YearSixOverweight   string `yaml:"year_six_overweight" envconfig:"YEAR_SIX_OVERWEIGHT" validate:"required"`
	YearSixObese        string `yaml:"year_six_obese" envconfig:"YEAR_SIX_OBESE" validate:"required"`
	AdultOverweightID   string `yaml:"adult_overweight_id" envconfig:"ADULT_OVERWEIGHT_ID" validate:"required"`
	AdultObeseID        string `yaml:"adult_obese_id" envconfig:"ADULT_OBESE_ID" validate:"required"`
	LondonPrefix        string `yaml:"london_prefix" envconfig:"LONDON_PREFIX" validate:"required"`
	LondonOnly          bool   `yaml:"london_only" envconfig:"LONDON_ONLY"`
}

// ReportConfig controls the reporter web page
type ReportConfig struct {
	OpenBrowser     bool          `yaml:"open_browser" envconfig:"OPEN_BROWSER"`
	StartupTimeout  time.Duration `yaml:"startup_timeout" envconfig:"STARTUP_TIMEOUT" validate:"gt=0"`
	SnapshotTimeout time.Duration `yaml:"snapshot_timeout" envconfig:"SNAPSHOT_TIMEOUT" validate:"gt=0"`
}

// TelemetryConfig toggles metrics and tracing
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
}

// Load builds the configuration from defaults, an optional YAML file and
// BIKEPULSE_* environment variables, in increasing order of precedence.
// An empty path falls back to the well-known config locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without a matching variable keep their current value.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML document at filePath onto c
func (c *Config) loadFromFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// resolvePaths makes the data and logs directories absolute
func (c *Config) resolvePaths() error {
	for _, p := range []*string{&c.Paths.DataDir, &c.Paths.LogsDir} {
		if filepath.IsAbs(*p) {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return err
		}
		*p = abs
	}
	return nil
}

// Validate checks struct tags and the few cross-field rules
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging file path is required for output %q", c.Logging.Output)
	}
	return nil
}

// Address returns the host:port the reporter listens on
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// BaseURL returns the URL a browser should open to view the report
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s/", c.Address())
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"bikepulse.yaml",
		"configs/bikepulse.yaml",
		"../configs/bikepulse.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            1222,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 10 * time.Second,
			RateLimitRPS:    50,
			RateLimitBurst:  100,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/bikepulse.log",
		},
		Paths: PathsConfig{
			DataDir:          "data",
			LogsDir:          "logs",
			DeprivationFile:  "deprivation.csv",
			ChildObesityFile: "children_obesity.csv",
			AdultObesityFile: "adults_obesity.csv",
		},
		Sources: SourcesConfig{
			BikePointURL:   "https://api.tfl.gov.uk/BikePoint/",
			PostcodesURL:   "https://api.postcodes.io/postcodes",
			BatchSize:      100,
			Radius:         300,
			Limit:          1,
			Timeout:        30 * time.Second,
			RequestsPerSec: 5,
			Burst:          1,
			UserAgent:      "bikepulse/1.0",
		},
		Cleaning: CleaningConfig{
			ChildPeriod:         "2022/23",
			ChildAreaType:       "Districts & UAs (from Apr 2023)",
			AdultAreaType:       "Districts & UAs (2020/21)",
			AdultCurrentPeriod:  "2021/22",
			AdultHistoricPeriod: "2015/16",
			ReceptionOverweight: "Reception prevalence of overweight (including obesity)",
			ReceptionObese:      "Reception prevalence of obesity (including severe obesity)",
			YearSixOverweight:   "Year 6 prevalence of overweight (including obesity)",
			YearSixObese:        "Year 6 prevalence of obesity (including severe obesity)",
			AdultOverweightID:   "93088",
			AdultObeseID:        "93881",
			LondonPrefix:        "E09",
			LondonOnly:          true,
		},
		Report: ReportConfig{
			OpenBrowser:     true,
			StartupTimeout:  10 * time.Second,
			SnapshotTimeout: 60 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "bikepulse",
			MetricsEnabled: true,
			TracingEnabled: false,
		},
	}
}
