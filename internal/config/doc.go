// Package config provides configuration loading for the bikepulse pipeline
// and reporter.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later sources
// overriding earlier ones:
//
//	1. Default values (Default)
//	2. A YAML file (bikepulse.yaml or configs/bikepulse.yaml, or an explicit path)
//	3. Environment variables with the BIKEPULSE_ prefix
//
// # Environment Variables
//
// Nested sections map to underscore-separated names:
//
//	BIKEPULSE_SERVER_PORT=1222
//	BIKEPULSE_PATHS_DATA_DIR=/var/lib/bikepulse
//	BIKEPULSE_SOURCES_BATCH_SIZE=100
//	BIKEPULSE_LOGGING_FORMAT=text
//
// # Paths
//
// Config.ArtifactPaths resolves every artifact (bikepoints.csv, la_counts.csv,
// model_data.csv and the three reference datasets) under the data directory.
//
// # Validation
//
// Load validates the result with go-playground/validator struct tags, so an
// out-of-range batch size or malformed API URL fails at startup rather than
// halfway through a fetch.
package config
