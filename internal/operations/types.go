package operations

import (
	"time"
)

// Step identifiers
const (
	StepIDFetch = "fetch"
	StepIDClean = "clean"

	// StepFullPipeline runs every registered step
	StepFullPipeline = "full_pipeline"
)

// Step names
const (
	StepNameFetch = "Station Fetch"
	StepNameClean = "Data Cleaning"
)

// Context keys for values passed between steps
const (
	ContextKeyStations   = "stations"
	ContextKeyAreaCounts = "area_counts"
	ContextKeyProfiles   = "profiles"
)

// Default timeouts
const (
	DefaultStepTimeout  = 10 * time.Minute
	DefaultFetchTimeout = 15 * time.Minute
	DefaultCleanTimeout = 5 * time.Minute
)

// OperationRequest represents a request to execute the pipeline
type OperationRequest struct {
	ID   string `json:"id"`
	Step string `json:"step"`
}

// OperationResponse represents the response from a pipeline execution
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatus       `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Order    []string              `json:"order"`
	Error    string                `json:"error,omitempty"`
}
