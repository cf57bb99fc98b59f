package operations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikepulse/internal/config"
	"bikepulse/internal/shared/testutil"
)

const stationsJSON = `[
  {"id":"BikePoints_1","commonName":"River Street , Clerkenwell","placeType":"BikePoint","lat":51.529163,"lon":-0.10997},
  {"id":"BikePoints_2","commonName":"Phillimore Gardens, Kensington","placeType":"BikePoint","lat":51.499606,"lon":-0.197574}
]`

// geocodeAll places every coordinate in LSOA E01000001
func geocodeAll(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Geolocations []json.RawMessage `json:"geolocations"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result := make([]map[string]interface{}, len(req.Geolocations))
		for i, g := range req.Geolocations {
			result[i] = map[string]interface{}{
				"query": g,
				"result": []map[string]interface{}{{
					"codes": map[string]string{"lsoa": "E01000001", "parliamentary_constituency": "E14000750"},
				}},
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"status": 200, "result": result})
	}))
}

// newPipeline builds a manager with both real steps wired to the given
// upstream servers, over a data directory holding the reference datasets
func newPipeline(t *testing.T, bikePointURL, postcodesURL string) (*Manager, *config.Paths) {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.DataDir = testutil.WriteCleanerInputs(t)
	cfg.Sources.BikePointURL = bikePointURL
	cfg.Sources.PostcodesURL = postcodesURL
	cfg.Sources.RequestsPerSec = 0
	paths := cfg.ArtifactPaths()

	logger, _ := testutil.NewTestLogger(t)
	m := NewManager(nil, nil, logger, nil)
	require.NoError(t, m.RegisterStep(NewFetchStep(cfg, paths, logger, nil)))
	require.NoError(t, m.RegisterStep(NewCleanStep(cfg, paths, logger, nil)))
	return m, paths
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestPipeline_FullRun(t *testing.T) {
	bikePoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(stationsJSON))
	}))
	defer bikePoint.Close()
	geocode := geocodeAll(t)
	defer geocode.Close()

	m, paths := newPipeline(t, bikePoint.URL, geocode.URL)
	// fetch must produce these itself
	require.NoError(t, os.Remove(paths.StationsCSV))
	require.NoError(t, os.Remove(paths.AreaCountCSV))

	resp, err := m.Execute(context.Background(), OperationRequest{Step: StepFullPipeline})
	require.NoError(t, err)

	assert.Equal(t, OperationStatusCompleted, resp.Status)
	assert.Equal(t, []string{StepIDFetch, StepIDClean}, resp.Order)
	assert.Equal(t, 2, resp.Steps[StepIDFetch].Metadata["stations"])
	assert.Equal(t, 2, resp.Steps[StepIDClean].Metadata["profiles"])

	assert.Equal(t, testutil.StationsCSV, readFile(t, paths.StationsCSV))
	assert.Equal(t, testutil.AreaCountsCSV, readFile(t, paths.AreaCountCSV))
	assert.Equal(t, testutil.ModelDataCSV, readFile(t, paths.ModelDataCSV))
}

func TestPipeline_FetchFailureWritesNothing(t *testing.T) {
	bikePoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer bikePoint.Close()
	geocode := geocodeAll(t)
	defer geocode.Close()

	m, paths := newPipeline(t, bikePoint.URL, geocode.URL)
	testutil.WriteFile(t, paths.DataDir, filepath.Base(paths.StationsCSV), "sentinel\n")

	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeExecution, GetErrorType(err))
	assert.Contains(t, err.Error(), "503")

	assert.Equal(t, StepStatusFailed, resp.Steps[StepIDFetch].Status)
	assert.Equal(t, StepStatusSkipped, resp.Steps[StepIDClean].Status)

	assert.Equal(t, "sentinel\n", readFile(t, paths.StationsCSV))
	_, statErr := os.Stat(paths.ModelDataCSV)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchStep_WriteFailureKeepsPreviousFiles(t *testing.T) {
	bikePoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(stationsJSON))
	}))
	defer bikePoint.Close()
	geocode := geocodeAll(t)
	defer geocode.Close()

	m, paths := newPipeline(t, bikePoint.URL, geocode.URL)
	testutil.WriteFile(t, paths.DataDir, filepath.Base(paths.StationsCSV), "sentinel\n")
	previousCounts := readFile(t, paths.AreaCountCSV)
	// a directory in the way of the staged la_counts.csv
	require.NoError(t, os.MkdirAll(paths.AreaCountCSV+".partial", 0755))

	resp, err := m.Execute(context.Background(), OperationRequest{Step: StepIDFetch})
	require.Error(t, err)
	assert.Equal(t, StepStatusFailed, resp.Steps[StepIDFetch].Status)

	assert.Equal(t, "sentinel\n", readFile(t, paths.StationsCSV))
	assert.Equal(t, previousCounts, readFile(t, paths.AreaCountCSV))
}

func TestCleanStep_Standalone(t *testing.T) {
	m, paths := newPipeline(t, "http://127.0.0.1:1/unused", "http://127.0.0.1:1/unused")

	resp, err := m.Execute(context.Background(), OperationRequest{Step: StepIDClean})
	require.NoError(t, err)
	assert.Equal(t, []string{StepIDClean}, resp.Order)
	assert.Equal(t, testutil.ModelDataCSV, readFile(t, paths.ModelDataCSV))
}

func TestCleanStep_ValidateInputs(t *testing.T) {
	m, paths := newPipeline(t, "http://127.0.0.1:1/unused", "http://127.0.0.1:1/unused")
	require.NoError(t, os.Remove(paths.AreaCountCSV))

	// run alone, the fetch outputs must already exist
	_, err := m.Execute(context.Background(), OperationRequest{Step: StepIDClean})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
	assert.Contains(t, err.Error(), filepath.Base(paths.AreaCountCSV))

	// in a full run only the reference datasets are checked up front
	step, err := m.GetRegistry().Get(StepIDClean)
	require.NoError(t, err)
	state := NewOperationState("test")
	state.SetStep(StepIDFetch, NewStepState(StepIDFetch, StepNameFetch))
	assert.NoError(t, step.Validate(state))

	require.NoError(t, os.Remove(paths.DeprivationFile))
	assert.Error(t, step.Validate(state))
}
