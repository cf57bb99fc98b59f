package dataprocessing

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikepulse/internal/config"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/exporter"
	"bikepulse/internal/shared/testutil"
	"bikepulse/pkg/contracts/domain"
)

func fixtureInputs(dir string) Inputs {
	return Inputs{
		Stations:     filepath.Join(dir, testutil.StationsFile),
		AreaCounts:   filepath.Join(dir, testutil.AreaCountsFile),
		Deprivation:  filepath.Join(dir, testutil.DeprivationFile),
		ChildObesity: filepath.Join(dir, testutil.ChildObesityFile),
		AdultObesity: filepath.Join(dir, testutil.AdultObesityFile),
	}
}

func newTestCleaner(t *testing.T) (*Cleaner, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	return NewCleaner(config.Default().Cleaning, logger, nil), logs
}

// renderCSV cleans dir and returns the bytes of the resulting model_data.csv
func renderCSV(t *testing.T, dir string) []byte {
	t.Helper()
	c, _ := newTestCleaner(t)
	result, err := c.Clean(context.Background(), fixtureInputs(dir))
	require.NoError(t, err)

	out := t.TempDir()
	logger, _ := testutil.NewTestLogger(t)
	w := exporter.NewCSVWriter(&config.Paths{DataDir: out}, logger, nil)
	require.NoError(t, w.WriteProfiles(context.Background(), result.Profiles))

	return []byte(readAll(t, filepath.Join(out, config.ModelDataFile)))
}

func TestClean_Fixtures(t *testing.T) {
	dir := testutil.WriteCleanerInputs(t)
	c, logs := newTestCleaner(t)

	result, err := c.Clean(context.Background(), fixtureInputs(dir))
	require.NoError(t, err)
	require.Len(t, result.Profiles, 2)

	camden := result.Profiles[0]
	assert.Equal(t, "Camden", camden.LAName)
	assert.Equal(t, "E09000007", camden.LACode)
	assert.Equal(t, 1617.0, camden.Rank)
	assert.Equal(t, 2.5, camden.Decile)
	assert.Equal(t, 0.5, camden.Bikepoint)
	assert.True(t, camden.BikepointBinary)
	assert.True(t, camden.London)
	assert.Equal(t, -1.5, *camden.OverweightChange)
	assert.Equal(t, 1.25, *camden.ObeseChange)

	hackney := result.Profiles[1]
	assert.Equal(t, "Hackney", hackney.LAName)
	assert.False(t, hackney.BikepointBinary)
	assert.Zero(t, hackney.Bikepoint)
	assert.Nil(t, hackney.YearSixObese)

	assert.Equal(t, 2, result.Stations)
	assert.Equal(t, 1, result.Areas)
	assert.Equal(t, map[string]int{JoinChildren: 2, JoinAdults: 1, JoinProfiles: 0}, result.Dropped)
	assert.True(t, logs.ContainsMessage("joined local authority profiles"))
	testutil.AssertNoErrors(t, logs)
}

func TestClean_EveryRowHasRankAndStationFlag(t *testing.T) {
	dir := testutil.WriteCleanerInputs(t)
	c, _ := newTestCleaner(t)

	result, err := c.Clean(context.Background(), fixtureInputs(dir))
	require.NoError(t, err)
	for _, p := range result.Profiles {
		assert.Greater(t, p.Rank, 0.0, p.LAName)
		assert.Equal(t, p.Bikepoint > 0, p.BikepointBinary, p.LAName)
	}
}

func TestClean_OutputMatchesGoldenFile(t *testing.T) {
	dir := testutil.WriteCleanerInputs(t)
	assert.Equal(t, testutil.ModelDataCSV, string(renderCSV(t, dir)))
}

func TestClean_Deterministic(t *testing.T) {
	dir := testutil.WriteCleanerInputs(t)
	first := renderCSV(t, dir)
	for i := 0; i < 5; i++ {
		assert.True(t, bytes.Equal(first, renderCSV(t, dir)), "run %d differs", i)
	}
}

func TestClean_AllAuthorities(t *testing.T) {
	dir := testutil.WriteCleanerInputs(t)
	logger, _ := testutil.NewTestLogger(t)
	opts := config.Default().Cleaning
	opts.LondonOnly = false

	result, err := NewCleaner(opts, logger, nil).Clean(context.Background(), fixtureInputs(dir))
	require.NoError(t, err)

	// Luton has childhood but no adult data, so it is still dropped
	names := make([]string, len(result.Profiles))
	for i, p := range result.Profiles {
		names[i] = p.LAName
	}
	assert.Equal(t, []string{"Camden", "Hackney"}, names)
	assert.Equal(t, 1, result.Dropped[JoinProfiles])
}

func TestClean_MissingInput(t *testing.T) {
	dir := testutil.WriteCleanerInputs(t)
	in := fixtureInputs(dir)
	in.AdultObesity = filepath.Join(dir, "nope.csv")

	c, _ := newTestCleaner(t)
	_, err := c.Clean(context.Background(), in)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeNotFound))
}

func TestClean_MissingColumn(t *testing.T) {
	dir := testutil.WriteCleanerInputs(t)
	testutil.WriteFile(t, dir, testutil.DeprivationFile, "LSOA code (2011),Local Authority District name (2019)\nE01000001,Camden\n")

	c, _ := newTestCleaner(t)
	_, err := c.Clean(context.Background(), fixtureInputs(dir))
	require.Error(t, err)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeParsing))
	assert.Contains(t, err.Error(), "la_code")
}

func TestClean_KeySetMismatch(t *testing.T) {
	dir := testutil.WriteCleanerInputs(t)
	// Islington loses its historic obese figure
	adults := `Indicator ID,Indicator Name,Area Code,Area Name,Area Type,Sex,Time period,Value
93088,Overweight,E09000007,Camden,Districts & UAs (2020/21),Persons,2021/22,50.5
93088,Overweight,E09000019,Islington,Districts & UAs (2020/21),Persons,2021/22,55
93881,Obese,E09000007,Camden,Districts & UAs (2020/21),Persons,2021/22,17.25
93881,Obese,E09000019,Islington,Districts & UAs (2020/21),Persons,2021/22,20
93088,Overweight,E09000007,Camden,Districts & UAs (2020/21),Persons,2015/16,52
93088,Overweight,E09000019,Islington,Districts & UAs (2020/21),Persons,2015/16,54
93881,Obese,E09000007,Camden,Districts & UAs (2020/21),Persons,2015/16,16
`
	testutil.WriteFile(t, dir, testutil.AdultObesityFile, adults)

	c, _ := newTestCleaner(t)
	_, err := c.Clean(context.Background(), fixtureInputs(dir))

	var joinErr *JoinError
	require.True(t, errors.As(err, &joinErr))
	assert.Equal(t, JoinAdults, joinErr.Join)
	assert.Equal(t, JoinKeyMismatch, joinErr.Kind)
	assert.Equal(t, []string{"E09000019"}, joinErr.Missing)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeJoin))
}

func TestClean_DuplicateKey(t *testing.T) {
	dir := testutil.WriteCleanerInputs(t)
	dup := testutil.ChildObesityCSV +
		"20601,Reception prevalence of overweight (including obesity),E09000007,Camden,Districts & UAs (from Apr 2023),Persons,2022/23,20.6\n"
	testutil.WriteFile(t, dir, testutil.ChildObesityFile, dup)

	c, _ := newTestCleaner(t)
	_, err := c.Clean(context.Background(), fixtureInputs(dir))

	var joinErr *JoinError
	require.True(t, errors.As(err, &joinErr))
	assert.Equal(t, JoinDuplicateKey, joinErr.Kind)
	assert.Equal(t, "E09000007", joinErr.Key)
}

func TestClean_Cancelled(t *testing.T) {
	dir := testutil.WriteCleanerInputs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, _ := newTestCleaner(t)
	_, err := c.Clean(ctx, fixtureInputs(dir))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregateByLA(t *testing.T) {
	records := []lsoaRecord{
		{LSOA: "a", LACode: "E09000001", LAName: "City", Rank: 100, Decile: 1, Bikepoint: true, London: true},
		{LSOA: "b", LACode: "E09000001", LAName: "City", Rank: 300, Decile: 3, Bikepoint: false, London: true},
		{LSOA: "c", LACode: "E09000001", LAName: "City", Rank: 200, Decile: 2, Bikepoint: true, London: true},
		{LSOA: "d", LACode: "E06000001", LAName: "Hartlepool", Rank: 50, Decile: 1, London: false},
	}

	london := aggregateByLA(records, true)
	require.Len(t, london, 1)
	assert.Equal(t, "City", london[0].Name)
	assert.Equal(t, 200.0, london[0].Rank)
	assert.Equal(t, 2.0, london[0].Decile)
	assert.InDelta(t, 2.0/3.0, london[0].Bikepoint, 1e-12)
	assert.True(t, london[0].BikepointBinary)
	assert.Equal(t, 3, london[0].LSOAs)

	all := aggregateByLA(records, false)
	require.Len(t, all, 2)
	assert.Equal(t, "Hartlepool", all[1].Name)
	assert.False(t, all[1].BikepointBinary)
}

func TestMergeSubsets(t *testing.T) {
	a := &indicatorSubset{
		Name:   "a",
		Values: map[string]*float64{"X": domain.Float(1), "Y": domain.Float(2)},
		Names:  map[string]string{"X": "Ex", "Y": "Why"},
	}
	b := &indicatorSubset{
		Name:   "b",
		Values: map[string]*float64{"Y": domain.Float(20), "X": nil},
		Names:  map[string]string{"X": "Ex", "Y": "Why"},
	}

	merged, err := mergeSubsets("test", a, b)
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, "X", merged[0].Code)
	assert.Equal(t, 1.0, *merged[0].Values[0])
	assert.Nil(t, merged[0].Values[1])
	assert.Equal(t, 20.0, *merged[1].Values[1])

	c := &indicatorSubset{Name: "c", Values: map[string]*float64{"X": nil, "Z": nil}}
	_, err = mergeSubsets("test", a, c)
	var joinErr *JoinError
	require.True(t, errors.As(err, &joinErr))
	assert.Equal(t, []string{"Y"}, joinErr.Missing)
	assert.Equal(t, []string{"Z"}, joinErr.Extra)
	assert.Contains(t, err.Error(), "missing Y; unexpected Z")
}

func TestSubtract(t *testing.T) {
	assert.Nil(t, subtract(nil, domain.Float(1)))
	assert.Nil(t, subtract(domain.Float(1), nil))
	assert.Equal(t, -0.5, *subtract(domain.Float(25.5), domain.Float(26)))
}
