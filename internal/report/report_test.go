package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/shared/testutil"
	"bikepulse/pkg/contracts/domain"
)

func loadFixtureProfiles(t *testing.T) []domain.AreaProfile {
	t.Helper()
	dir := testutil.WriteReportInputs(t)
	profiles, err := LoadProfiles(filepath.Join(dir, testutil.ModelDataFile))
	require.NoError(t, err)
	return profiles
}

func TestLoadProfiles(t *testing.T) {
	profiles := loadFixtureProfiles(t)
	require.Len(t, profiles, 2)

	camden := profiles[0]
	assert.Equal(t, "E09000007", camden.LACode)
	assert.Equal(t, 1617.0, camden.Rank)
	assert.True(t, camden.London)
	assert.True(t, camden.BikepointBinary)
	require.NotNil(t, camden.ObeseChange)
	assert.Equal(t, 1.25, *camden.ObeseChange)

	hackney := profiles[1]
	assert.False(t, hackney.BikepointBinary)
	assert.Nil(t, hackney.YearSixObese)
}

func TestLoadProfiles_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadProfiles(filepath.Join(dir, "missing.csv"))
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeNotFound))

	path := testutil.WriteFile(t, dir, "short.csv", "la_code,la_name\nE09000007,Camden\n")
	_, err = LoadProfiles(path)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeParsing))

	bad := strings.Replace(testutil.ModelDataCSV, ",true,0.5,true,", ",yes,0.5,true,", 1)
	path = testutil.WriteFile(t, dir, "bad.csv", bad)
	_, err = LoadProfiles(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadStations(t *testing.T) {
	dir := testutil.WriteReportInputs(t)
	stations, err := LoadStations(filepath.Join(dir, testutil.StationsFile))
	require.NoError(t, err)
	require.Len(t, stations, 2)
	assert.Equal(t, "River Street , Clerkenwell", stations[0].CommonName)
	assert.Equal(t, -0.197574, stations[1].Longitude)
}

func TestGroupMeans_ObeseChangePartition(t *testing.T) {
	profiles := loadFixtureProfiles(t)

	bars, err := GroupMeans(profiles, domain.MetricObeseChange)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.True(t, bars[0].HasStation)
	assert.Equal(t, 1, bars[0].Count)
	assert.Equal(t, 1.25, *bars[0].Value)
	assert.Equal(t, domain.ColorHasStation, bars[0].Color)

	assert.False(t, bars[1].HasStation)
	assert.Equal(t, 1, bars[1].Count)
	assert.Equal(t, -0.5, *bars[1].Value)
	assert.Equal(t, domain.ColorNoStation, bars[1].Color)
}

func TestGroupMeans(t *testing.T) {
	profiles := []domain.AreaProfile{
		{LAName: "a", BikepointBinary: true, Rank: 100, Indicators: domain.Indicators{AdultsObese: domain.Float(10)}},
		{LAName: "b", BikepointBinary: true, Rank: 300, Indicators: domain.Indicators{AdultsObese: domain.Float(20)}},
		{LAName: "c", BikepointBinary: false, Rank: 1000},
	}

	tests := []struct {
		name      string
		metric    domain.Metric
		wantTrue  *float64
		wantFalse *float64
		counts    [2]int
	}{
		{name: "rank", metric: domain.MetricRank, wantTrue: domain.Float(200), wantFalse: domain.Float(1000), counts: [2]int{2, 1}},
		{name: "missing values skipped", metric: domain.MetricAdultsObese, wantTrue: domain.Float(15), wantFalse: nil, counts: [2]int{2, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars, err := GroupMeans(profiles, tt.metric)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTrue, bars[0].Value)
			assert.Equal(t, tt.wantFalse, bars[1].Value)
			assert.Equal(t, tt.counts, [2]int{bars[0].Count, bars[1].Count})
		})
	}

	_, err := GroupMeans(profiles, "height")
	assert.Error(t, err)
}

func TestCompleteCases(t *testing.T) {
	profiles := loadFixtureProfiles(t)
	require.Len(t, profiles, 2)

	complete := CompleteCases(profiles)
	require.Len(t, complete, 1)
	assert.Equal(t, "Camden", complete[0].LAName)

	// every chart over the filtered set drops the no-station group entirely
	for _, m := range []domain.Metric{domain.MetricRank, domain.MetricObeseChange, domain.MetricAdultsOverweight} {
		bars, err := GroupMeans(complete, m)
		require.NoError(t, err)
		assert.Equal(t, 1, bars[0].Count, m)
		assert.Equal(t, 0, bars[1].Count, m)
		assert.Nil(t, bars[1].Value, m)
	}

	assert.Empty(t, CompleteCases(nil))
}

func TestChartSpec_Build(t *testing.T) {
	profiles := loadFixtureProfiles(t)

	tests := []struct {
		name      string
		kind      domain.ChartKind
		metric    domain.Metric
		wantTitle string
		wantYAxis string
		wantX     string
		wantRange [2]float64
		wantErr   bool
	}{
		{
			name:      "change chart obese",
			kind:      domain.ChartChange,
			metric:    domain.MetricObeseChange,
			wantTitle: "Obese Change(%) vs BikePoint (present/absent)",
			wantYAxis: "Obese Change(%)",
			wantX:     StationAxisTitle,
			wantRange: [2]float64{-3, 3},
		},
		{
			name:      "obesity chart default",
			kind:      domain.ChartObesity,
			wantTitle: "5 Yearolds Overweight(%) vs BikePoint (present/absent)",
			wantYAxis: "5 Yearolds Overweight(%)",
			wantX:     StationAxisTitle,
			wantRange: [2]float64{0, 60},
		},
		{
			name:      "deprivation",
			kind:      domain.ChartDeprivation,
			wantTitle: "How Deprivation relates to BikePoint presence in London",
			wantYAxis: "Deprivation Rank (1 = Most Deprived)",
			wantX:     "Does the local authority have a BikePoint?",
			wantRange: [2]float64{0, 20000},
		},
		{name: "change metric on obesity chart", kind: domain.ChartObesity, metric: domain.MetricObeseChange, wantErr: true},
		{name: "rank on change chart", kind: domain.ChartChange, metric: domain.MetricRank, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := LookupChart(tt.kind)
			require.NoError(t, err)

			chart, err := spec.Build(profiles, tt.metric)
			if tt.wantErr {
				var apiErr *apierrors.APIError
				require.ErrorAs(t, err, &apiErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, chart.Title)
			assert.Equal(t, tt.wantYAxis, chart.YAxisTitle)
			assert.Equal(t, tt.wantX, chart.XAxisTitle)
			assert.Equal(t, tt.wantRange, chart.YRange)
			assert.Len(t, chart.Bars, 2)
		})
	}

	_, err := LookupChart("pie")
	assert.Error(t, err)
}

func TestChartOptions(t *testing.T) {
	obesity := Charts[domain.ChartObesity]
	assert.Len(t, obesity.Options, 8)
	assert.False(t, obesity.Allows(domain.MetricRank))
	assert.False(t, obesity.Allows(domain.MetricOverweightChange))
	assert.Equal(t, domain.MetricReceptionOverweight, obesity.Default)

	change := Charts[domain.ChartChange]
	assert.Equal(t, []domain.Metric{domain.MetricOverweightChange, domain.MetricObeseChange}, change.Options)
	assert.Equal(t, domain.MetricOverweightChange, change.Default)
}

func TestMetricTitle(t *testing.T) {
	tests := map[domain.Metric]string{
		domain.MetricObeseChange:              "Obese Change",
		domain.MetricReceptionOverweight:      "5 Yearolds Overweight",
		domain.MetricYearSixObese:             "11 Yearolds Obese",
		domain.MetricHistoricAdultsOverweight: "Historic Adults Overweight",
	}
	for in, want := range tests {
		assert.Equal(t, want, MetricTitle(in))
	}
}

func TestCandidateSites(t *testing.T) {
	sites, err := CandidateSites()
	require.NoError(t, err)
	require.Len(t, sites, 5)

	assert.Equal(t, "Strongly Recommended: South East", sites[0].Title())
	assert.Equal(t, "green", sites[0].Color)
	assert.Equal(t, 40.0, sites[0].Radius)
	assert.Len(t, sites[0].Reasons, 3)

	var red int
	for _, s := range sites {
		if s.Color == "red" {
			red++
			assert.Equal(t, 70.0, s.Radius)
		}
	}
	assert.Equal(t, 2, red)
}

func TestParseSites_Invalid(t *testing.T) {
	_, err := ParseSites([]byte("- name: Nowhere\n  verdict: Consider\n  lat: 95\n  lon: 0\n  radius: 10\n  color: red\n  summary: x\n  reasons: [a]\n"))
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeConfig))

	_, err = ParseSites([]byte("not: [a list"))
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeConfig))
}

func TestRenderPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, NewPageData(2)))

	html := buf.String()
	assert.Contains(t, html, PageTitle)
	assert.Contains(t, html, `<option value="5_yearolds_overweight" selected>`)
	assert.Contains(t, html, `<option value="obese_change">`)
	assert.Contains(t, html, `src="/maps/expansion"`)
	assert.Contains(t, html, "distribution of 2 BikePoints")
}

func TestRenderMap(t *testing.T) {
	sites, err := CandidateSites()
	require.NoError(t, err)
	stations := []domain.Station{{ID: "BikePoints_1", CommonName: "River Street", Latitude: 51.529163, Longitude: -0.10997}}

	var buf bytes.Buffer
	require.NoError(t, RenderMap(&buf, ExpansionMap(stations, sites)))

	html := buf.String()
	assert.Contains(t, html, "51.529163")
	assert.Contains(t, html, "Richmond park")
	assert.Contains(t, html, "51.5074")
	assert.Contains(t, html, "-0.1272")

	buf.Reset()
	require.NoError(t, RenderMap(&buf, StationMap(nil)))
	assert.Contains(t, buf.String(), "const stations = [];")
	assert.Contains(t, buf.String(), "const sites = [];")
}
