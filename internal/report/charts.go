package report

import (
	"fmt"
	"strings"
	"unicode"

	apierrors "bikepulse/internal/errors"
	"bikepulse/pkg/contracts/domain"
)

// StationAxisTitle labels the x axis of the dropdown-driven charts
const StationAxisTitle = "Does the local authority have a bikepoint?"

// ChartSpec describes one of the report's bar charts
type ChartSpec struct {
	Kind    domain.ChartKind
	Options []domain.Metric
	Default domain.Metric
	YRange  [2]float64

	// Fixed labels; empty means derived from the metric name
	Title      string
	XAxisTitle string
	YAxisTitle string
}

// Charts lists the three charts of the report page
var Charts = map[domain.ChartKind]ChartSpec{
	domain.ChartObesity: {
		Kind:    domain.ChartObesity,
		Options: domain.PrevalenceMetrics,
		Default: domain.PrevalenceMetrics[0],
		YRange:  [2]float64{0, 60},
	},
	domain.ChartChange: {
		Kind:    domain.ChartChange,
		Options: domain.ChangeMetrics,
		Default: domain.MetricOverweightChange,
		YRange:  [2]float64{-3, 3},
	},
	domain.ChartDeprivation: {
		Kind:       domain.ChartDeprivation,
		Options:    []domain.Metric{domain.MetricRank},
		Default:    domain.MetricRank,
		YRange:     [2]float64{0, 20000},
		Title:      "How Deprivation relates to BikePoint presence in London",
		XAxisTitle: "Does the local authority have a BikePoint?",
		YAxisTitle: "Deprivation Rank (1 = Most Deprived)",
	},
}

// LookupChart returns the spec of kind
func LookupChart(kind domain.ChartKind) (ChartSpec, error) {
	spec, ok := Charts[kind]
	if !ok {
		return ChartSpec{}, apierrors.ErrValidation("chart", fmt.Sprintf("unknown chart %q", kind))
	}
	return spec, nil
}

// Allows reports whether m is one of the chart's dropdown options
func (s ChartSpec) Allows(m domain.Metric) bool {
	for _, o := range s.Options {
		if o == m {
			return true
		}
	}
	return false
}

// Build computes the chart for metric over profiles. An empty metric
// selects the default.
func (s ChartSpec) Build(profiles []domain.AreaProfile, metric domain.Metric) (*domain.BarChart, error) {
	if metric == "" {
		metric = s.Default
	}
	if !s.Allows(metric) {
		return nil, apierrors.ErrValidation("metric",
			fmt.Sprintf("metric %q is not available for the %s chart", metric, s.Kind))
	}

	bars, err := GroupMeans(profiles, metric)
	if err != nil {
		return nil, err
	}

	label := MetricTitle(metric) + "(%)"
	chart := &domain.BarChart{
		Metric:     metric,
		Title:      label + " vs BikePoint (present/absent)",
		XAxisTitle: StationAxisTitle,
		YAxisTitle: label,
		YRange:     s.YRange,
		Bars:       bars,
	}
	if s.Title != "" {
		chart.Title = s.Title
	}
	if s.XAxisTitle != "" {
		chart.XAxisTitle = s.XAxisTitle
	}
	if s.YAxisTitle != "" {
		chart.YAxisTitle = s.YAxisTitle
	}
	return chart, nil
}

// CompleteCases keeps the profiles with a figure in every column. All charts
// are computed over this set, so an authority missing any figure is left
// out of every bar.
func CompleteCases(profiles []domain.AreaProfile) []domain.AreaProfile {
	out := make([]domain.AreaProfile, 0, len(profiles))
	for i := range profiles {
		if profiles[i].Complete() {
			out = append(out, profiles[i])
		}
	}
	return out
}

// GroupMeans averages metric over the has-station and no-station groups,
// in that order. Missing values are left out of their group's mean; a
// group with no values gets a nil mean.
func GroupMeans(profiles []domain.AreaProfile, metric domain.Metric) ([]domain.Bar, error) {
	bars := []domain.Bar{
		{Label: "True", HasStation: true, Color: domain.ColorHasStation},
		{Label: "False", HasStation: false, Color: domain.ColorNoStation},
	}
	sums := [2]float64{}

	for i := range profiles {
		p := &profiles[i]
		v, ok := p.Value(metric)
		if !ok {
			return nil, apierrors.ErrValidation("metric", fmt.Sprintf("unknown metric %q", metric))
		}
		if v == nil {
			continue
		}
		g := 1
		if p.BikepointBinary {
			g = 0
		}
		sums[g] += *v
		bars[g].Count++
	}

	for g := range bars {
		if bars[g].Count > 0 {
			mean := sums[g] / float64(bars[g].Count)
			bars[g].Value = &mean
		}
	}
	return bars, nil
}

// MetricTitle turns a column name into an axis label:
// "obese_change" -> "Obese Change", "5_yearolds_obese" -> "5 Yearolds Obese"
func MetricTitle(m domain.Metric) string {
	s := strings.ReplaceAll(string(m), "_", " ")
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if prevLetter {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToUpper(r))
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}
