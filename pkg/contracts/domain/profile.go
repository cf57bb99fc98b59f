package domain

// Metric names a numeric column of the combined local-authority table.
type Metric string

const (
	MetricRank                     Metric = "rank"
	MetricDecile                   Metric = "decile"
	MetricBikepoint                Metric = "bikepoint"
	MetricReceptionOverweight      Metric = "5_yearolds_overweight"
	MetricReceptionObese           Metric = "5_yearolds_obese"
	MetricYearSixOverweight        Metric = "11_yearolds_overweight"
	MetricYearSixObese             Metric = "11_yearolds_obese"
	MetricAdultsOverweight         Metric = "adults_overweight"
	MetricAdultsObese              Metric = "adults_obese"
	MetricHistoricAdultsOverweight Metric = "historic_adults_overweight"
	MetricHistoricAdultsObese      Metric = "historic_adults_obese"
	MetricOverweightChange         Metric = "overweight_change"
	MetricObeseChange              Metric = "obese_change"
)

// ProfileColumns is the header of model_data.csv, in order
var ProfileColumns = []string{
	"la_code",
	"la_name",
	"rank",
	"decile",
	"london",
	"bikepoint",
	"bikepoint_binary",
	string(MetricReceptionOverweight),
	string(MetricReceptionObese),
	string(MetricYearSixOverweight),
	string(MetricYearSixObese),
	string(MetricAdultsOverweight),
	string(MetricAdultsObese),
	string(MetricHistoricAdultsOverweight),
	string(MetricHistoricAdultsObese),
	string(MetricOverweightChange),
	string(MetricObeseChange),
}

// PrevalenceMetrics are the childhood and adult percentage columns
var PrevalenceMetrics = []Metric{
	MetricReceptionOverweight,
	MetricReceptionObese,
	MetricYearSixOverweight,
	MetricYearSixObese,
	MetricAdultsOverweight,
	MetricAdultsObese,
	MetricHistoricAdultsOverweight,
	MetricHistoricAdultsObese,
}

// ChangeMetrics are the derived adult change columns
var ChangeMetrics = []Metric{
	MetricOverweightChange,
	MetricObeseChange,
}

// Indicators groups the obesity percentages of one local authority.
// A nil value means the source had no figure for that area.
type Indicators struct {
	ReceptionOverweight      *float64 `json:"5_yearolds_overweight"`
	ReceptionObese           *float64 `json:"5_yearolds_obese"`
	YearSixOverweight        *float64 `json:"11_yearolds_overweight"`
	YearSixObese             *float64 `json:"11_yearolds_obese"`
	AdultsOverweight         *float64 `json:"adults_overweight"`
	AdultsObese              *float64 `json:"adults_obese"`
	HistoricAdultsOverweight *float64 `json:"historic_adults_overweight"`
	HistoricAdultsObese      *float64 `json:"historic_adults_obese"`
	OverweightChange         *float64 `json:"overweight_change"`
	ObeseChange              *float64 `json:"obese_change"`
}

// AreaProfile is one row of the combined table: a local authority with its
// deprivation, station presence and obesity figures.
type AreaProfile struct {
	LACode          string  `json:"la_code" validate:"required"`
	LAName          string  `json:"la_name" validate:"required"`
	Rank            float64 `json:"rank"`
	Decile          float64 `json:"decile"`
	London          bool    `json:"london"`
	Bikepoint       float64 `json:"bikepoint"`
	BikepointBinary bool    `json:"bikepoint_binary"`
	Indicators
}

// Value returns the numeric column named by m. ok is false for unknown
// metrics; a nil value with ok true is a missing figure.
func (p *AreaProfile) Value(m Metric) (value *float64, ok bool) {
	switch m {
	case MetricRank:
		v := p.Rank
		return &v, true
	case MetricDecile:
		v := p.Decile
		return &v, true
	case MetricBikepoint:
		v := p.Bikepoint
		return &v, true
	case MetricReceptionOverweight:
		return p.ReceptionOverweight, true
	case MetricReceptionObese:
		return p.ReceptionObese, true
	case MetricYearSixOverweight:
		return p.YearSixOverweight, true
	case MetricYearSixObese:
		return p.YearSixObese, true
	case MetricAdultsOverweight:
		return p.AdultsOverweight, true
	case MetricAdultsObese:
		return p.AdultsObese, true
	case MetricHistoricAdultsOverweight:
		return p.HistoricAdultsOverweight, true
	case MetricHistoricAdultsObese:
		return p.HistoricAdultsObese, true
	case MetricOverweightChange:
		return p.OverweightChange, true
	case MetricObeseChange:
		return p.ObeseChange, true
	}
	return nil, false
}

// Complete reports whether every indicator has a figure. Rank and decile
// are always present.
func (p *AreaProfile) Complete() bool {
	for _, v := range []*float64{
		p.ReceptionOverweight, p.ReceptionObese, p.YearSixOverweight, p.YearSixObese,
		p.AdultsOverweight, p.AdultsObese, p.HistoricAdultsOverweight, p.HistoricAdultsObese,
		p.OverweightChange, p.ObeseChange,
	} {
		if v == nil {
			return false
		}
	}
	return true
}

// Float returns a pointer to a copy of v
func Float(v float64) *float64 {
	return &v
}
