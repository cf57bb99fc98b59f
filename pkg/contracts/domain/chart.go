package domain

// Palette colours used for the station-present / station-absent groups
const (
	ColorHasStation = "#12436D"
	ColorNoStation  = "#F46A25"
)

// Bar is one group of a has-station / no-station comparison
type Bar struct {
	Label      string   `json:"label"`
	HasStation bool     `json:"has_station"`
	Value      *float64 `json:"value"`
	Count      int      `json:"count"`
	Color      string   `json:"color"`
}

// BarChart is a two-bar comparison of one metric across the station partition
type BarChart struct {
	Metric     Metric     `json:"metric"`
	Title      string     `json:"title"`
	XAxisTitle string     `json:"x_axis_title"`
	YAxisTitle string     `json:"y_axis_title"`
	YRange     [2]float64 `json:"y_range"`
	Bars       []Bar      `json:"bars"`
}

// ChartKind identifies one of the report's bar charts
type ChartKind string

const (
	ChartObesity     ChartKind = "obesity"
	ChartChange      ChartKind = "change"
	ChartDeprivation ChartKind = "deprivation"
)
