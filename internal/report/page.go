package report

import (
	"embed"
	"html/template"
	"io"

	apierrors "bikepulse/internal/errors"
	"bikepulse/pkg/contracts/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// PageTitle is the heading of the report page
const PageTitle = "BikePoint Data Review"

// PageData feeds templates/page.html
type PageData struct {
	Title    string
	Stations int
	Obesity  ChartSpec
	Change   ChartSpec
}

// MapData feeds templates/map.html. The station map leaves Sites empty; the
// expansion map draws both.
type MapData struct {
	Title      string
	Centre     domain.Coordinate
	Zoom       int
	MarkerSize int
	Stations   []domain.Station
	Sites      []domain.CandidateSite
}

// NewPageData builds the page model for a loaded table
func NewPageData(stationCount int) PageData {
	return PageData{
		Title:    PageTitle,
		Stations: stationCount,
		Obesity:  Charts[domain.ChartObesity],
		Change:   Charts[domain.ChartChange],
	}
}

// StationMap is the map of current stations
func StationMap(stations []domain.Station) MapData {
	return MapData{
		Title:      "BikePoint stations",
		Centre:     LondonCentre,
		Zoom:       MapZoom,
		MarkerSize: StationMarkerSize,
		Stations:   nonNil(stations),
		Sites:      []domain.CandidateSite{},
	}
}

// ExpansionMap is the station map overlaid with the candidate sites
func ExpansionMap(stations []domain.Station, sites []domain.CandidateSite) MapData {
	m := StationMap(stations)
	m.Title = "BikePoint expansion"
	if sites != nil {
		m.Sites = sites
	}
	return m
}

// RenderPage writes the report page
func RenderPage(w io.Writer, data PageData) error {
	return execute(w, "page.html", data)
}

// RenderMap writes a standalone Leaflet map page
func RenderMap(w io.Writer, data MapData) error {
	return execute(w, "map.html", data)
}

func execute(w io.Writer, name string, data interface{}) error {
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		return apierrors.NewAppError(apierrors.ErrTypeParsing, "failed to render "+name, err)
	}
	return nil
}

// nonNil keeps the template from emitting null for an empty station list
func nonNil(stations []domain.Station) []domain.Station {
	if stations == nil {
		return []domain.Station{}
	}
	return stations
}
