package domain

// Station is a single bike-share docking point as returned by the station API.
type Station struct {
	ID         string  `json:"id" validate:"required"`
	CommonName string  `json:"commonName"`
	PlaceType  string  `json:"placeType"`
	Latitude   float64 `json:"lat" validate:"latitude"`
	Longitude  float64 `json:"lon" validate:"longitude"`
}

// Coordinate is a latitude/longitude pair in WGS84 degrees
type Coordinate struct {
	Latitude  float64 `json:"lat" yaml:"lat"`
	Longitude float64 `json:"lon" yaml:"lon"`
}

// Coordinate returns the station position
func (s Station) Coordinate() Coordinate {
	return Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}

// AreaCount is the number of stations located inside one LSOA.
type AreaCount struct {
	LSOA  string `json:"lsoa"`
	Count int    `json:"count"`
}

// AreaCounts is the aggregated station tally, keyed by LSOA code.
type AreaCounts map[string]int

// Total returns the number of stations across all areas
func (a AreaCounts) Total() int {
	total := 0
	for _, n := range a {
		total += n
	}
	return total
}

// Has reports whether at least one station lies in the given LSOA
func (a AreaCounts) Has(lsoa string) bool {
	return a[lsoa] > 0
}

// Column names of bikepoints.csv
var StationColumns = []string{"id", "commonName", "placeType", "lat", "lon"}

// Column names of la_counts.csv
var AreaCountColumns = []string{"lsoa", "count"}
