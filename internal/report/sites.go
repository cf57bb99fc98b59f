package report

import (
	_ "embed"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	apierrors "bikepulse/internal/errors"
	"bikepulse/pkg/contracts/domain"
)

//go:embed sites.yaml
var sitesYAML []byte

// Map view settings shared by both maps
var (
	LondonCentre = domain.Coordinate{Latitude: 51.5074, Longitude: -0.1272}
)

const (
	MapZoom           = 12
	StationMarkerSize = 2
)

// CandidateSites returns the built-in expansion proposals
func CandidateSites() ([]domain.CandidateSite, error) {
	return ParseSites(sitesYAML)
}

// ParseSites decodes and validates a YAML list of candidate sites
func ParseSites(data []byte) ([]domain.CandidateSite, error) {
	var sites []domain.CandidateSite
	if err := yaml.Unmarshal(data, &sites); err != nil {
		return nil, apierrors.NewConfigError("invalid candidate sites", err)
	}

	validate := validator.New()
	for i, s := range sites {
		if err := validate.Struct(s); err != nil {
			return nil, apierrors.NewConfigError(fmt.Sprintf("candidate site %d (%s)", i+1, s.Name), err)
		}
	}
	return sites, nil
}
