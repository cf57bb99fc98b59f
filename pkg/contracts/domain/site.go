package domain

// CandidateSite is an annotated expansion proposal shown on the expansion map
type CandidateSite struct {
	Name      string   `json:"name" yaml:"name" validate:"required"`
	Verdict   string   `json:"verdict" yaml:"verdict" validate:"required"`
	Latitude  float64  `json:"lat" yaml:"lat" validate:"latitude"`
	Longitude float64  `json:"lon" yaml:"lon" validate:"longitude"`
	Radius    float64  `json:"radius" yaml:"radius" validate:"gt=0"`
	Color     string   `json:"color" yaml:"color" validate:"required"`
	Summary   string   `json:"summary" yaml:"summary" validate:"required"`
	Reasons   []string `json:"reasons" yaml:"reasons" validate:"min=1,dive,required"`
}

// Title is the tooltip heading, e.g. "Strongly Recommended: South East"
func (s CandidateSite) Title() string {
	return s.Verdict + ": " + s.Name
}
