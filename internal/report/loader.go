package report

import (
	"fmt"
	"strconv"

	"bikepulse/internal/dataset"
	apierrors "bikepulse/internal/errors"
	"bikepulse/pkg/contracts/domain"
)

// LoadProfiles reads model_data.csv
func LoadProfiles(path string) ([]domain.AreaProfile, error) {
	t, err := dataset.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require(domain.ProfileColumns...); err != nil {
		return nil, err
	}

	profiles := make([]domain.AreaProfile, 0, t.Len())
	err = t.Each(func(r dataset.Row) error {
		p, err := parseProfile(r)
		if err != nil {
			return fmt.Errorf("%s line %d: %w", t.Name, r.Line, err)
		}
		profiles = append(profiles, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func parseProfile(r dataset.Row) (domain.AreaProfile, error) {
	p := domain.AreaProfile{
		LACode: r.Get("la_code"),
		LAName: r.Get("la_name"),
	}

	var err error
	if p.London, err = parseBool(r.Get("london")); err != nil {
		return p, err
	}
	if p.BikepointBinary, err = parseBool(r.Get("bikepoint_binary")); err != nil {
		return p, err
	}

	required := []struct {
		column string
		dst    *float64
	}{
		{"rank", &p.Rank},
		{"decile", &p.Decile},
		{"bikepoint", &p.Bikepoint},
	}
	for _, f := range required {
		v, err := dataset.ParseOptionalFloat(r.Get(f.column))
		if err != nil {
			return p, err
		}
		if v == nil {
			return p, apierrors.NewParsingError(f.column+" is empty", nil)
		}
		*f.dst = *v
	}

	optional := []struct {
		metric domain.Metric
		dst    **float64
	}{
		{domain.MetricReceptionOverweight, &p.ReceptionOverweight},
		{domain.MetricReceptionObese, &p.ReceptionObese},
		{domain.MetricYearSixOverweight, &p.YearSixOverweight},
		{domain.MetricYearSixObese, &p.YearSixObese},
		{domain.MetricAdultsOverweight, &p.AdultsOverweight},
		{domain.MetricAdultsObese, &p.AdultsObese},
		{domain.MetricHistoricAdultsOverweight, &p.HistoricAdultsOverweight},
		{domain.MetricHistoricAdultsObese, &p.HistoricAdultsObese},
		{domain.MetricOverweightChange, &p.OverweightChange},
		{domain.MetricObeseChange, &p.ObeseChange},
	}
	for _, f := range optional {
		if *f.dst, err = dataset.ParseOptionalFloat(r.Get(string(f.metric))); err != nil {
			return p, err
		}
	}
	return p, nil
}

func parseBool(s string) (bool, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, apierrors.NewParsingError("invalid boolean "+strconv.Quote(s), err)
	}
	return b, nil
}

// LoadStations reads bikepoints.csv. Rows with unparseable coordinates are
// an error; the map has nothing sensible to draw for them.
func LoadStations(path string) ([]domain.Station, error) {
	t, err := dataset.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require(domain.StationColumns...); err != nil {
		return nil, err
	}

	stations := make([]domain.Station, 0, t.Len())
	err = t.Each(func(r dataset.Row) error {
		lat, err := strconv.ParseFloat(r.Get("lat"), 64)
		if err != nil {
			return apierrors.NewParsingError(fmt.Sprintf("%s line %d: invalid lat", t.Name, r.Line), err)
		}
		lon, err := strconv.ParseFloat(r.Get("lon"), 64)
		if err != nil {
			return apierrors.NewParsingError(fmt.Sprintf("%s line %d: invalid lon", t.Name, r.Line), err)
		}
		stations = append(stations, domain.Station{
			ID:         r.Get("id"),
			CommonName: r.Get("commonName"),
			PlaceType:  r.Get("placeType"),
			Latitude:   lat,
			Longitude:  lon,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stations, nil
}
