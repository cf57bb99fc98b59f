package exporter

import (
	"context"

	"bikepulse/internal/config"
	"bikepulse/pkg/contracts/domain"
)

// StationsOutput renders bikepoints.csv in fetch order
func StationsOutput(stations []domain.Station) Output {
	records := make([][]string, len(stations))
	for i, s := range stations {
		records[i] = []string{
			s.ID,
			s.CommonName,
			s.PlaceType,
			formatFloat(s.Latitude),
			formatFloat(s.Longitude),
		}
	}
	return Output{Name: config.StationsFile, Options: WriteOptions{
		Headers: domain.StationColumns,
		Records: records,
	}}
}

// AreaCountsOutput renders la_counts.csv; rows must already be in LSOA order
func AreaCountsOutput(counts []domain.AreaCount) Output {
	records := make([][]string, len(counts))
	for i, c := range counts {
		records[i] = []string{c.LSOA, formatInt(c.Count)}
	}
	return Output{Name: config.AreaCountFile, Options: WriteOptions{
		Headers: domain.AreaCountColumns,
		Records: records,
	}}
}

// WriteProfiles writes model_data.csv in the order given
func (w *CSVWriter) WriteProfiles(ctx context.Context, profiles []domain.AreaProfile) error {
	records := make([][]string, len(profiles))
	for i := range profiles {
		records[i] = ProfileRecord(&profiles[i])
	}
	return w.WriteCSV(ctx, config.ModelDataFile, WriteOptions{
		Headers: domain.ProfileColumns,
		Records: records,
	})
}

// ProfileRecord renders one profile in model_data.csv column order
func ProfileRecord(p *domain.AreaProfile) []string {
	return []string{
		p.LACode,
		p.LAName,
		formatFloat(p.Rank),
		formatFloat(p.Decile),
		formatBool(p.London),
		formatFloat(p.Bikepoint),
		formatBool(p.BikepointBinary),
		formatOptional(p.ReceptionOverweight),
		formatOptional(p.ReceptionObese),
		formatOptional(p.YearSixOverweight),
		formatOptional(p.YearSixObese),
		formatOptional(p.AdultsOverweight),
		formatOptional(p.AdultsObese),
		formatOptional(p.HistoricAdultsOverweight),
		formatOptional(p.HistoricAdultsObese),
		formatOptional(p.OverweightChange),
		formatOptional(p.ObeseChange),
	}
}
