package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"bikepulse/internal/config"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/infrastructure"
	"bikepulse/pkg/contracts/domain"
)

// MaxBatchSize is the most coordinates the geocoding API accepts per request
const MaxBatchSize = 100

// geolocation is one entry of a bulk reverse-geocoding request
type geolocation struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Limit     int     `json:"limit"`
	Radius    int     `json:"radius"`
}

type geocodeRequest struct {
	Geolocations []geolocation `json:"geolocations"`
}

type geocodeResponse struct {
	Status int `json:"status"`
	Result []struct {
		Query  map[string]interface{} `json:"query"`
		Result []struct {
			Codes map[string]string `json:"codes"`
		} `json:"result"`
	} `json:"result"`
}

// GeocoderOptions configures the bulk reverse geocoder
type GeocoderOptions struct {
	URL            string
	BatchSize      int
	Radius         int
	Limit          int
	RequestsPerSec float64
	Burst          int
}

// GeocoderOptionsFromConfig maps the sources section onto GeocoderOptions
func GeocoderOptionsFromConfig(cfg config.SourcesConfig) GeocoderOptions {
	return GeocoderOptions{
		URL:            cfg.PostcodesURL,
		BatchSize:      cfg.BatchSize,
		Radius:         cfg.Radius,
		Limit:          cfg.Limit,
		RequestsPerSec: cfg.RequestsPerSec,
		Burst:          cfg.Burst,
	}
}

// GeocodeStats summarises one geocoding run
type GeocodeStats struct {
	Stations int
	Batches  int
	Located  int
	Skipped  int
}

// Geocoder places stations in LSOAs with the bulk reverse-geocoding API
type Geocoder struct {
	client  *Client
	opts    GeocoderOptions
	limiter *rate.Limiter
	metrics *infrastructure.PipelineMetrics
}

// NewGeocoder creates a geocoder. RequestsPerSec <= 0 disables pacing.
func NewGeocoder(client *Client, opts GeocoderOptions, metrics *infrastructure.PipelineMetrics) *Geocoder {
	if opts.BatchSize <= 0 || opts.BatchSize > MaxBatchSize {
		opts.BatchSize = MaxBatchSize
	}
	if opts.Limit <= 0 {
		opts.Limit = 1
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSec > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSec), burst)
	}

	return &Geocoder{client: client, opts: opts, limiter: limiter, metrics: metrics}
}

// CountAreas geocodes every station and tallies stations per LSOA. Stations
// are posted in batches of BatchSize, the last batch holding the remainder.
// A failed batch aborts the whole run and no partial counts are returned.
func (g *Geocoder) CountAreas(ctx context.Context, stations []domain.Station) (domain.AreaCounts, GeocodeStats, error) {
	stats := GeocodeStats{Stations: len(stations)}
	if err := g.client.checkURL("geocoder url", g.opts.URL); err != nil {
		return nil, stats, err
	}

	ctx, span := g.client.tracer.Start(ctx, "fetcher.CountAreas")
	defer span.End()

	counts := make(domain.AreaCounts)
	for start := 0; start < len(stations); start += g.opts.BatchSize {
		end := start + g.opts.BatchSize
		if end > len(stations) {
			end = len(stations)
		}

		if err := g.limiter.Wait(ctx); err != nil {
			return nil, stats, err
		}

		located, skipped, err := g.geocodeBatch(ctx, stations[start:end], counts)
		if err != nil {
			infrastructure.RecordError(ctx, err)
			return nil, stats, fmt.Errorf("geocode batch %d (stations %d-%d): %w", stats.Batches+1, start, end-1, err)
		}

		stats.Batches++
		stats.Located += located
		stats.Skipped += skipped
		g.metrics.RecordGeocodeBatch(ctx, skipped)
	}

	span.SetAttributes(
		attribute.Int("batches", stats.Batches),
		attribute.Int("located", stats.Located),
		attribute.Int("skipped", stats.Skipped),
	)
	g.client.logger.InfoContext(ctx, "geocoded stations",
		slog.Int("stations", stats.Stations),
		slog.Int("batches", stats.Batches),
		slog.Int("located", stats.Located),
		slog.Int("skipped", stats.Skipped),
		slog.Int("areas", len(counts)))

	return counts, stats, nil
}

// geocodeBatch posts one batch and adds its located stations to counts
func (g *Geocoder) geocodeBatch(ctx context.Context, batch []domain.Station, counts domain.AreaCounts) (located, skipped int, err error) {
	req := geocodeRequest{Geolocations: make([]geolocation, len(batch))}
	for i, s := range batch {
		req.Geolocations[i] = geolocation{
			Longitude: s.Longitude,
			Latitude:  s.Latitude,
			Limit:     g.opts.Limit,
			Radius:    g.opts.Radius,
		}
	}

	var resp geocodeResponse
	if err := g.client.doJSON(ctx, http.MethodPost, g.opts.URL, req, &resp); err != nil {
		return 0, 0, err
	}
	if len(resp.Result) != len(batch) {
		return 0, 0, apierrors.NewParsingError(
			fmt.Sprintf("geocoder returned %d results for %d coordinates", len(resp.Result), len(batch)), nil)
	}

	// pending keeps the batch atomic: counts only change once it fully parsed
	pending := make(map[string]int)
	for i, r := range resp.Result {
		lsoa, ok := "", false
		if len(r.Result) > 0 {
			lsoa, ok = lsoaCode(r.Result[0].Codes)
		}
		if !ok {
			skipped++
			g.client.logger.DebugContext(ctx, "skipping station without administrative codes",
				slog.String("station", batch[i].ID),
				slog.Float64("lat", batch[i].Latitude),
				slog.Float64("lon", batch[i].Longitude))
			continue
		}
		pending[lsoa]++
		located++
	}

	for lsoa, n := range pending {
		counts[lsoa] += n
	}
	return located, skipped, nil
}

// lsoaCode extracts the LSOA from a result's codes. Results outside the
// parliamentary geography (offshore points, bad coordinates) are rejected.
func lsoaCode(codes map[string]string) (string, bool) {
	if codes == nil || codes["parliamentary_constituency"] == "" {
		return "", false
	}
	lsoa := codes["lsoa"]
	return lsoa, lsoa != ""
}

// SortedAreaCounts returns counts as rows ordered by LSOA code
func SortedAreaCounts(counts domain.AreaCounts) []domain.AreaCount {
	out := make([]domain.AreaCount, 0, len(counts))
	for lsoa, n := range counts {
		out = append(out, domain.AreaCount{LSOA: lsoa, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LSOA < out[j].LSOA })
	return out
}
