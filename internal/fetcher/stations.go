package fetcher

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"bikepulse/internal/infrastructure"
	"bikepulse/pkg/contracts/domain"
)

// FetchStations downloads the station list from url. Extra members of each
// record (additionalProperties, children, ...) are ignored.
func (c *Client) FetchStations(ctx context.Context, url string) ([]domain.Station, error) {
	if err := c.checkURL("station url", url); err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "fetcher.FetchStations")
	defer span.End()

	var stations []domain.Station
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &stations); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("stations", len(stations)))
	c.logger.InfoContext(ctx, "fetched stations", slog.Int("count", len(stations)))
	return stations, nil
}
