package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"bikepulse/internal/config"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/infrastructure"
)

// maxErrorBody bounds how much of a failed response is kept for the error
const maxErrorBody = 512

// StatusError is returned when a remote API answers with a non-2xx status
type StatusError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Status     string
	Body       string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %s", e.Method, e.Endpoint, e.Status)
}

// Options configures the HTTP client shared by the fetchers
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// Client is a small JSON-over-HTTP client with tracing and logging
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
	tracer     trace.Tracer
	validate   *validator.Validate
}

// New creates a client. A zero timeout defaults to 30 seconds.
func New(opts Options, logger *slog.Logger) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		userAgent:  opts.UserAgent,
		logger:     infrastructure.WithComponent(logger, "fetcher"),
		tracer:     otel.Tracer(infrastructure.MeterName),
		validate:   validator.New(),
	}
}

// NewFromConfig creates a client from the sources section
func NewFromConfig(cfg config.SourcesConfig, logger *slog.Logger) *Client {
	return New(Options{Timeout: cfg.Timeout, UserAgent: cfg.UserAgent}, logger)
}

// checkURL is the precondition every fetch runs before any I/O: the
// endpoint must be an absolute http(s) URL.
func (c *Client) checkURL(field, raw string) error {
	if err := c.validate.Var(raw, "required,url"); err != nil {
		return apierrors.NewAppValidationError(field+" must be an absolute URL", err).
			WithContext("field", field).
			WithContext("value", raw)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apierrors.NewAppValidationError(field+" must use http or https", err).
			WithContext("field", field).
			WithContext("value", raw)
	}
	return nil
}

// doJSON sends body (if non-nil) as JSON and decodes a 2xx response into out
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apierrors.NewParsingError("failed to encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apierrors.NewAppValidationError("failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierrors.NewNetworkError(fmt.Sprintf("%s %s failed", method, endpoint), err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "remote call",
		slog.String("method", method),
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(snippet),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apierrors.NewParsingError(fmt.Sprintf("failed to decode %s response", endpoint), err)
	}
	return nil
}
