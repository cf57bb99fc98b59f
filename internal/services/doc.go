// Package services implements the layer between the HTTP handlers and the
// report package.
//
// ReportService loads model_data.csv and bikepoints.csv once at startup and
// answers every later request from that in-memory, read-only copy; charts
// are recomputed per request. HealthService reports liveness plus what was
// loaded and when.
//
// Services take their logger by injection and return errors from
// internal/errors so handlers can map them onto problem responses.
package services
