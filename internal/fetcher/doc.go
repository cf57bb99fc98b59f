// Package fetcher talks to the two remote APIs the pipeline starts from: the
// bike-share station list (GET, JSON array) and the batched reverse-geocoding
// endpoint (POST, at most 100 coordinates per request) used to place every
// station in an LSOA.
//
// A non-success status from either API aborts the run with a *StatusError.
// Geocoding results without administrative codes are skipped and counted,
// never treated as failures.
package fetcher
