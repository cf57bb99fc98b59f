package services

import "errors"

// Report service errors
var (
	ErrNotLoaded = errors.New("report data not loaded")
	ErrNoData    = errors.New("combined table is empty")
)
