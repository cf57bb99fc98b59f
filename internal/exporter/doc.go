// Package exporter writes the pipeline's CSV artifacts.
//
// CSVWriter is the low-level writer: it resolves relative names under the
// data directory, truncates existing files and optionally prefixes a UTF-8
// BOM. The artifact helpers on top of it fix each file's schema:
//
//	bikepoints.csv  id,commonName,placeType,lat,lon
//	la_counts.csv   lsoa,count (sorted by lsoa)
//	model_data.csv  one row per local authority, sorted by la_name
//
// Floats are written in their shortest round-tripping form and missing
// values as empty cells, so rerunning on the same inputs gives identical
// bytes.
package exporter
