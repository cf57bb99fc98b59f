// Package dataset loads the delimited and spreadsheet tables the pipeline
// consumes into an in-memory Table addressed by column name.
//
// CSV files are read with encoding/csv (a UTF-8 byte order mark on the
// header is dropped); .xlsx workbooks are read with excelize, taking the
// first sheet whose header row holds every required column.
package dataset
