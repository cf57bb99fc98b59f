package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bikepulse/internal/config"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/infrastructure"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths   *config.Paths
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewCSVWriter creates a new CSV writer instance. metrics may be nil.
func NewCSVWriter(paths *config.Paths, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *CSVWriter {
	return &CSVWriter{
		paths:   paths,
		logger:  infrastructure.WithComponent(logger, "exporter"),
		metrics: metrics,
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file, replacing any previous content
func (w *CSVWriter) WriteCSV(ctx context.Context, filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	w.logger.InfoContext(ctx, "Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	stream, err := w.CreateStreamWriter(filePath, options.Headers, options.BOMPrefix)
	if err != nil {
		return err
	}

	for i, record := range options.Records {
		if err := stream.WriteRecord(record); err != nil {
			stream.file.Close()
			return apierrors.NewStorageError(fmt.Sprintf("failed to write record %d", i), err).
				WithContext("file", fullPath)
		}
	}

	if err := stream.Close(); err != nil {
		return apierrors.NewStorageError("failed to flush "+fullPath, err)
	}

	w.metrics.RecordRowsWritten(ctx, strings.TrimSuffix(filepath.Base(fullPath), stagedSuffix), len(options.Records))
	return nil
}

// Output is one file of a set written by ReplaceAll
type Output struct {
	Name    string
	Options WriteOptions
}

// stagedSuffix marks a file that has been written but not yet moved into place
const stagedSuffix = ".partial"

// ReplaceAll writes every output next to its target and renames the set
// into place only once all of them were written. If any write fails the
// previous files are left as they were and the staged copies are removed.
func (w *CSVWriter) ReplaceAll(ctx context.Context, outputs ...Output) error {
	staged := make([]string, 0, len(outputs))
	cleanup := func() {
		for _, out := range staged {
			os.Remove(w.resolvePath(out + stagedSuffix))
		}
	}

	for _, out := range outputs {
		if err := w.WriteCSV(ctx, out.Name+stagedSuffix, out.Options); err != nil {
			os.Remove(w.resolvePath(out.Name + stagedSuffix))
			cleanup()
			return err
		}
		staged = append(staged, out.Name)
	}

	for i, name := range staged {
		target := w.resolvePath(name)
		if err := os.Rename(target+stagedSuffix, target); err != nil {
			staged = staged[i:]
			cleanup()
			return apierrors.NewStorageError("failed to replace "+target, err).
				WithContext("file", target)
		}
	}

	w.logger.InfoContext(ctx, "Replaced CSV files", slog.Int("file_count", len(outputs)))
	return nil
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter opens filePath for streaming, truncating it, and writes
// the BOM and headers
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string, bom bool) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	w.logger.Debug("Creating CSV stream writer",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("header_count", len(headers)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, apierrors.NewStorageError("failed to create directory", err).
			WithContext("file", fullPath)
	}

	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, apierrors.NewStorageError("failed to open file", err).
			WithContext("file", fullPath)
	}

	// Write BOM if requested (helps Excel recognize UTF-8)
	if bom {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			file.Close()
			return nil, apierrors.NewStorageError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, apierrors.NewStorageError("failed to write headers", err)
		}
	}

	return &StreamWriter{file: file, writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// resolvePath places relative names under the data directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return filepath.Join(w.paths.DataDir, filePath)
}
