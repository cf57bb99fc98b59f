package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apierrors "bikepulse/internal/errors"
)

const utf8BOM = "\ufeff"

// ReadFile loads a .csv or .xlsx file. For workbooks, required names the
// columns used to pick the sheet.
func ReadFile(path string, required ...string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, required...)
	default:
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, apierrors.NewNotFoundError(path)
			}
			return nil, apierrors.NewStorageError("failed to open "+path, err)
		}
		defer f.Close()
		return ReadCSV(f, filepath.Base(path))
	}
}

// ReadCSV parses a header-first CSV stream. Every record must have the
// header's number of fields.
func ReadCSV(r io.Reader, name string) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apierrors.NewParsingError(name+": empty file", nil)
	}
	if err != nil {
		return nil, apierrors.NewParsingError(name+": failed to read header", err)
	}
	header = normalizeHeader(header)

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apierrors.NewParsingError(name+": malformed record", err)
		}
		rows = append(rows, record)
	}

	return NewTable(name, header, rows), nil
}

// ReadXLSX reads the first sheet whose header row contains every required
// column (or the first sheet when required is empty).
func ReadXLSX(path string, required ...string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apierrors.NewNotFoundError(path)
		}
		return nil, apierrors.NewParsingError("failed to open workbook "+path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, apierrors.NewParsingError(fmt.Sprintf("%s: failed to read sheet %q", name, sheet), err)
		}
		if len(rows) == 0 {
			continue
		}

		t := NewTable(name, normalizeHeader(rows[0]), rows[1:])
		if t.Require(required...) == nil {
			return t, nil
		}
	}

	return nil, apierrors.NewParsingError(
		fmt.Sprintf("%s: no sheet has columns %s", name, strings.Join(required, ", ")), nil)
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}
