package dataset

import (
	"fmt"
	"sort"
	"strings"

	apierrors "bikepulse/internal/errors"
)

// Table is a header row plus string records
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
	index  map[string]int
}

// NewTable builds a table, padding short rows to the header width
func NewTable(name string, header []string, rows [][]string) *Table {
	t := &Table{Name: name, Header: header, Rows: rows}
	for i, row := range t.Rows {
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			t.Rows[i] = padded
		}
	}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		t.index[h] = i
	}
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Has reports whether the table has a column with this name
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Rename renames columns per mapping; columns absent from the table are
// ignored so one mapping can serve several source layouts.
func (t *Table) Rename(mapping map[string]string) {
	for i, h := range t.Header {
		if to, ok := mapping[h]; ok {
			t.Header[i] = to
		}
	}
	t.reindex()
}

// Require returns a parsing error naming every missing column
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return apierrors.NewParsingError(
		fmt.Sprintf("%s: missing columns %s", t.Name, strings.Join(missing, ", ")), nil).
		WithContext("table", t.Name).
		WithContext("missing", missing)
}

// Row is a single record viewed through its table's header
type Row struct {
	table  *Table
	values []string
	Line   int
}

// Get returns the trimmed cell for column, or "" if there is no such column
func (r Row) Get(column string) string {
	i, ok := r.table.index[column]
	if !ok || i >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[i])
}

// Each calls fn for every row in order, stopping at the first error
func (t *Table) Each(fn func(Row) error) error {
	for i, values := range t.Rows {
		// line numbers are 1-based and count the header
		if err := fn(Row{table: t, values: values, Line: i + 2}); err != nil {
			return err
		}
	}
	return nil
}

// Filter returns a new table holding the rows for which keep is true
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{Name: t.Name, Header: t.Header, index: t.index}
	for i, values := range t.Rows {
		if keep(Row{table: t, values: values, Line: i + 2}) {
			out.Rows = append(out.Rows, values)
		}
	}
	return out
}

// Equals returns a predicate matching rows whose column equals value
func Equals(column, value string) func(Row) bool {
	return func(r Row) bool {
		return r.Get(column) == value
	}
}
