// Package table reads named tables of a network-design workbook into ordered
// rows.
package table

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrTableNotFound is returned when a workbook has no table with the
// requested name
var ErrTableNotFound = errors.New("table not found")

// UseColumn is the name of the per-row inclusion flag
const UseColumn = "use"

// Source reads a named table. rename maps source column headers to field
// names; headers not in the map keep their name.
type Source interface {
	ReadTable(name string, rename map[string]string) ([]Row, error)
}

// Row is one table row. Columns keeps the header order; Index is the 1-based
// data-row number used in error messages.
type Row struct {
	Index   int
	Columns []string
	Values  map[string]any
}

// NewRow creates an empty row
func NewRow(index int) Row {
	return Row{Index: index, Values: make(map[string]any)}
}

// Set appends a column, or replaces its value if already present
func (r *Row) Set(col string, value any) {
	if _, ok := r.Values[col]; !ok {
		r.Columns = append(r.Columns, col)
	}
	r.Values[col] = value
}

// Get returns a column value and whether the column exists
func (r Row) Get(col string) (any, bool) {
	v, ok := r.Values[col]
	return v, ok
}

// Value returns a column value, or nil
func (r Row) Value(col string) any {
	return r.Values[col]
}

// String returns the column value as a string, or "" when absent
func (r Row) String(col string) string {
	v := r.Values[col]
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// keepColumn drops empty and spreadsheet-generated "Unnamed" headers
func keepColumn(header string) bool {
	return header != "" && !strings.HasPrefix(header, "Unnamed")
}

func renameColumn(header string, rename map[string]string) string {
	if to, ok := rename[header]; ok {
		return to
	}
	return header
}

// FilterByUseFlag returns the rows whose use flag is truthy, in their
// original order. A missing or empty flag excludes the row.
func FilterByUseFlag(rows []Row) []Row {
	var out []Row
	for _, r := range rows {
		if IsTruthy(r.Value(UseColumn)) {
			out = append(out, r)
		}
	}
	return out
}

// IsTruthy interprets a cell as a boolean flag
func IsTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case uint64:
		return t != 0
	case float64:
		return t != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		switch s {
		case "true", "yes", "y", "x":
			return true
		case "", "false", "no", "n":
			return false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f != 0
		}
		return false
	}
	return false
}

// ResolvePath returns the absolute, cleaned form of path. The path must
// exist.
func ResolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("path %s is not valid: %w", abs, err)
	}
	return abs, nil
}

// Open opens a workbook. A directory is read as one CSV file per table; a
// .yaml/.yml file as a YAML workbook.
func Open(path string) (Source, error) {
	abs, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return &CSVDirSource{Dir: abs}, nil
	}
	switch strings.ToLower(filepath.Ext(abs)) {
	case ".yaml", ".yml":
		return LoadYAMLWorkbook(abs)
	}
	return nil, fmt.Errorf("unsupported workbook format: %s", abs)
}
