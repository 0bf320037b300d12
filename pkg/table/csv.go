package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CSVDirSource reads each table from <Dir>/<name>.csv. Cells are returned as
// strings; empty cells are nil.
type CSVDirSource struct {
	Dir string
}

// ReadTable implements Source
func (s *CSVDirSource) ReadTable(name string, rename map[string]string) ([]Row, error) {
	path := filepath.Join(s.Dir, name+".csv")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
		}
		return nil, fmt.Errorf("opening table %s: %w", name, err)
	}
	defer f.Close()

	rows, err := ReadCSV(f, rename)
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", name, err)
	}
	return rows, nil
}

// ReadCSV reads a header row followed by data rows
func ReadCSV(r io.Reader, rename map[string]string) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows []Row
	for index := 1; ; index++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if blank(record) {
			index--
			continue
		}
		row := NewRow(index)
		for i, h := range header {
			if !keepColumn(h) {
				continue
			}
			var v any
			if i < len(record) {
				if cell := strings.TrimSpace(record[i]); cell != "" {
					v = cell
				}
			}
			row.Set(renameColumn(h, rename), v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
