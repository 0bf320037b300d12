package table

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLWorkbookSource holds a workbook of the form
//
//	tables:
//	  physical_links:
//	    - {use: 1, a_host: R1, a_interface: Gi0/0, ...}
//
// Column order within each row mapping is preserved.
type YAMLWorkbookSource struct {
	tables map[string]*yaml.Node
	order  []string
}

// LoadYAMLWorkbook reads a YAML workbook file
func LoadYAMLWorkbook(path string) (*YAMLWorkbookSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()
	return ParseYAMLWorkbook(f)
}

// ParseYAMLWorkbook reads a YAML workbook from r
func ParseYAMLWorkbook(r io.Reader) (*YAMLWorkbookSource, error) {
	var doc struct {
		Tables yaml.Node `yaml:"tables"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing workbook: %w", err)
	}

	s := &YAMLWorkbookSource{tables: make(map[string]*yaml.Node)}
	if doc.Tables.Kind == 0 {
		return s, nil
	}
	if doc.Tables.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing workbook: line %d: 'tables' must be a mapping", doc.Tables.Line)
	}
	for i := 0; i+1 < len(doc.Tables.Content); i += 2 {
		name := doc.Tables.Content[i].Value
		if _, dup := s.tables[name]; !dup {
			s.order = append(s.order, name)
		}
		s.tables[name] = doc.Tables.Content[i+1]
	}
	return s, nil
}

// Names returns the table names in document order
func (s *YAMLWorkbookSource) Names() []string {
	return append([]string(nil), s.order...)
}

// ReadTable implements Source
func (s *YAMLWorkbookSource) ReadTable(name string, rename map[string]string) ([]Row, error) {
	node, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("table %s: line %d: expected a list of rows", name, node.Line)
	}

	rows := make([]Row, 0, len(node.Content))
	for i, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("table %s: line %d: row must be a mapping", name, item.Line)
		}
		row := NewRow(i + 1)
		for j := 0; j+1 < len(item.Content); j += 2 {
			header := item.Content[j].Value
			if !keepColumn(header) {
				continue
			}
			var v any
			if err := item.Content[j+1].Decode(&v); err != nil {
				return nil, fmt.Errorf("table %s row %d column %s: %w", name, i+1, header, err)
			}
			if str, ok := v.(string); ok && str == "" {
				v = nil
			}
			row.Set(renameColumn(header, rename), v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
