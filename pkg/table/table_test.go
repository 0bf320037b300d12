package table

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{true, true},
		{false, false},
		{1, true},
		{0, false},
		{int64(2), true},
		{1.0, true},
		{0.0, false},
		{"1", true},
		{"0", false},
		{"1.0", true},
		{"TRUE", true},
		{"yes", true},
		{"x", true},
		{"no", false},
		{"", false},
		{"maybe", false},
	}
	for _, tt := range tests {
		if got := IsTruthy(tt.in); got != tt.want {
			t.Errorf("IsTruthy(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFilterByUseFlag(t *testing.T) {
	mk := func(index int, use any) Row {
		r := NewRow(index)
		if use != nil {
			r.Set(UseColumn, use)
		}
		r.Set("id", index)
		return r
	}
	rows := []Row{mk(1, 0), mk(2, 1), mk(3, nil), mk(4, true), mk(5, "1")}

	got := FilterByUseFlag(rows)
	want := []int{2, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i, r := range got {
		if r.Index != want[i] {
			t.Errorf("row %d: Index = %d, want %d", i, r.Index, want[i])
		}
	}
}

func TestRow_SetKeepsOrder(t *testing.T) {
	r := NewRow(1)
	r.Set("b", 1)
	r.Set("a", 2)
	r.Set("b", 3)
	if strings.Join(r.Columns, ",") != "b,a" {
		t.Errorf("Columns = %v", r.Columns)
	}
	if r.Value("b") != 3 {
		t.Errorf("b = %v", r.Value("b"))
	}
	if r.String("a") != "2" || r.String("missing") != "" {
		t.Errorf("String() mismatch")
	}
}

func TestReadCSV(t *testing.T) {
	data := "Use,ID,Name,Unnamed: 3,\n1,10,users,,\n,,,,\n0,20,,note,\n"
	rows, err := ReadCSV(strings.NewReader(data), map[string]string{"Use": "use", "ID": "vlan_id", "Name": "name"})
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (blank rows skipped)", len(rows))
	}
	if strings.Join(rows[0].Columns, ",") != "use,vlan_id,name" {
		t.Errorf("Columns = %v", rows[0].Columns)
	}
	if rows[0].Value("vlan_id") != "10" || rows[0].Value("name") != "users" {
		t.Errorf("row 1 = %v", rows[0].Values)
	}
	if rows[1].Index != 2 {
		t.Errorf("second row Index = %d, want 2", rows[1].Index)
	}
	if v, ok := rows[1].Get("name"); !ok || v != nil {
		t.Errorf("empty cell should be nil, got %v (present %v)", v, ok)
	}
}

func TestCSVDirSource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bgp_routers.csv"), []byte("use,host,asn\n1,R1,65001\n"), 0644); err != nil {
		t.Fatal(err)
	}
	s := &CSVDirSource{Dir: dir}

	rows, err := s.ReadTable("bgp_routers", nil)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Value("host") != "R1" {
		t.Errorf("rows = %+v", rows)
	}

	_, err = s.ReadTable("l3_ports", nil)
	if !errors.Is(err, ErrTableNotFound) {
		t.Errorf("missing table error = %v, want ErrTableNotFound", err)
	}
}

const workbook = `
tables:
  vlan_definitions:
    - {Use: 1, ID: 20, Name: servers}
    - {Use: 0, ID: 10, Name: users, "Unnamed: 3": junk}
  physical_links:
    - use: 1
      z_host: R2
      a_host: R1
      a_lag_group: 1
      a_description: ""
  empty:
`

func TestYAMLWorkbookSource(t *testing.T) {
	s, err := ParseYAMLWorkbook(strings.NewReader(workbook))
	if err != nil {
		t.Fatalf("ParseYAMLWorkbook() error = %v", err)
	}
	if got := strings.Join(s.Names(), ","); got != "vlan_definitions,physical_links,empty" {
		t.Errorf("Names() = %s", got)
	}

	rows, err := s.ReadTable("vlan_definitions", map[string]string{"Use": "use", "ID": "vlan_id", "Name": "name"})
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].Value("vlan_id") != 20 {
		t.Errorf("vlan_id = %#v, want int 20", rows[0].Value("vlan_id"))
	}
	if _, ok := rows[1].Get("Unnamed: 3"); ok {
		t.Error("Unnamed column should be dropped")
	}

	links, err := s.ReadTable("physical_links", nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(links[0].Columns, ",") != "use,z_host,a_host,a_lag_group,a_description" {
		t.Errorf("column order not preserved: %v", links[0].Columns)
	}
	if links[0].Value("a_description") != nil {
		t.Error("empty string should be nil")
	}

	if rows, err := s.ReadTable("empty", nil); err != nil || len(rows) != 0 {
		t.Errorf("empty table = %v, %v", rows, err)
	}
	if _, err := s.ReadTable("bgp_routers", nil); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("error = %v, want ErrTableNotFound", err)
	}
}

func TestParseYAMLWorkbook_Invalid(t *testing.T) {
	if _, err := ParseYAMLWorkbook(strings.NewReader("tables: [1, 2]")); err == nil {
		t.Error("expected error for non-mapping tables")
	}
	s, err := ParseYAMLWorkbook(strings.NewReader("tables:\n  t: {a: 1}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ReadTable("t", nil); err == nil {
		t.Error("expected error for non-list table")
	}
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	if _, err := ResolvePath(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
	got, err := ResolvePath(dir)
	if err != nil || !filepath.IsAbs(got) {
		t.Errorf("ResolvePath() = %s, %v", got, err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	wb := filepath.Join(dir, "design.yaml")
	if err := os.WriteFile(wb, []byte(workbook), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(wb)
	if err != nil {
		t.Fatalf("Open(yaml) error = %v", err)
	}
	if _, ok := s.(*YAMLWorkbookSource); !ok {
		t.Errorf("Open(yaml) = %T", s)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("Open(dir) error = %v", err)
	}
	if _, ok := s.(*CSVDirSource); !ok {
		t.Errorf("Open(dir) = %T", s)
	}

	txt := filepath.Join(dir, "design.txt")
	os.WriteFile(txt, nil, 0644)
	if _, err := Open(txt); err == nil {
		t.Error("expected error for unsupported format")
	}
}
