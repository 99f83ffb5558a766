package main

// Notes:
// - readRecords: list and {records: [...]} layouts, YAML and JSON, structured
//   standards, nested template codes and numeric scalars
// - scalar/integer: conversion of decoded YAML values

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestReadRecords - Records File Layouts
// ---------------------------------------------------------------------------

func TestReadRecords(t *testing.T) {
	t.Parallel()

	t.Run("yaml list", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "item-7.yaml", `
- param_name: 抗压强度
  price: 120
  sampling_batch: 每500m³
  standards: GB/T 50081-2019
  template_code: HNT-01
  report_time: 3
  is_regular_param: 1
  sort_order: 2
- param_name: 抗渗等级
  price: null
`)
		got, err := readRecords(path)
		if err != nil {
			t.Fatalf("readRecords() error = %v", err)
		}
		if got.ItemID != "item-7" {
			t.Errorf("ItemID = %q, want %q", got.ItemID, "item-7")
		}
		if len(got.Records) != 2 {
			t.Fatalf("len(Records) = %d, want 2", len(got.Records))
		}
		r := got.Records[0]
		if r.ParamName != "抗压强度" || r.Price != "120" || r.ReportTime != "3" {
			t.Errorf("record 0 = %+v", r)
		}
		if r.IsRegularParam != 1 || r.SortOrder != 2 {
			t.Errorf("IsRegularParam/SortOrder = %d/%d, want 1/2", r.IsRegularParam, r.SortOrder)
		}
		if got.Records[1].Price != "" {
			t.Errorf("null price = %q, want empty", got.Records[1].Price)
		}
	})

	t.Run("json mapping with item id", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "dump.json", `{
  "item_id": 42,
  "records": [
    {
      "param_name": "屈服强度",
      "price": 80.5,
      "standards": [
        {"standard_name": "钢筋混凝土用钢", "standard_code": "GB/T 1499.2-2018"},
        {"standard_code": "GB/T 28900-2022"}
      ],
      "template": {"template_code": "GJ-01"},
      "is_regular_param": true
    }
  ]
}`)
		got, err := readRecords(path)
		if err != nil {
			t.Fatalf("readRecords() error = %v", err)
		}
		if got.ItemID != "42" {
			t.Errorf("ItemID = %q, want %q", got.ItemID, "42")
		}
		r := got.Records[0]
		if r.Price != "80.5" {
			t.Errorf("Price = %q, want %q", r.Price, "80.5")
		}
		want := "钢筋混凝土用钢\nGB/T 1499.2-2018\nGB/T 28900-2022"
		if r.Standards != want {
			t.Errorf("Standards = %q, want %q", r.Standards, want)
		}
		if r.TemplateCode != "GJ-01" {
			t.Errorf("TemplateCode = %q, want %q", r.TemplateCode, "GJ-01")
		}
		if r.IsRegularParam != 1 {
			t.Errorf("IsRegularParam = %d, want 1", r.IsRegularParam)
		}
	})

	t.Run("unknown fields ignored", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "extra.yml", "- id: 9\n  param_name: 密度\n  created_at: 2024-01-01\n")
		got, err := readRecords(path)
		if err != nil {
			t.Fatalf("readRecords() error = %v", err)
		}
		if got.Records[0].ParamName != "密度" {
			t.Errorf("ParamName = %q", got.Records[0].ParamName)
		}
	})
}

func TestReadRecords_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{
			name:    "missing file",
			path:    filepath.Join(dir, "missing.yaml"),
			wantErr: ErrReadRecords,
		},
		{
			name:    "empty file",
			path:    writeFile(t, dir, "empty.yaml", ""),
			wantErr: ErrInvalidRecords,
		},
		{
			name:    "scalar document",
			path:    writeFile(t, dir, "scalar.yaml", "just text\n"),
			wantErr: ErrInvalidRecords,
		},
		{
			name:    "mapping without records",
			path:    writeFile(t, dir, "norecords.yaml", "item_id: 1\n"),
			wantErr: ErrInvalidRecords,
		},
		{
			name:    "record not a mapping",
			path:    writeFile(t, dir, "strings.yaml", "- a\n- b\n"),
			wantErr: ErrInvalidRecords,
		},
		{
			name:    "malformed yaml",
			path:    writeFile(t, dir, "bad.yaml", "- param_name: [unclosed\n"),
			wantErr: ErrInvalidRecords,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := readRecords(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("readRecords() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestScalar / TestInteger - Value Conversion
// ---------------------------------------------------------------------------

func TestScalar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"None", "None"},
		{uint64(120), "120"},
		{int64(-3), "-3"},
		{12.50, "12.5"},
		{true, "true"},
		{map[string]any{"a": 1}, ""},
		{[]any{"x"}, ""},
	}

	for _, tt := range tests {
		if got := scalar(tt.in); got != tt.want {
			t.Errorf("scalar(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInteger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want int
	}{
		{nil, 0},
		{true, 1},
		{false, 0},
		{uint64(3), 3},
		{int64(-1), -1},
		{2.9, 2},
		{" 4 ", 4},
		{"x", 0},
	}

	for _, tt := range tests {
		if got := integer(tt.in); got != tt.want {
			t.Errorf("integer(%#v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestStandards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "GB 1\nGB 2", "GB 1\nGB 2"},
		{"nil", nil, ""},
		{"list of names", []any{"A", "B"}, "A\nB"},
		{"mapping list", []any{map[string]any{"standard_name": "A", "standard_code": "GB 1"}}, "A\nGB 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := standards(tt.in); got != tt.want {
				t.Errorf("standards() = %q, want %q", got, tt.want)
			}
		})
	}
}
