// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xlsx

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.xlsx")
	sheets := []Sheet{
		{Name: "Table_1", Rows: [][]string{{"Region", "Total"}, {"North", "10"}}},
		{Name: "Table_2", Rows: [][]string{{"only cell"}}},
	}

	if err := WriteFile(path, sheets); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	got := f.GetSheetList()
	if len(got) != 2 || got[0] != "Table_1" || got[1] != "Table_2" {
		t.Fatalf("sheets = %v", got)
	}

	val, err := f.GetCellValue("Table_1", "B2")
	if err != nil {
		t.Fatal(err)
	}
	if val != "10" {
		t.Errorf("Table_1!B2 = %q, want %q", val, "10")
	}

	val, err = f.GetCellValue("Table_2", "A1")
	if err != nil {
		t.Fatal(err)
	}
	if val != "only cell" {
		t.Errorf("Table_2!A1 = %q", val)
	}
}

func TestWriteFileNoSheets(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "empty.xlsx"), nil)
	if err == nil {
		t.Fatal("expected error for empty workbook")
	}
}

func TestColWidth(t *testing.T) {
	tests := []struct {
		runes int
		want  float64
	}{
		{0, 8},
		{10, 12},
		{200, 60},
	}
	for _, tt := range tests {
		if got := colWidth(tt.runes); got != tt.want {
			t.Errorf("colWidth(%d) = %v, want %v", tt.runes, got, tt.want)
		}
	}
}
