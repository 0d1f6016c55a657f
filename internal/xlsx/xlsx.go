// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package xlsx writes the toolkit's spreadsheet artifacts: table extractions
// and OCR workbooks.
package xlsx

import (
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Sheet is one workbook sheet of string cells.
type Sheet struct {
	Name string
	Rows [][]string
}

// WriteFile writes sheets into a workbook at path. The first sheet replaces
// the workbook default; column widths track the longest cell per column,
// clamped to a readable band.
func WriteFile(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return fmt.Errorf("naming sheet %s: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("adding sheet %s: %w", sheet.Name, err)
		}

		var widths []int
		for r, row := range sheet.Rows {
			for ci, val := range row {
				cell, err := excelize.CoordinatesToCellName(ci+1, r+1)
				if err != nil {
					return fmt.Errorf("cell %d,%d: %w", ci+1, r+1, err)
				}
				if err := f.SetCellValue(sheet.Name, cell, val); err != nil {
					return fmt.Errorf("writing cell %s!%s: %w", sheet.Name, cell, err)
				}
				for len(widths) <= ci {
					widths = append(widths, 0)
				}
				if n := utf8.RuneCountInString(val); n > widths[ci] {
					widths[ci] = n
				}
			}
		}

		for ci, w := range widths {
			col, err := excelize.ColumnNumberToName(ci + 1)
			if err != nil {
				continue
			}
			if err := f.SetColWidth(sheet.Name, col, col, colWidth(w)); err != nil {
				return fmt.Errorf("sizing column %s!%s: %w", sheet.Name, col, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// colWidth converts a rune count into a column width between 8 and 60.
func colWidth(runes int) float64 {
	w := float64(runes) + 2
	if w < 8 {
		return 8
	}
	if w > 60 {
		return 60
	}
	return w
}
