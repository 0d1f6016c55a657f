// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/pdf-toolkit/internal/dispatch"
	"github.com/pdiddy/pdf-toolkit/internal/xlsx"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// PDFToExcel detects tabular regions in the PDF's layout text and writes a
// workbook with one sheet per table, Table_1 through Table_N in page order.
// A document without detectable tables is a conversion failure.
func (c *Converters) PDFToExcel(ctx context.Context, job types.JobDescriptor) (dispatch.Artifact, error) {
	if err := requirePDF(job.Op, job.Sources); err != nil {
		return dispatch.Artifact{}, err
	}
	src := job.Source()

	pages, err := c.guardPageCount(ctx, src, job.Options)
	if err != nil {
		return dispatch.Artifact{}, err
	}
	first, last, _ := pageRange(job.Options)
	f, l, n, err := clampRange(first, last, pages)
	if err != nil {
		return dispatch.Artifact{}, err
	}

	var sheets []xlsx.Sheet
	for p := f; p <= l; p++ {
		text, err := c.pageText(ctx, src, p)
		if err != nil {
			return dispatch.Artifact{}, err
		}
		for _, table := range detectTables(text) {
			sheets = append(sheets, xlsx.Sheet{
				Name: fmt.Sprintf("Table_%d", len(sheets)+1),
				Rows: table,
			})
		}
	}

	if len(sheets) == 0 {
		return dispatch.Artifact{}, types.Failf(types.CodeConversionFailure,
			"no tables found in %s", filepath.Base(src))
	}
	if err := xlsx.WriteFile(job.Output, sheets); err != nil {
		return dispatch.Artifact{}, fmt.Errorf("writing workbook: %w", err)
	}
	return dispatch.Artifact{Path: job.Output, Pages: n}, nil
}

// columnSep splits layout-preserved text on runs of two or more spaces, the
// shape pdftotext -layout gives aligned table cells.
var columnSep = regexp.MustCompile(`\s{2,}`)

// detectTables finds contiguous runs of multi-column lines in one page of
// layout text. A table is at least two consecutive lines of at least two
// cells each; rows are padded to the widest row.
func detectTables(text string) [][][]string {
	var tables [][][]string
	var current [][]string

	flush := func() {
		if len(current) >= 2 {
			tables = append(tables, padRows(current))
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		cells := splitColumns(line)
		if len(cells) >= 2 {
			current = append(current, cells)
			continue
		}
		flush()
	}
	flush()
	return tables
}

func splitColumns(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	return columnSep.Split(line, -1)
}

func padRows(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}
	return rows
}
