// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements the document conversion handlers. Each handler
// wraps one external engine (LibreOffice, poppler, qpdf, ghostscript,
// imagemagick) or a native encoder, normalizes its failure modes, and
// produces exactly one artifact at the job's output path.
package convert

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/pdf-toolkit/internal/dispatch"
	"github.com/pdiddy/pdf-toolkit/internal/toolrun"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// Converters binds the external engines to the dispatch table.
type Converters struct {
	runner toolrun.Runner
	tools  types.ToolsConfig
	cfg    types.ConvertConfig
}

// New builds the converter set. Zero-valued cfg fields fall back to the
// defaults in types.DefaultConfig.
func New(runner toolrun.Runner, tools types.ToolsConfig, cfg types.ConvertConfig) *Converters {
	def := types.DefaultConfig()
	if tools == (types.ToolsConfig{}) {
		tools = def.Tools
	}
	if cfg.DPI == 0 {
		cfg.DPI = def.Convert.DPI
	}
	if cfg.CompressDPI == 0 {
		cfg.CompressDPI = def.Convert.CompressDPI
	}
	if cfg.Quality == 0 {
		cfg.Quality = def.Convert.Quality
	}
	if cfg.MaxPages == 0 {
		cfg.MaxPages = def.Convert.MaxPages
	}
	if cfg.MaxLossyPages == 0 {
		cfg.MaxLossyPages = def.Convert.MaxLossyPages
	}
	return &Converters{runner: runner, tools: tools, cfg: cfg}
}

// Register wires the document conversion handlers into d. OCR and native
// image compression register from their own packages.
func (c *Converters) Register(d *dispatch.Dispatcher) {
	d.Register(types.OpPDFToWord, c.PDFToWord)
	d.Register(types.OpPDFToExcel, c.PDFToExcel)
	d.Register(types.OpPDFToImages, c.PDFToImages)
	d.Register(types.OpPDFToText, c.PDFToText)
	d.Register(types.OpExcelToPDF, c.ExcelToPDF)
	d.Register(types.OpImageToPDF, c.ImageToPDF)
	d.Register(types.OpMerge, c.Merge)
	d.Register(types.OpSplit, c.Split)
	d.Register(types.OpCompress, c.Compress)
}

// run invokes one external tool, folding failure into an error that names
// the tool and the useful part of its stderr.
func (c *Converters) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	stdout, stderr, err := c.runner.Run(ctx, name, args...)
	if err != nil {
		return nil, toolrun.Explain(name, stderr, err)
	}
	return stdout, nil
}

// requirePDF classifies non-PDF sources for PDF-only operations.
func requirePDF(op types.OpKind, sources []string) error {
	for _, src := range sources {
		if !strings.EqualFold(filepath.Ext(src), ".pdf") {
			return types.Failf(types.CodeUnsupportedFormat, "%s requires PDF input, got %s", op, filepath.Base(src))
		}
	}
	return nil
}

// pageRange resolves the requested 1-based inclusive range from options.
// Zero first/last mean "from the start" / "to the end".
func pageRange(opts types.JobOptions) (first, last int, explicit bool) {
	first, last = opts.FirstPage, opts.LastPage
	explicit = first > 0 || last > 0
	if first == 0 {
		first = 1
	}
	return first, last, explicit
}

// rangeArgs renders poppler-style -f/-l flags for the selected range.
func rangeArgs(first, last int) []string {
	var args []string
	if first > 1 {
		args = append(args, "-f", strconv.Itoa(first))
	}
	if last > 0 {
		args = append(args, "-l", strconv.Itoa(last))
	}
	return args
}

// guardPageCount enforces the whole-document page limit: documents over the
// limit need an explicit page range.
func (c *Converters) guardPageCount(ctx context.Context, src string, opts types.JobOptions) (int, error) {
	pages, err := c.PageCount(ctx, src)
	if err != nil {
		return 0, err
	}
	if _, _, explicit := pageRange(opts); !explicit && pages > c.cfg.MaxPages {
		return 0, types.Failf(types.CodeConversionFailure,
			"%s has %d pages, over the %d page limit: select a page range", filepath.Base(src), pages, c.cfg.MaxPages)
	}
	return pages, nil
}

// clampRange bounds the requested range to the document and reports how many
// pages it covers.
func clampRange(first, last, pages int) (f, l, n int, err error) {
	if first < 1 || (last > 0 && last < first) {
		return 0, 0, 0, types.Failf(types.CodeConversionFailure, "invalid page range %d-%d", first, last)
	}
	if first > pages {
		return 0, 0, 0, types.Failf(types.CodeConversionFailure,
			"page range starts at %d but the document has %d pages", first, pages)
	}
	if last == 0 || last > pages {
		last = pages
	}
	return first, last, last - first + 1, nil
}
