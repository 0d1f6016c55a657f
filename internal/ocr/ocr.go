// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr recognizes text in scanned documents with tesseract. PDF
// sources are rasterized page by page through pdftoppm first; image sources
// feed the engine directly.
package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/pdf-toolkit/internal/convert"
	"github.com/pdiddy/pdf-toolkit/internal/dispatch"
	"github.com/pdiddy/pdf-toolkit/internal/toolrun"
	"github.com/pdiddy/pdf-toolkit/internal/xlsx"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// Extractor runs the OCR pipeline.
type Extractor struct {
	runner toolrun.Runner
	tools  types.ToolsConfig
	cfg    types.ConvertConfig
}

// New builds the extractor with the same zero-value fallbacks as the
// converter set.
func New(runner toolrun.Runner, tools types.ToolsConfig, cfg types.ConvertConfig) *Extractor {
	def := types.DefaultConfig()
	if tools == (types.ToolsConfig{}) {
		tools = def.Tools
	}
	if cfg.DPI == 0 {
		cfg.DPI = def.Convert.DPI
	}
	if cfg.MaxPages == 0 {
		cfg.MaxPages = def.Convert.MaxPages
	}
	if cfg.OCRLanguage == "" {
		cfg.OCRLanguage = def.Convert.OCRLanguage
	}
	return &Extractor{runner: runner, tools: tools, cfg: cfg}
}

// Register wires the handler into d.
func (e *Extractor) Register(d *dispatch.Dispatcher) {
	d.Register(types.OpOCRExtract, e.Extract)
}

// Extract recognizes the text in the source and writes it out. The default
// output is a workbook with one sheet per page; an output path ending in
// .txt gets plain text with form-feed page breaks instead. A missing
// tesseract install fails the job as ocr_unavailable rather than a
// conversion error.
func (e *Extractor) Extract(ctx context.Context, job types.JobDescriptor) (dispatch.Artifact, error) {
	if err := toolrun.Check(e.tools.Tesseract); err != nil {
		return dispatch.Artifact{}, types.WrapFailure(types.CodeOCRUnavailable, err)
	}
	src := job.Source()
	lang := job.Options.Language
	if lang == "" {
		lang = e.cfg.OCRLanguage
	}

	var pages []string
	switch {
	case strings.EqualFold(filepath.Ext(src), ".pdf"):
		var err error
		if pages, err = e.ocrPDF(ctx, src, lang, job.Options); err != nil {
			return dispatch.Artifact{}, err
		}
	case types.IsImagePath(src):
		text, err := e.ocrOne(ctx, src, lang)
		if err != nil {
			return dispatch.Artifact{}, err
		}
		pages = []string{text}
	default:
		return dispatch.Artifact{}, types.Failf(types.CodeUnsupportedFormat,
			"%s requires a PDF or image, got %s", job.Op, filepath.Base(src))
	}

	if allBlank(pages) {
		return dispatch.Artifact{}, types.Failf(types.CodeConversionFailure,
			"no text recognized in %s", filepath.Base(src))
	}

	var err error
	if strings.EqualFold(filepath.Ext(job.Output), ".txt") {
		err = writeText(job.Output, pages)
	} else {
		err = writeWorkbook(job.Output, pages)
	}
	if err != nil {
		return dispatch.Artifact{}, err
	}
	return dispatch.Artifact{Path: job.Output, Pages: len(pages)}, nil
}

// ocrPDF renders the selected pages as PNGs in a staging directory and runs
// the engine over each one in order. The page limit is checked against
// pdfinfo's count up front, before any page renders.
func (e *Extractor) ocrPDF(ctx context.Context, src, lang string, opts types.JobOptions) ([]string, error) {
	if opts.FirstPage == 0 && opts.LastPage == 0 {
		pages, err := convert.ProbePageCount(ctx, e.runner, e.tools.Pdfinfo, src)
		if err != nil {
			return nil, err
		}
		if pages > e.cfg.MaxPages {
			return nil, types.Failf(types.CodeConversionFailure,
				"%s has %d pages, over the %d page limit: select a page range", filepath.Base(src), pages, e.cfg.MaxPages)
		}
	}

	staging, err := os.MkdirTemp("", "pdf-toolkit-ocr-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(staging)

	args := []string{"-r", strconv.Itoa(e.cfg.DPI), "-png"}
	if opts.FirstPage > 1 {
		args = append(args, "-f", strconv.Itoa(opts.FirstPage))
	}
	if opts.LastPage > 0 {
		args = append(args, "-l", strconv.Itoa(opts.LastPage))
	}
	prefix := filepath.Join(staging, "page")
	args = append(args, src, prefix)

	if _, errb, err := e.runner.Run(ctx, e.tools.Pdftoppm, args...); err != nil {
		return nil, toolrun.Explain(e.tools.Pdftoppm, errb, err)
	}

	// pdftoppm pads the page numbers, so lexical order is page order.
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, types.Failf(types.CodeConversionFailure,
			"no pages rendered from %s", filepath.Base(src))
	}

	pages := make([]string, 0, len(matches))
	for _, page := range matches {
		text, err := e.ocrOne(ctx, page, lang)
		if err != nil {
			return nil, err
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// ocrOne runs tesseract over a single image file.
func (e *Extractor) ocrOne(ctx context.Context, path, lang string) (string, error) {
	out, errb, err := e.runner.Run(ctx, e.tools.Tesseract, path, "stdout", "-l", lang)
	if err != nil {
		return "", toolrun.Explain(e.tools.Tesseract, errb, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func allBlank(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}

// writeText joins the page texts with form-feed page breaks.
func writeText(path string, pages []string) error {
	return os.WriteFile(path, []byte(strings.Join(pages, "\n\f\n")+"\n"), 0o644)
}

// writeWorkbook puts each page on its own Page_N sheet, one recognized line
// per row.
func writeWorkbook(path string, pages []string) error {
	sheets := make([]xlsx.Sheet, 0, len(pages))
	for i, text := range pages {
		var rows [][]string
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				rows = append(rows, []string{line})
			}
		}
		sheets = append(sheets, xlsx.Sheet{
			Name: fmt.Sprintf("Page_%d", i+1),
			Rows: rows,
		})
	}
	return xlsx.WriteFile(path, sheets)
}
