// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdf-toolkit/internal/dispatch"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// PDFToWord converts a PDF, or a page range of one, to a .docx document via
// LibreOffice. Ranged conversions cut the pages with qpdf first because
// soffice only converts whole documents.
func (c *Converters) PDFToWord(ctx context.Context, job types.JobDescriptor) (dispatch.Artifact, error) {
	if err := requirePDF(job.Op, job.Sources); err != nil {
		return dispatch.Artifact{}, err
	}
	src := job.Source()

	pages, err := c.guardPageCount(ctx, src, job.Options)
	if err != nil {
		return dispatch.Artifact{}, err
	}
	first, last, explicit := pageRange(job.Options)
	f, l, n, err := clampRange(first, last, pages)
	if err != nil {
		return dispatch.Artifact{}, err
	}

	input := src
	if explicit && (f > 1 || l < pages) {
		staging, err := os.MkdirTemp("", "pdf-toolkit-range-*")
		if err != nil {
			return dispatch.Artifact{}, fmt.Errorf("creating staging dir: %w", err)
		}
		defer os.RemoveAll(staging)

		ranged := filepath.Join(staging, "range.pdf")
		if _, err := c.run(ctx, c.tools.Qpdf, src, "--pages", ".", fmt.Sprintf("%d-%d", f, l), "--", ranged); err != nil {
			return dispatch.Artifact{}, err
		}
		input = ranged
	}

	art, err := c.soffice(ctx, input, "docx", job.Output)
	if err != nil {
		return dispatch.Artifact{}, err
	}
	art.Pages = n
	return art, nil
}

// ExcelToPDF converts a spreadsheet to PDF via LibreOffice.
func (c *Converters) ExcelToPDF(ctx context.Context, job types.JobDescriptor) (dispatch.Artifact, error) {
	src := job.Source()
	ext := strings.ToLower(filepath.Ext(src))
	if ext != ".xlsx" && ext != ".xls" {
		return dispatch.Artifact{}, types.Failf(types.CodeUnsupportedFormat,
			"%s requires an Excel workbook, got %s", job.Op, filepath.Base(src))
	}

	art, err := c.soffice(ctx, src, "pdf", job.Output)
	if err != nil {
		return dispatch.Artifact{}, err
	}
	// Best effort: report how many pages the workbook rendered to.
	if pages, err := c.PageCount(ctx, art.Path); err == nil {
		art.Pages = pages
	}
	return art, nil
}

// soffice converts input to the target format inside a private staging
// directory and moves the result to output. The private profile matters:
// concurrent soffice runs fight over the default user installation lock.
func (c *Converters) soffice(ctx context.Context, input, format, output string) (dispatch.Artifact, error) {
	staging, err := os.MkdirTemp("", "pdf-toolkit-soffice-*")
	if err != nil {
		return dispatch.Artifact{}, fmt.Errorf("creating staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	absIn, err := filepath.Abs(input)
	if err != nil {
		return dispatch.Artifact{}, fmt.Errorf("resolving %s: %w", input, err)
	}

	args := []string{
		"-env:UserInstallation=file://" + filepath.Join(staging, "profile"),
		"--headless",
		"--convert-to", format,
		"--outdir", staging,
		absIn,
	}
	if _, err := c.run(ctx, c.tools.Soffice, args...); err != nil {
		return dispatch.Artifact{}, err
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	produced := filepath.Join(staging, base+"."+format)
	if _, err := os.Stat(produced); err != nil {
		return dispatch.Artifact{}, types.Failf(types.CodeConversionFailure,
			"soffice produced no %s output for %s", format, filepath.Base(input))
	}
	if err := moveFile(produced, output); err != nil {
		return dispatch.Artifact{}, fmt.Errorf("placing output: %w", err)
	}
	return dispatch.Artifact{Path: output}, nil
}

// moveFile renames src to dst, falling back to copy+remove when the staging
// directory sits on a different filesystem.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
