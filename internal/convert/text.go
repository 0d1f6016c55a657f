// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/pdf-toolkit/internal/dispatch"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// PDFToText extracts embedded text to a plain-text file, pages separated by
// form feeds. Scanned documents with no text layer fail with a pointer at
// ocr-extract.
func (c *Converters) PDFToText(ctx context.Context, job types.JobDescriptor) (dispatch.Artifact, error) {
	if err := requirePDF(job.Op, job.Sources); err != nil {
		return dispatch.Artifact{}, err
	}
	src := job.Source()
	first, last, _ := pageRange(job.Options)

	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	args = append(args, rangeArgs(first, last)...)
	args = append(args, src, job.Output)
	if _, err := c.run(ctx, c.tools.Pdftotext, args...); err != nil {
		return dispatch.Artifact{}, err
	}

	data, err := os.ReadFile(job.Output)
	if err != nil {
		return dispatch.Artifact{}, types.Failf(types.CodeConversionFailure,
			"pdftotext produced no output for %s", filepath.Base(src))
	}
	text := string(data)
	if strings.TrimSpace(strings.ReplaceAll(text, "\f", "")) == "" {
		os.Remove(job.Output)
		return dispatch.Artifact{}, types.Failf(types.CodeConversionFailure,
			"no extractable text in %s (scanned documents need ocr-extract)", filepath.Base(src))
	}

	return dispatch.Artifact{Path: job.Output, Pages: countPages(text)}, nil
}

// countPages infers the page count from form-feed separators. pdftotext
// terminates every page with \f, including the last.
func countPages(text string) int {
	n := strings.Count(text, "\f")
	if n == 0 {
		return 1
	}
	if strings.HasSuffix(text, "\f") {
		return n
	}
	return n + 1
}

// pageText extracts layout-preserved text for a single page, for table
// detection.
func (c *Converters) pageText(ctx context.Context, src string, page int) (string, error) {
	p := strconv.Itoa(page)
	out, err := c.run(ctx, c.tools.Pdftotext,
		"-layout", "-enc", "UTF-8", "-eol", "unix", "-f", p, "-l", p, src, "-")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
