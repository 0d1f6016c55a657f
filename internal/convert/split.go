// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/pdf-toolkit/internal/dispatch"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// Split extracts a page range into a new PDF with qpdf, or bursts every page
// into its own file under the output directory when EachPage is set.
func (c *Converters) Split(ctx context.Context, job types.JobDescriptor) (dispatch.Artifact, error) {
	if err := requirePDF(job.Op, job.Sources); err != nil {
		return dispatch.Artifact{}, err
	}
	src := job.Source()

	if job.Options.EachPage {
		return c.splitEach(ctx, src, job.Output)
	}

	first, last, explicit := pageRange(job.Options)
	if !explicit {
		return dispatch.Artifact{}, types.Failf(types.CodeConversionFailure,
			"split needs a page range or each_page")
	}
	pages, err := c.PageCount(ctx, src)
	if err != nil {
		return dispatch.Artifact{}, err
	}
	first, last, n, err := clampRange(first, last, pages)
	if err != nil {
		return dispatch.Artifact{}, err
	}

	spec := fmt.Sprintf("%d-%d", first, last)
	if _, err := c.run(ctx, c.tools.Qpdf, src, "--pages", ".", spec, "--", job.Output); err != nil {
		return dispatch.Artifact{}, err
	}
	return dispatch.Artifact{Path: job.Output, Pages: n}, nil
}

// splitEach writes one single-page PDF per source page, named page_N.pdf.
func (c *Converters) splitEach(ctx context.Context, src, outDir string) (dispatch.Artifact, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return dispatch.Artifact{}, fmt.Errorf("creating %s: %w", outDir, err)
	}
	pattern := filepath.Join(outDir, "page_%d.pdf")
	if _, err := c.run(ctx, c.tools.Pdfseparate, src, pattern); err != nil {
		return dispatch.Artifact{}, err
	}

	matches, err := filepath.Glob(filepath.Join(outDir, "page_*.pdf"))
	if err != nil {
		return dispatch.Artifact{}, err
	}
	if len(matches) == 0 {
		return dispatch.Artifact{}, types.Failf(types.CodeConversionFailure,
			"pdfseparate produced no pages from %s", filepath.Base(src))
	}
	return dispatch.Artifact{Path: outDir, Pages: len(matches)}, nil
}
