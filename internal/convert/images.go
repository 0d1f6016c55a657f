// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/pdiddy/pdf-toolkit/internal/dispatch"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// PDFToImages renders PDF pages to PNG files inside the output directory,
// named page_<N>.png with N being the actual 1-based page number. The
// directory is the job's single artifact.
func (c *Converters) PDFToImages(ctx context.Context, job types.JobDescriptor) (dispatch.Artifact, error) {
	if err := requirePDF(job.Op, job.Sources); err != nil {
		return dispatch.Artifact{}, err
	}
	src := job.Source()

	pages, err := c.guardPageCount(ctx, src, job.Options)
	if err != nil {
		return dispatch.Artifact{}, err
	}
	first, last, _ := pageRange(job.Options)
	f, l, _, err := clampRange(first, last, pages)
	if err != nil {
		return dispatch.Artifact{}, err
	}

	dpi := job.Options.DPI
	if dpi == 0 {
		dpi = c.cfg.DPI
	}

	if err := os.MkdirAll(job.Output, 0o755); err != nil {
		return dispatch.Artifact{}, fmt.Errorf("creating image directory: %w", err)
	}

	args := []string{"-png", "-r", strconv.Itoa(dpi)}
	args = append(args, rangeArgs(f, l)...)
	args = append(args, src, filepath.Join(job.Output, "page"))
	if _, err := c.run(ctx, c.tools.Pdftoppm, args...); err != nil {
		return dispatch.Artifact{}, err
	}

	count, err := renamePageFiles(job.Output)
	if err != nil {
		return dispatch.Artifact{}, err
	}
	if count == 0 {
		return dispatch.Artifact{}, types.Failf(types.CodeConversionFailure,
			"pdftoppm rendered no pages from %s", filepath.Base(src))
	}
	return dispatch.Artifact{Path: job.Output, Pages: count}, nil
}

// popplerPage matches pdftoppm's output naming, which zero-pads page numbers
// to the width of the largest page (page-1.png, page-07.png).
var popplerPage = regexp.MustCompile(`^page-0*(\d+)\.png$`)

// renamePageFiles renames pdftoppm's page-NN.png files to the page_N.png
// convention and returns how many pages were rendered.
func renamePageFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading image directory: %w", err)
	}

	count := 0
	for _, entry := range entries {
		m := popplerPage.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		from := filepath.Join(dir, entry.Name())
		to := filepath.Join(dir, fmt.Sprintf("page_%d.png", n))
		if err := os.Rename(from, to); err != nil {
			return count, fmt.Errorf("renaming %s: %w", entry.Name(), err)
		}
		count++
	}
	return count, nil
}
