// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/pdf-toolkit/internal/dispatch"
	"github.com/pdiddy/pdf-toolkit/internal/img"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// imagePDFQuality is the JPEG quality used when embedding images into a PDF.
const imagePDFQuality = 85

// ImageToPDF assembles one or more images into a single PDF, one page per
// image in source order. Sources are re-encoded as JPEG first to bound the
// output size, then stitched together with imagemagick.
func (c *Converters) ImageToPDF(ctx context.Context, job types.JobDescriptor) (dispatch.Artifact, error) {
	for _, src := range job.Sources {
		if !types.IsImagePath(src) {
			return dispatch.Artifact{}, types.Failf(types.CodeUnsupportedFormat,
				"%s requires image input, got %s", job.Op, filepath.Base(src))
		}
	}
	quality := job.Options.Quality
	if quality == 0 {
		quality = imagePDFQuality
	}

	staging, err := os.MkdirTemp("", "pdf-toolkit-imgpdf-*")
	if err != nil {
		return dispatch.Artifact{}, err
	}
	defer os.RemoveAll(staging)

	args := make([]string, 0, len(job.Sources)+1)
	for i, src := range job.Sources {
		page := filepath.Join(staging, fmt.Sprintf("img_%d.jpg", i+1))
		if err := img.EncodeJPEG(src, page, quality, 0); err != nil {
			return dispatch.Artifact{}, types.WrapFailure(types.CodeConversionFailure, err)
		}
		args = append(args, page)
	}
	args = append(args, job.Output)

	if _, err := c.run(ctx, c.tools.Magick, args...); err != nil {
		return dispatch.Artifact{}, err
	}
	return dispatch.Artifact{Path: job.Output, Pages: len(job.Sources)}, nil
}
