// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"

	"github.com/pdiddy/pdf-toolkit/internal/dispatch"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// Merge concatenates two or more PDFs into one with pdfunite, preserving
// source order.
func (c *Converters) Merge(ctx context.Context, job types.JobDescriptor) (dispatch.Artifact, error) {
	if len(job.Sources) < 2 {
		return dispatch.Artifact{}, types.Failf(types.CodeConversionFailure,
			"merge needs at least two PDFs, got %d", len(job.Sources))
	}
	if err := requirePDF(job.Op, job.Sources); err != nil {
		return dispatch.Artifact{}, err
	}

	args := make([]string, 0, len(job.Sources)+1)
	args = append(args, job.Sources...)
	args = append(args, job.Output)
	if _, err := c.run(ctx, c.tools.Pdfunite, args...); err != nil {
		return dispatch.Artifact{}, err
	}

	art := dispatch.Artifact{Path: job.Output}
	if pages, err := c.PageCount(ctx, job.Output); err == nil {
		art.Pages = pages
	}
	return art, nil
}
