// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"strconv"
	"strings"

	"github.com/pdiddy/pdf-toolkit/internal/toolrun"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// PageCount probes a PDF's page count via pdfinfo. A document pdfinfo
// cannot read is treated as corrupt.
func (c *Converters) PageCount(ctx context.Context, pdf string) (int, error) {
	return ProbePageCount(ctx, c.runner, c.tools.Pdfinfo, pdf)
}

// ProbePageCount runs pdfinfo over pdf through runner and extracts the page
// count. Handlers outside this package use it for their own pre-flight
// checks.
func ProbePageCount(ctx context.Context, runner toolrun.Runner, pdfinfo, pdf string) (int, error) {
	out, stderr, err := runner.Run(ctx, pdfinfo, pdf)
	if err != nil {
		return 0, types.WrapFailure(types.CodeConversionFailure, toolrun.Explain(pdfinfo, stderr, err))
	}

	pages, ok := parsePageCount(string(out))
	if !ok {
		return 0, types.Failf(types.CodeConversionFailure, "pdfinfo reported no page count for %s", pdf)
	}
	return pages, nil
}

// parsePageCount extracts the "Pages:" field from pdfinfo output.
func parsePageCount(out string) (int, bool) {
	for _, line := range strings.Split(out, "\n") {
		rest, found := strings.CutPrefix(line, "Pages:")
		if !found {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
