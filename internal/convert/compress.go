// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdiddy/pdf-toolkit/internal/dispatch"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// Compress shrinks a PDF in two stages. A lossless qpdf pass rewrites the
// file with packed object and content streams; when that does not beat the
// input size, a lossy ghostscript pass downsamples and re-encodes images.
// The lossy stage is skipped for documents over the lossy page limit, and
// the smaller of the two results wins.
func (c *Converters) Compress(ctx context.Context, job types.JobDescriptor) (dispatch.Artifact, error) {
	if err := requirePDF(job.Op, job.Sources); err != nil {
		return dispatch.Artifact{}, err
	}
	src := job.Source()

	srcInfo, err := os.Stat(src)
	if err != nil {
		return dispatch.Artifact{}, err
	}
	// Page count failures do not block compression, they only disable the
	// page-limit guard on the lossy stage.
	pages, _ := c.PageCount(ctx, src)

	if _, err := c.run(ctx, c.tools.Qpdf,
		"--object-streams=generate", "--stream-data=compress", "--recompress-flate",
		src, job.Output); err != nil {
		return dispatch.Artifact{}, err
	}
	outInfo, err := os.Stat(job.Output)
	if err != nil {
		return dispatch.Artifact{}, fmt.Errorf("reading lossless result: %w", err)
	}

	if outInfo.Size() >= srcInfo.Size() && (pages == 0 || pages <= c.cfg.MaxLossyPages) {
		if err := c.compressLossy(ctx, src, job.Output, outInfo.Size(), job.Options); err != nil {
			return dispatch.Artifact{}, err
		}
	}
	return dispatch.Artifact{Path: job.Output, Pages: pages}, nil
}

// compressLossy rasterizes images through ghostscript into a sibling temp
// file and keeps it only when it is smaller than the lossless result already
// sitting at out.
func (c *Converters) compressLossy(ctx context.Context, src, out string, losslessSize int64, opts types.JobOptions) error {
	quality := opts.Quality
	if quality == 0 {
		quality = c.cfg.Quality
	}
	dpi := opts.DPI
	if dpi == 0 {
		dpi = c.cfg.CompressDPI
	}

	tmp := filepath.Join(filepath.Dir(out), "."+filepath.Base(out)+".lossy")
	defer os.Remove(tmp)

	res := strconv.Itoa(dpi)
	if _, err := c.run(ctx, c.tools.Ghostscript,
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dNOPAUSE", "-dQUIET", "-dBATCH",
		"-dDownsampleColorImages=true",
		"-dDownsampleGrayImages=true",
		"-dColorImageResolution="+res,
		"-dGrayImageResolution="+res,
		"-dMonoImageResolution="+res,
		"-dAutoFilterColorImages=false",
		"-dColorImageFilter=/DCTEncode",
		"-dJPEGQ="+strconv.Itoa(quality),
		"-sOutputFile="+tmp,
		src); err != nil {
		return err
	}

	tmpInfo, err := os.Stat(tmp)
	if err != nil {
		return fmt.Errorf("reading lossy result: %w", err)
	}
	if tmpInfo.Size() >= losslessSize {
		return nil
	}
	return os.Rename(tmp, out)
}
