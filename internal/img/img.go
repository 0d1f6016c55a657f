// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package img holds the native image handlers. Unlike the PDF operations,
// which shell out to external engines, image recompression runs in-process
// through the imaging library.
package img

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register webp decoding for imaging.Open

	"github.com/pdiddy/pdf-toolkit/internal/dispatch"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// defaultQuality is the JPEG quality for recompressed images.
const defaultQuality = 75

// EncodeJPEG loads src honoring EXIF orientation, scales it by scalePct
// percent when scalePct is a positive value other than 100, and writes the
// result to dst as a JPEG at the given quality.
func EncodeJPEG(src, dst string, quality, scalePct int) error {
	im, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(src), err)
	}
	if scalePct > 0 && scalePct != 100 {
		b := im.Bounds()
		w := max(b.Dx()*scalePct/100, 1)
		h := max(b.Dy()*scalePct/100, 1)
		im = imaging.Resize(im, w, h, imaging.Lanczos)
	}
	if err := imaging.Save(im, dst, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(dst), err)
	}
	return nil
}

// Compressor handles compress-image jobs.
type Compressor struct {
	quality int
}

// NewCompressor builds the handler. A zero quality falls back to the
// package default.
func NewCompressor(quality int) *Compressor {
	if quality == 0 {
		quality = defaultQuality
	}
	return &Compressor{quality: quality}
}

// Register wires the handler into d.
func (r *Compressor) Register(d *dispatch.Dispatcher) {
	d.Register(types.OpCompressImage, r.Compress)
}

// Compress re-encodes a single image at the configured JPEG quality,
// optionally resized by the Scale option percentage. The output format
// follows the output extension, a JPEG by default.
func (r *Compressor) Compress(_ context.Context, job types.JobDescriptor) (dispatch.Artifact, error) {
	src := job.Source()
	if !types.IsImagePath(src) {
		return dispatch.Artifact{}, types.Failf(types.CodeUnsupportedFormat,
			"%s requires image input, got %s", job.Op, filepath.Base(src))
	}
	quality := job.Options.Quality
	if quality == 0 {
		quality = r.quality
	}
	if err := EncodeJPEG(src, job.Output, quality, job.Options.Scale); err != nil {
		return dispatch.Artifact{}, types.WrapFailure(types.CodeConversionFailure, err)
	}
	return dispatch.Artifact{Path: job.Output, Pages: 1}, nil
}
