// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pdf-toolkit pipeline.
package types

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OpKind identifies one of the supported conversion operations. The string
// values are the vocabulary used by the CLI, batch manifests, the message
// bus, and the history store.
type OpKind string

const (
	OpPDFToWord     OpKind = "pdf-to-word"
	OpPDFToExcel    OpKind = "pdf-to-excel"
	OpPDFToImages   OpKind = "pdf-to-images"
	OpPDFToText     OpKind = "pdf-to-text"
	OpExcelToPDF    OpKind = "excel-to-pdf"
	OpImageToPDF    OpKind = "image-to-pdf"
	OpMerge         OpKind = "merge"
	OpSplit         OpKind = "split"
	OpCompress      OpKind = "compress"
	OpCompressImage OpKind = "compress-image"
	OpOCRExtract    OpKind = "ocr-extract"
)

// Ops returns every supported operation kind in display order.
func Ops() []OpKind {
	return []OpKind{
		OpPDFToWord, OpPDFToExcel, OpPDFToImages, OpPDFToText,
		OpExcelToPDF, OpImageToPDF, OpMerge, OpSplit,
		OpCompress, OpCompressImage, OpOCRExtract,
	}
}

// ParseOpKind validates a string tag against the known operation kinds.
func ParseOpKind(s string) (OpKind, error) {
	for _, op := range Ops() {
		if string(op) == s {
			return op, nil
		}
	}
	return "", Failf(CodeUnsupportedOperation, "unsupported operation %q", s)
}

// JobStatus tracks a job through its lifecycle:
// submitted -> running -> succeeded | failed.
type JobStatus string

const (
	StatusSubmitted JobStatus = "submitted"
	StatusRunning   JobStatus = "running"
	StatusSucceeded JobStatus = "succeeded"
	StatusFailed    JobStatus = "failed"
)

// JobOptions carries per-operation tuning. Zero values mean "use the
// operation's default".
type JobOptions struct {
	// Quality is the JPEG quality (1-100) for lossy compression and image
	// re-encoding. Defaults: 80 (compress), 75 (compress-image), 85
	// (image-to-pdf).
	Quality int `json:"quality,omitempty" yaml:"quality,omitempty"`

	// DPI is the raster resolution for page rendering. Defaults: 150
	// (compress), 300 (pdf-to-images, ocr-extract).
	DPI int `json:"dpi,omitempty" yaml:"dpi,omitempty"`

	// FirstPage and LastPage select a 1-based inclusive page range.
	// Zero means from the first / to the last page.
	FirstPage int `json:"first_page,omitempty" yaml:"first_page,omitempty"`
	LastPage  int `json:"last_page,omitempty" yaml:"last_page,omitempty"`

	// EachPage splits every page into its own file (split only).
	EachPage bool `json:"each_page,omitempty" yaml:"each_page,omitempty"`

	// Scale is a percentage resize applied before image re-encoding
	// (compress-image only). 0 or 100 leaves dimensions unchanged.
	Scale int `json:"scale,omitempty" yaml:"scale,omitempty"`

	// Language is the OCR language code (default "eng").
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}

// JobDescriptor is one requested conversion. Descriptors are immutable once
// submitted: they are constructed by NewJob, passed by value through the
// pipeline, and never modified by handlers.
type JobDescriptor struct {
	// ID uniquely identifies the job.
	ID string `json:"id" yaml:"id"`

	// Op is the requested operation kind.
	Op OpKind `json:"op" yaml:"op"`

	// Sources are the input file paths. Most operations take exactly one;
	// merge and image-to-pdf accept several.
	Sources []string `json:"sources" yaml:"sources"`

	// Output is the output artifact path: a file for most operations, a
	// directory for pdf-to-images and split --each.
	Output string `json:"output" yaml:"output"`

	// Options holds per-operation tuning.
	Options JobOptions `json:"options,omitempty" yaml:"options,omitempty"`

	// SubmittedAt is the submission timestamp.
	SubmittedAt time.Time `json:"submitted_at" yaml:"submitted_at"`
}

// NewJob builds a JobDescriptor with a fresh ID and submission time. The
// sources slice is copied so later mutation by the caller cannot leak into
// the descriptor. An empty output resolves to the operation's default path,
// except for URL sources, which resolve after staging puts them on disk.
func NewJob(op OpKind, sources []string, output string, opts JobOptions) JobDescriptor {
	srcs := make([]string, len(sources))
	copy(srcs, sources)
	if output == "" && len(srcs) > 0 && !strings.Contains(srcs[0], "://") {
		output = DefaultOutput(op, srcs[0])
	}
	return JobDescriptor{
		ID:          uuid.NewString(),
		Op:          op,
		Sources:     srcs,
		Output:      output,
		Options:     opts,
		SubmittedAt: time.Now().UTC(),
	}
}

// Source returns the first source path, or "" when none was given.
func (j JobDescriptor) Source() string {
	if len(j.Sources) == 0 {
		return ""
	}
	return j.Sources[0]
}

// JobResult is the terminal record of one executed job. One JobDescriptor
// produces at most one JobResult.
type JobResult struct {
	// JobID references the descriptor this result belongs to.
	JobID string `json:"job_id" yaml:"job_id"`

	// Op echoes the operation kind for standalone consumers.
	Op OpKind `json:"op" yaml:"op"`

	// Source echoes the first source path, so progress lines and bus
	// consumers can name the input without the descriptor at hand.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Status is the terminal state: succeeded or failed.
	Status JobStatus `json:"status" yaml:"status"`

	// Output is the artifact path. Empty on failure.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// Error is a human-readable failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Code classifies the failure. Empty on success.
	Code FailureCode `json:"code,omitempty" yaml:"code,omitempty"`

	// Pages is the number of pages (or images) processed, when known.
	Pages int `json:"pages,omitempty" yaml:"pages,omitempty"`

	// BytesIn and BytesOut are the total source size and artifact size.
	BytesIn  int64 `json:"bytes_in,omitempty" yaml:"bytes_in,omitempty"`
	BytesOut int64 `json:"bytes_out,omitempty" yaml:"bytes_out,omitempty"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	// Duration is FinishedAt - StartedAt.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Succeeded reports whether the job reached the succeeded state.
func (r JobResult) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// imageExts are the source extensions recognized as images. Formats outside
// the set imaging can decode still resolve here; decoding errors surface as
// conversion failures at execution time.
var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true,
	".tif": true, ".tiff": true, ".gif": true, ".webp": true,
}

// IsImagePath reports whether path has a recognized image extension.
func IsImagePath(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// DefaultOutput returns the conventional output path for op applied to
// source: suffixed siblings for single-file outputs, a sibling directory for
// image bursts, merged.pdf beside the first source for merges.
func DefaultOutput(op OpKind, source string) string {
	stem := strings.TrimSuffix(source, filepath.Ext(source))
	switch op {
	case OpPDFToWord:
		return stem + ".docx"
	case OpPDFToExcel:
		return stem + "_tables.xlsx"
	case OpPDFToImages:
		return stem + "_images"
	case OpPDFToText:
		return stem + "_extracted.txt"
	case OpExcelToPDF, OpImageToPDF:
		return stem + ".pdf"
	case OpMerge:
		return filepath.Join(filepath.Dir(source), "merged.pdf")
	case OpSplit:
		return stem + "_split.pdf"
	case OpCompress:
		return stem + "_compressed.pdf"
	case OpCompressImage:
		return stem + "_compressed.jpg"
	case OpOCRExtract:
		return stem + "_ocr.xlsx"
	}
	return stem + ".out"
}

// ConvertOpFor maps a source file and a target format tag (docx, xlsx, png,
// txt, pdf) to the operation kind the convert command should run. Unsupported
// pairs are classified as unsupported_format.
func ConvertOpFor(source, target string) (OpKind, error) {
	ext := strings.ToLower(filepath.Ext(source))
	target = strings.ToLower(strings.TrimPrefix(target, "."))

	switch {
	case ext == ".pdf" && target == "docx":
		return OpPDFToWord, nil
	case ext == ".pdf" && target == "xlsx":
		return OpPDFToExcel, nil
	case ext == ".pdf" && target == "png":
		return OpPDFToImages, nil
	case ext == ".pdf" && target == "txt":
		return OpPDFToText, nil
	case (ext == ".xlsx" || ext == ".xls") && target == "pdf":
		return OpExcelToPDF, nil
	case IsImagePath(source) && target == "pdf":
		return OpImageToPDF, nil
	}
	return "", Failf(CodeUnsupportedFormat, "no conversion from %s to %s", displayExt(ext), target)
}

func displayExt(ext string) string {
	if ext == "" {
		return "file without extension"
	}
	return ext
}
