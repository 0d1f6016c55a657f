// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// FailureCode classifies why a job failed. Codes are stable identifiers for
// machine consumers (history store, bus events, JSON output); the
// human-readable message travels separately in JobResult.Error.
type FailureCode string

const (
	// CodeFileNotFound: a source path does not exist or could not be read.
	CodeFileNotFound FailureCode = "file_not_found"

	// CodeUnsupportedOperation: the operation kind is not recognized.
	CodeUnsupportedOperation FailureCode = "unsupported_operation"

	// CodeUnsupportedFormat: the source or target format does not fit the
	// requested operation.
	CodeUnsupportedFormat FailureCode = "unsupported_format"

	// CodeConversionFailure: the underlying engine or library failed.
	CodeConversionFailure FailureCode = "conversion_failure"

	// CodeOCRUnavailable: the OCR engine is not installed.
	CodeOCRUnavailable FailureCode = "ocr_unavailable"
)

// JobError attaches a failure classification to an underlying error.
// Handlers return JobErrors for failures they can classify; anything
// unclassified defaults to conversion_failure at the executor boundary.
type JobError struct {
	Code FailureCode
	Err  error
}

func (e *JobError) Error() string { return e.Err.Error() }

func (e *JobError) Unwrap() error { return e.Err }

// Failf builds a classified job error.
func Failf(code FailureCode, format string, args ...any) *JobError {
	return &JobError{Code: code, Err: fmt.Errorf(format, args...)}
}

// WrapFailure classifies an existing error without losing its chain.
func WrapFailure(code FailureCode, err error) *JobError {
	return &JobError{Code: code, Err: err}
}

// ClassifyError extracts the failure code carried by err, or returns
// CodeConversionFailure when the error has no classification.
func ClassifyError(err error) FailureCode {
	var je *JobError
	if errors.As(err, &je) {
		return je.Code
	}
	return CodeConversionFailure
}
