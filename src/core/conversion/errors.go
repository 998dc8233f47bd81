package conversion

import (
	"errors"
	"fmt"
)

// Stable error codes surfaced to API clients on failed jobs. These are
// part of the status contract and must not change between releases.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeInvalidFileType   = "INVALID_FILE_TYPE"
	CodeFileTooLarge      = "FILE_TOO_LARGE"
	CodeProcessing        = "PROCESSING_ERROR"
	CodeVectorization     = "VECTORIZATION_ERROR"
	CodeProcessingTimeout = "PROCESSING_TIMEOUT"
	CodeStorage           = "STORAGE_ERROR"
	CodeJobNotFound       = "JOB_NOT_FOUND"
	CodeUnexpected        = "UNEXPECTED_ERROR"
)

// Error is a classified pipeline failure. Stage implementations return it
// so the orchestrator can map the failure onto the job's error_code without
// reinterpreting the cause.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validationf builds an input-validation failure. Validation failures are
// rejected before a job is created and never enter the pipeline.
func Validationf(code string, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Processingf builds a decode/normalize stage failure.
func Processingf(err error, format string, args ...interface{}) *Error {
	return &Error{Code: CodeProcessing, Message: fmt.Sprintf(format, args...), Err: err}
}

// Vectorizationf builds a tracing/transcode stage failure.
func Vectorizationf(err error, format string, args ...interface{}) *Error {
	return &Error{Code: CodeVectorization, Message: fmt.Sprintf(format, args...), Err: err}
}

// Storagef builds a storage gateway failure.
func Storagef(err error, format string, args ...interface{}) *Error {
	return &Error{Code: CodeStorage, Message: fmt.Sprintf(format, args...), Err: err}
}

// Timeoutf builds a failure for a stage that exceeded its time budget.
func Timeoutf(err error, format string, args ...interface{}) *Error {
	return &Error{Code: CodeProcessingTimeout, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf extracts the stable code from a classified error. Unclassified
// errors report CodeUnexpected.
func CodeOf(err error) string {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code
	}
	return CodeUnexpected
}

// IsNotFound reports whether err refers to an unknown job id.
func IsNotFound(err error) bool {
	var cerr *Error
	return errors.As(err, &cerr) && cerr.Code == CodeJobNotFound
}
