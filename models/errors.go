package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeMalformedInput  = "MALFORMED_INPUT"
	ErrCodeNoData          = "NO_DATA"
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeUpstream        = "UPSTREAM_FAILED"
	ErrCodeUpstreamTimeout = "UPSTREAM_TIMEOUT"
	ErrCodeExport          = "EXPORT_FAILED"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks. Any PipelineError with the same code matches.
var (
	ErrMalformedInput = &PipelineError{Code: ErrCodeMalformedInput, Message: "could not interpret fetched data"}
	ErrNoData         = &PipelineError{Code: ErrCodeNoData, Message: "nothing to export yet"}
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PipelineError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type PipelineError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is matches any PipelineError carrying the same code.
func (e *PipelineError) Is(target error) bool {
	t, ok := target.(*PipelineError)
	return ok && t.Code == e.Code
}

// NewPipelineError creates a new PipelineError.
func NewPipelineError(code, message string, err error) *PipelineError {
	return &PipelineError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *PipelineError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
