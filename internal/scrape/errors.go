package scrape

import (
	"context"
	"errors"
	"fmt"

	"github.com/law-makers/dashscrape/internal/merge"
	"github.com/law-makers/dashscrape/internal/output"
	"github.com/law-makers/dashscrape/internal/wait"
)

// Sentinel errors shared by the packages that raise them
var (
	ErrTimeout        = wait.ErrTimeout
	ErrMalformedInput = merge.ErrMalformedInput
	ErrWrite          = output.ErrWrite
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	ErrCodeTimeout        ErrorCode = "TIMEOUT"
	ErrCodeMalformedInput ErrorCode = "MALFORMED_INPUT"
	ErrCodeWrite          ErrorCode = "WRITE"
	ErrCodeBrowser        ErrorCode = "BROWSER"
	ErrCodeCanceled       ErrorCode = "CANCELED"
)

// ScrapeError wraps errors with the code used in structured logs
type ScrapeError struct {
	Code       ErrorCode
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *ScrapeError) Is(target error) bool {
	if t, ok := target.(*ScrapeError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewScrapeError creates a ScrapeError, deriving the code from err
func NewScrapeError(message string, err error) *ScrapeError {
	return &ScrapeError{
		Code:       Classify(err),
		Message:    message,
		Underlying: err,
	}
}

// Classify maps an error onto its code
func Classify(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout
	case errors.Is(err, ErrMalformedInput):
		return ErrCodeMalformedInput
	case errors.Is(err, ErrWrite):
		return ErrCodeWrite
	case errors.Is(err, context.Canceled):
		return ErrCodeCanceled
	default:
		return ErrCodeBrowser
	}
}
