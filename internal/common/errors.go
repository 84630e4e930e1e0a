package common

import (
	"errors"
	"fmt"
)

// AppError represents a run-level failure with a stable code.
type AppError struct {
	Code    string
	Message string
	Kind    error
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes both the kind sentinel and the underlying cause to errors.Is/As.
func (e *AppError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Error kinds.
var (
	ErrConfig               = errors.New("configuration error")
	ErrNoInput              = errors.New("no input documents")
	ErrExtraction           = errors.New("extraction failed")
	ErrAllExtractionsFailed = errors.New("all extractions failed")
	ErrAnalysis             = errors.New("analysis failed")
	ErrInvalidInput         = errors.New("invalid input")
)

// Error codes.
const (
	CodeConfig               = "CONFIG_ERROR"
	CodeNoInput              = "NO_INPUT"
	CodeExtraction           = "EXTRACTION_FAILURE"
	CodeAllExtractionsFailed = "ALL_EXTRACTIONS_FAILED"
	CodeAnalysis             = "ANALYSIS_FAILURE"
)

func NewAppError(code, message string, kind, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Kind:    kind,
		Cause:   cause,
	}
}

func NewConfigError(message string) *AppError {
	return NewAppError(CodeConfig, message, ErrConfig, nil)
}

func NewNoInputError() *AppError {
	return NewAppError(CodeNoInput, "no documents were supplied", ErrNoInput, nil)
}

// NewExtractionFailure marks a single document as failed; callers recover from it.
func NewExtractionFailure(filename string, cause error) *AppError {
	return NewAppError(CodeExtraction, fmt.Sprintf("could not extract questions from %q", filename), ErrExtraction, cause)
}

func NewAllExtractionsFailedError(total int) *AppError {
	return NewAppError(CodeAllExtractionsFailed,
		fmt.Sprintf("none of the %d documents could be read; check the files and try again", total),
		ErrAllExtractionsFailed, nil)
}

func NewAnalysisFailure(cause error) *AppError {
	return NewAppError(CodeAnalysis, "could not group the extracted questions", ErrAnalysis, cause)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// UserMessage returns the human-readable part of a run-level error.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
