package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context. The code of a wrapped AppError is kept.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// GetCode returns the code of the outermost AppError in the chain, or "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether any AppError in the chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeThresholdConfig = "THRESHOLD_CONFIG"
	CodeMissingColumn   = "MISSING_COLUMN"
	CodeEmptyTable      = "EMPTY_TABLE"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
)

// ConfigInvalid reports an environment setting outside its allowed values.
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// ThresholdConfig reports a threshold setup that selects neither the single nor the two-sided mode.
func ThresholdConfig(message string) *AppError {
	return New(CodeThresholdConfig, message)
}

// MissingColumn reports a required column absent from an input table.
func MissingColumn(column, source string) *AppError {
	return New(CodeMissingColumn, fmt.Sprintf("the input file %s must have a column named %s", source, column))
}

// EmptyTable reports an input file without a header row and at least one data row.
func EmptyTable(source string) *AppError {
	return New(CodeEmptyTable, fmt.Sprintf("%s must have at least a header row and one data row", source))
}

// ValidationError reports input that parsed but produced nothing usable.
func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

// NotFound reports a missing file, sample or library.
func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// InvalidInput reports a malformed flag, query parameter or file line.
func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
