package common

import "errors"

// Error codes attached to AppError values.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeInvalidInput = "INVALID_INPUT"
	CodeLoadFailure  = "LOAD_FAILURE"
)

// AppError represents an error with an attached code.
type AppError struct {
	Code    string
	Message string
	Err     error
	Details any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// WithDetails attaches supplementary context, such as the offending file
// path, and returns the error for chaining.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// DetailsOf returns the details of the nearest AppError in the chain, or nil.
func DetailsOf(err error) any {
	var target *AppError
	if errors.As(err, &target) {
		return target.Details
	}
	return nil
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// CodeOf returns the code of the nearest AppError in the chain, or "".
func CodeOf(err error) string {
	var target *AppError
	if errors.As(err, &target) {
		return target.Code
	}
	return ""
}
