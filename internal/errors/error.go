package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryFeature Category = "feature"
	CategoryInstall Category = "install"
	CategoryPublish Category = "publish"
	CategoryCLI     Category = "cli"
)

// ComposeError is a structured error with a code, a detail and a suggestion.
type ComposeError struct {
	// Code is a unique error identifier (e.g., "E200").
	Code string

	// Category is the error type (config, feature, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ComposeError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ComposeError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ComposeError) WithSuggestion(s string) *ComposeError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *ComposeError) WithDetail(d string) *ComposeError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *ComposeError) Wrap(err error) *ComposeError {
	e.Wrapped = err
	return e
}

// New creates a ComposeError from a registered error code.
func New(code string) *ComposeError {
	template, ok := registry[code]
	if !ok {
		return &ComposeError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ComposeError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new ComposeError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ComposeError {
	return &ComposeError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ComposeError. Errors that already
// carry a ComposeError anywhere in their chain are returned as that error.
func FromError(err error, code string) *ComposeError {
	if err == nil {
		return nil
	}
	var ce *ComposeError
	if stderrors.As(err, &ce) {
		return ce
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err carries a ComposeError with the given code.
func HasCode(err error, code string) bool {
	var ce *ComposeError
	if !stderrors.As(err, &ce) {
		return false
	}
	return ce.Code == code
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
