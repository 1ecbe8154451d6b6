package service

import "fmt"

// Error codes returned by the mutation services. The handler layer maps them
// to HTTP statuses; nothing below the service boundary leaks driver errors.
const (
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeValidation = "VALIDATION"
	CodeInternal   = "INTERNAL"
)

// Error is the structured error crossing the service boundary. Details carries
// internal context for logs; callers only ever see Code and Message.
type Error struct {
	Code    string
	Message string
	Details string
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewNotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func NewConflict(message, details string) *Error {
	return &Error{Code: CodeConflict, Message: message, Details: details}
}

func NewValidation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// NewInternal wraps a storage failure. The wrapped error stays in Details so
// operators see it in logs while clients get an opaque message.
func NewInternal(message string, err error) *Error {
	e := &Error{Code: CodeInternal, Message: message}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}
