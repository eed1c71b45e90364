// Package apperr defines the error taxonomy shared by all request paths.
// Handlers map kinds to HTTP status codes; stores translate driver errors
// into kinds at the boundary so raw database errors never reach clients.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping and logging.
type Kind int

const (
	// Validation is a malformed or missing request field. User-correctable.
	Validation Kind = iota + 1
	// Auth is a missing, invalid or expired credential.
	Auth
	// Forbidden is a valid credential lacking the required role.
	Forbidden
	// NotFound is a referenced entity that does not exist.
	NotFound
	// Conflict is a duplicate unique key (email, SKU, document number).
	Conflict
	// BusinessRule is a domain rule rejection (insufficient stock,
	// session limit exceeded, tenant not yet approved).
	BusinessRule
	// Internal is an unexpected database or transport failure. The cause
	// is logged server-side; clients only see a generic message.
	Internal
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Auth:
		return "auth"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case BusinessRule:
		return "business_rule"
	default:
		return "internal"
	}
}

// Error carries a kind, a client-safe message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error of the given kind with a client-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with formatting. The formatted message is client-visible,
// so it must not embed raw driver error text.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a kinded error. The cause is available via
// errors.Unwrap for logging but is not part of the client message.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, or Internal if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the client-safe message for err. Errors without a
// kind collapse to a generic message.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
