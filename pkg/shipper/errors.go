package shipper

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure by who caused it and whether its message may
// be shown to an end user.
type ErrorKind int

const (
	// KindInternal is a system failure. Its message is for logs only.
	KindInternal ErrorKind = iota + 1
	// KindInvalidInput is a caller-correctable problem with the order.
	KindInvalidInput
	// KindAPI is a non-fatal error reported by the carrier API.
	KindAPI
	// KindAPIFatal is a fatal error reported by the carrier API.
	KindAPIFatal
)

// String returns the kind name used in logs and JSON responses.
func (k ErrorKind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindInvalidInput:
		return "invalid_input"
	case KindAPI:
		return "api_error"
	case KindAPIFatal:
		return "api_fatal_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// UserSafe reports whether messages of this kind may be shown verbatim.
func (k ErrorKind) UserSafe() bool {
	return k == KindInvalidInput || k == KindAPI || k == KindAPIFatal
}

// Messages shown in place of anything that is not user safe.
const (
	InternalPublicMessage = "Error occurred, try again later"
	UnknownPublicMessage  = "We are temporarily unable to process your request, please try again later"
)

// Error is the single error type returned by carrier clients.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError creates a new Error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// Internal creates a KindInternal error.
func Internal(message string) *Error {
	return NewError(KindInternal, message)
}

// InvalidInput creates a KindInvalidInput error.
func InvalidInput(message string) *Error {
	return NewError(KindInvalidInput, message)
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// Sentinels for errors.Is checks by kind.
var (
	ErrInternal     = &Error{Kind: KindInternal}
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
	ErrAPI          = &Error{Kind: KindAPI}
	ErrAPIFatal     = &Error{Kind: KindAPIFatal}
)

// ErrCarrierNotFound indicates the requested carrier is not registered.
var ErrCarrierNotFound = errors.New("carrier not found")

// KindOf returns the kind of err. Errors that are not *Error count as internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the text an end user may see for err.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return UnknownPublicMessage
	}
	if e.Kind.UserSafe() {
		return e.Message
	}
	return InternalPublicMessage
}
