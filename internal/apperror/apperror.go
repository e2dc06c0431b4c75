package apperror

import (
	"errors"
	"net/http"
	"slices"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInsufficientStock
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	default:
		return "internal"
	}
}

// Error is a failure that knows how it should be presented to the client.
// Message is the top-level envelope message, Details fill the errors array.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func New(kind Kind, message string, details ...string) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

func Wrap(kind Kind, message string, err error, details ...string) *Error {
	return &Error{Kind: kind, Message: message, Details: details, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	if len(e.Details) > 0 {
		return e.Message + ": " + e.Details[0]
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two *Error values of the same kind and message, so sentinels
// survive WithDetails copies. A target that carries details only matches an
// error with the same details.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind || e.Message != t.Message {
		return false
	}
	return len(t.Details) == 0 || slices.Equal(e.Details, t.Details)
}

// WithDetails returns a copy carrying the given detail strings.
func (e *Error) WithDetails(details ...string) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

func Validation(message string, details ...string) *Error {
	return New(KindValidation, message, details...)
}

func Conflict(message string, details ...string) *Error {
	return New(KindConflict, message, details...)
}

func Unauthorized(message string, details ...string) *Error {
	return New(KindUnauthorized, message, details...)
}

func Forbidden(message string, details ...string) *Error {
	return New(KindForbidden, message, details...)
}

func NotFound(message string, details ...string) *Error {
	return New(KindNotFound, message, details...)
}

func InsufficientStock(message string, details ...string) *Error {
	return New(KindInsufficientStock, message, details...)
}

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err, "Internal server error")
}

// KindOf reports the kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindConflict, KindInsufficientStock:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
