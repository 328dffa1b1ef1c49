package domain

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindSeatNotFound    Kind = "SeatNotFound"
	KindNotFound        Kind = "NotFound"
	KindSeatUnavailable Kind = "SeatUnavailable"
	KindConflict        Kind = "Conflict"
	KindValidation      Kind = "ValidationError"
	KindGateway         Kind = "GatewayError"
	KindIntegrity       Kind = "IntegrityError"
	KindUnauthenticated Kind = "Unauthenticated"
	KindInternal        Kind = "InternalError"
)

// Error carries a Kind that callers map to transport status codes.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrConflict) works on wrapped values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

var (
	ErrSeatNotFound      = &Error{Kind: KindSeatNotFound, Message: "seat not found"}
	ErrTicketNotFound    = &Error{Kind: KindNotFound, Message: "ticket not found"}
	ErrFlightNotFound    = &Error{Kind: KindNotFound, Message: "flight not found"}
	ErrSeatUnavailable   = &Error{Kind: KindSeatUnavailable, Message: "seat no longer available"}
	ErrConflict          = &Error{Kind: KindConflict, Message: "seat no longer available"}
	ErrIntegrity         = &Error{Kind: KindIntegrity, Message: "integrity violation"}
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated, Message: "unauthenticated"}
	ErrIllegalTransition = &Error{Kind: KindValidation, Message: "illegal ticket transition"}
)

func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message of err.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}
