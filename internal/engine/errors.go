package engine

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Kind classifies an engine failure. Expected domain conditions (full
// group, incompatible age) are Conflict/Incompatible results, never
// panics; only infrastructure failures map to Unavailable.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindInvalidArgument
	KindConflict
	KindIncompatible
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindConflict:
		return "conflict"
	case KindIncompatible:
		return "incompatible"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error is the typed result every engine operation returns on failure.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func notFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalidArgument(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func incompatible(format string, args ...interface{}) *Error {
	return &Error{Kind: KindIncompatible, Message: fmt.Sprintf(format, args...)}
}

func unavailable(msg string, cause error) *Error {
	return &Error{Kind: KindUnavailable, Message: msg, cause: cause}
}

// KindOf extracts the failure kind from any error returned by the engine.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnavailable
}

// classify maps a repository error for a lookup of the named entity:
// missing rows become NotFound, everything else Unavailable.
func classify(err error, entity string) *Error {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, mongo.ErrNoDocuments) {
		return notFound("%s not found", entity)
	}
	return unavailable(entity+" lookup failed", err)
}
