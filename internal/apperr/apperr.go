package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure independently of the entity it concerns.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindSlotUnavailable
	KindInvalidStateTransition
	KindOwnershipViolation
	KindInvalidScheduleSpacing
	KindPersistenceFailure
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindSlotUnavailable:
		return "slot_unavailable"
	case KindInvalidStateTransition:
		return "invalid_state_transition"
	case KindOwnershipViolation:
		return "ownership_violation"
	case KindInvalidScheduleSpacing:
		return "invalid_schedule_spacing"
	case KindPersistenceFailure:
		return "persistence_failure"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against a kind.
var (
	ErrNotFound               = &Error{Kind: KindNotFound, Message: "not found"}
	ErrSlotUnavailable        = &Error{Kind: KindSlotUnavailable, Message: "slot unavailable"}
	ErrInvalidStateTransition = &Error{Kind: KindInvalidStateTransition, Message: "invalid state transition"}
	ErrOwnershipViolation     = &Error{Kind: KindOwnershipViolation, Message: "ownership violation"}
	ErrInvalidScheduleSpacing = &Error{Kind: KindInvalidScheduleSpacing, Message: "invalid schedule spacing"}
	ErrPersistenceFailure     = &Error{Kind: KindPersistenceFailure, Message: "persistence failure"}
	ErrInvalidInput           = &Error{Kind: KindInvalidInput, Message: "invalid input"}
)

// Error is the typed failure returned by every public scheduling operation.
type Error struct {
	Kind    Kind
	ID      string // offending identifier, if any
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so wrapped errors compare against the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newf(kind Kind, id, format string, args ...any) *Error {
	return &Error{Kind: kind, ID: id, Message: fmt.Sprintf(format, args...)}
}

func NotFound(id, format string, args ...any) *Error {
	return newf(KindNotFound, id, format, args...)
}

func SlotUnavailable(id, format string, args ...any) *Error {
	return newf(KindSlotUnavailable, id, format, args...)
}

func InvalidTransition(id, format string, args ...any) *Error {
	return newf(KindInvalidStateTransition, id, format, args...)
}

func Ownership(id, format string, args ...any) *Error {
	return newf(KindOwnershipViolation, id, format, args...)
}

func Spacing(id, format string, args ...any) *Error {
	return newf(KindInvalidScheduleSpacing, id, format, args...)
}

func InvalidInput(id, format string, args ...any) *Error {
	return newf(KindInvalidInput, id, format, args...)
}

// Persistence wraps a collaborator load/save failure for the named collection.
func Persistence(collection string, err error) *Error {
	return &Error{
		Kind:    KindPersistenceFailure,
		ID:      collection,
		Message: fmt.Sprintf("persist %s", collection),
		Err:     err,
	}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
