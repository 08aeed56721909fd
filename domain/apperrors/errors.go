// Package apperrors defines the typed error kinds returned by the wagering engine.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error so callers can branch without string matching
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidStateTransition
	KindInsufficientFunds
	KindNotEligible
	KindAlreadyClaimed
	KindNoWinnings
	KindNotFound
	KindPermissionDenied
	KindConcurrencyConflict
)

var kindNames = map[Kind]string{
	KindInternal:               "internal",
	KindValidation:             "validation",
	KindInvalidStateTransition: "invalid_state_transition",
	KindInsufficientFunds:      "insufficient_funds",
	KindNotEligible:            "not_eligible",
	KindAlreadyClaimed:         "already_claimed",
	KindNoWinnings:             "no_winnings",
	KindNotFound:               "not_found",
	KindPermissionDenied:       "permission_denied",
	KindConcurrencyConflict:    "concurrency_conflict",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the engine error type. Message is safe to show to the caller,
// Err carries the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind with an equal message, or an
// *Error with an empty message acting as a kind wildcard.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Sentinels for matching with errors.Is
var (
	ErrValidation             = &Error{Kind: KindValidation}
	ErrInvalidStateTransition = &Error{Kind: KindInvalidStateTransition}
	ErrInsufficientFunds      = &Error{Kind: KindInsufficientFunds}
	ErrNotEligible            = &Error{Kind: KindNotEligible}
	ErrAlreadyClaimed         = &Error{Kind: KindAlreadyClaimed}
	ErrNoWinnings             = &Error{Kind: KindNoWinnings}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrPermissionDenied       = &Error{Kind: KindPermissionDenied}
	ErrConcurrencyConflict    = &Error{Kind: KindConcurrencyConflict}

	// ErrInvalidOdds is the validation error for requested odds at or below 1.0
	ErrInvalidOdds = &Error{Kind: KindValidation, Message: "odds must be greater than 1.0"}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

func InvalidTransition(format string, args ...any) *Error {
	return newf(KindInvalidStateTransition, format, args...)
}

func InsufficientFunds(format string, args ...any) *Error {
	return newf(KindInsufficientFunds, format, args...)
}

func NotEligible(format string, args ...any) *Error {
	return newf(KindNotEligible, format, args...)
}

func AlreadyClaimed(format string, args ...any) *Error {
	return newf(KindAlreadyClaimed, format, args...)
}

func NoWinnings(format string, args ...any) *Error {
	return newf(KindNoWinnings, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

func PermissionDenied(format string, args ...any) *Error {
	return newf(KindPermissionDenied, format, args...)
}

// Conflict wraps a lock or serialization failure reported by storage
func Conflict(err error, format string, args ...any) *Error {
	e := newf(KindConcurrencyConflict, format, args...)
	e.Err = err
	return e
}

// Internal wraps an unexpected failure. Its message is never shown to callers.
func Internal(err error, format string, args ...any) *Error {
	e := newf(KindInternal, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage renders the caller-visible message for err
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return "something went wrong, please try again later"
	}
	return e.Message
}
