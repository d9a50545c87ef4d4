// Package apperr defines the error kinds returned by the scheduling core.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidTransition  Kind = "invalid_transition"
	KindNotToday           Kind = "not_today"
	KindAlreadyStarted     Kind = "already_started"
	KindAlreadyEnded       Kind = "already_ended"
	KindNotStarted         Kind = "not_started"
	KindAlreadyConfirmed   Kind = "already_confirmed"
	KindInvalidRange       Kind = "invalid_range"
	KindNotEditable        Kind = "not_editable"
	KindNotFound           Kind = "not_found"
	KindStorageUnavailable Kind = "storage_unavailable"
	KindInvalidInput       Kind = "invalid_input"
)

// Error carries a Kind plus the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so callers can compare against the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidTransition  = &Error{Kind: KindInvalidTransition}
	ErrNotToday           = &Error{Kind: KindNotToday}
	ErrAlreadyStarted     = &Error{Kind: KindAlreadyStarted}
	ErrAlreadyEnded       = &Error{Kind: KindAlreadyEnded}
	ErrNotStarted         = &Error{Kind: KindNotStarted}
	ErrAlreadyConfirmed   = &Error{Kind: KindAlreadyConfirmed}
	ErrInvalidRange       = &Error{Kind: KindInvalidRange}
	ErrNotEditable        = &Error{Kind: KindNotEditable}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrStorageUnavailable = &Error{Kind: KindStorageUnavailable}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
)

func New(kind Kind, op string) error {
	return &Error{Kind: kind, Op: op}
}

func Wrap(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Storage wraps a persistence failure. Errors that already carry a kind pass through.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindStorageUnavailable, Op: op, Err: err}
}

// KindOf returns the kind of err, or an empty Kind for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Retryable reports whether the caller may retry the failed operation.
func Retryable(err error) bool {
	return KindOf(err) == KindStorageUnavailable
}

// IsBusinessRule reports whether err is a deterministic validation failure.
func IsBusinessRule(err error) bool {
	switch KindOf(err) {
	case "", KindStorageUnavailable:
		return false
	}
	return true
}

var messages = map[Kind]string{
	KindInvalidTransition:  "This action is not possible in the current state",
	KindNotToday:           "You can only clock in or out on the day of your shift",
	KindAlreadyStarted:     "You have already clocked in for this shift",
	KindAlreadyEnded:       "You have already clocked out of this shift",
	KindNotStarted:         "You have not clocked in for this shift yet",
	KindAlreadyConfirmed:   "This shift is already confirmed",
	KindInvalidRange:       "The end date cannot be earlier than the start date",
	KindNotEditable:        "Only pending requests can be changed",
	KindNotFound:           "Record not found",
	KindStorageUnavailable: "The service is temporarily unavailable, please try again",
	KindInvalidInput:       "Invalid input",
}

// Message maps err to a sentence suitable for showing to staff.
func Message(err error) string {
	if err == nil {
		return ""
	}
	kind := KindOf(err)
	if kind == KindInvalidInput {
		var e *Error
		if errors.As(err, &e) && e.Err != nil {
			return messages[kind] + ": " + e.Err.Error()
		}
	}
	if msg, ok := messages[kind]; ok {
		return msg
	}
	return "Something went wrong"
}
