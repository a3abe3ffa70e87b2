// Package apperr defines the error kinds surfaced by every submission operation.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the stable, caller-visible classification of an error
type Kind string

const (
	KindValidation             Kind = "ValidationError"
	KindForbidden              Kind = "Forbidden"
	KindNotFound               Kind = "NotFound"
	KindAlreadyFinalized       Kind = "AlreadyFinalized"
	KindMissingReviewNotes     Kind = "MissingReviewNotes"
	KindMissingRejectionReason Kind = "MissingRejectionReason"
	KindAlreadyApproved        Kind = "AlreadyApproved"
	KindNotAccepted            Kind = "NotAccepted"
	KindNoJustificationDoc     Kind = "NoJustificationDocument"
)

// Codes refine a kind without changing how callers branch on it
const (
	CodeInvalidCategory   = "InvalidCategory"
	CodeInvalidTransition = "InvalidTransition"
)

// Error is a classified application error
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind, and on code when the target carries one
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Sentinels for errors.Is checks
var (
	ErrValidation             = &Error{Kind: KindValidation}
	ErrInvalidCategory        = &Error{Kind: KindValidation, Code: CodeInvalidCategory}
	ErrInvalidTransition      = &Error{Kind: KindValidation, Code: CodeInvalidTransition}
	ErrForbidden              = &Error{Kind: KindForbidden}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrAlreadyFinalized       = &Error{Kind: KindAlreadyFinalized}
	ErrMissingReviewNotes     = &Error{Kind: KindMissingReviewNotes}
	ErrMissingRejectionReason = &Error{Kind: KindMissingRejectionReason}
	ErrAlreadyApproved        = &Error{Kind: KindAlreadyApproved}
	ErrNotAccepted            = &Error{Kind: KindNotAccepted}
	ErrNoJustificationDoc     = &Error{Kind: KindNoJustificationDoc}
)

// New creates an error of the given kind
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a ValidationError
func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

// InvalidCategory creates a ValidationError carrying the InvalidCategory code
func InvalidCategory(category string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeInvalidCategory,
		Message: fmt.Sprintf("unknown item category %q", category),
	}
}

// InvalidTransition creates a ValidationError for a transition the state machine does not permit
func InvalidTransition(from, to string, cause error) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot move from %s to %s", from, to),
		Err:     cause,
	}
}

// KindOf returns the kind of the first classified error in the chain, or "" if none
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// CodeOf returns the code of the first classified error in the chain
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
