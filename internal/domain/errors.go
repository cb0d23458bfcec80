package domain

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrUnauthorized      = errors.New("not authorized")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrDuplicateDispute  = errors.New("dispute already raised")
	ErrPayeeNotReady     = errors.New("payee not ready")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrGateway           = errors.New("payment gateway error")
)

// Error pairs one of the sentinel kinds with a message fit for the end user.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

func Validation(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func InvalidTransition(msg string) error { return &Error{Kind: ErrInvalidTransition, Message: msg} }

// Unauthorized never carries detail; callers must not learn which check failed.
func Unauthorized() error { return ErrUnauthorized }

// UserMessage returns the user-facing text of err, or fallback when err carries none.
func UserMessage(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}
