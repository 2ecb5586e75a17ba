// Package apperror defines the failures the API layer knows how to report.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	Internal Kind = iota
	Validation
	Unauthorized
	InvalidCredentials
	NotFound
	Conflict
	TooLarge
	RateLimited
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Unauthorized:
		return "unauthorized"
	case InvalidCredentials:
		return "invalid_credentials"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case TooLarge:
		return "too_large"
	case RateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Error is a classified failure. Message is safe to show to clients; Err is
// the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Details []string
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

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewValidation reports malformed input with one message per failed field.
func NewValidation(details ...string) *Error {
	return &Error{Kind: Validation, Message: "Validation failed", Details: details}
}

func NewUnauthorized() *Error {
	return &Error{Kind: Unauthorized, Message: "Authentication required"}
}

func NewInvalidCredentials() *Error {
	return &Error{Kind: InvalidCredentials, Message: "Invalid username or password"}
}

func NewNotFound(message string) *Error {
	return &Error{Kind: NotFound, Message: message}
}

// NewTaskNotFound reports a task that is absent or owned by another user.
func NewTaskNotFound(id int64) *Error {
	return NewNotFound(fmt.Sprintf("Task with ID %d not found", id))
}

func NewConflict(message string) *Error {
	return &Error{Kind: Conflict, Message: message}
}

func NewTooLarge() *Error {
	return &Error{Kind: TooLarge, Message: "Request too large"}
}

func NewRateLimited() *Error {
	return &Error{Kind: RateLimited, Message: "Too many requests, please try again later"}
}

// Wrap marks err as an unclassified failure.
func Wrap(err error, message string) *Error {
	return &Error{Kind: Internal, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}
