package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrQuotaExceeded blocks a search when a free-tier user has no searches left.
	ErrQuotaExceeded = errors.New("search quota exceeded")
	// ErrUnavailable marks a collaborator (store, auth provider) that failed during a load.
	ErrUnavailable = errors.New("collaborator unavailable")
	// ErrSearchUnavailable marks a failed call to the AI job finder.
	ErrSearchUnavailable = errors.New("search provider overloaded")
	// ErrSubscriptionFailed marks a rejected billing/subscription update.
	ErrSubscriptionFailed = errors.New("subscription update failed")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned when an operation needs a signed-in session.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

func QuotaExceeded(message string) *AppError {
	return &AppError{
		Err:     ErrQuotaExceeded,
		Message: message,
	}
}

// Unavailable wraps the underlying collaborator failure so it stays inspectable
// with errors.Is/As while the Message remains safe to show to the user.
func Unavailable(message string, cause error) *AppError {
	return &AppError{
		Err:     errors.Join(ErrUnavailable, cause),
		Message: message,
	}
}

func SearchUnavailable(message string, cause error) *AppError {
	return &AppError{
		Err:     errors.Join(ErrSearchUnavailable, cause),
		Message: message,
	}
}

func SubscriptionFailed(message string, cause error) *AppError {
	return &AppError{
		Err:     errors.Join(ErrSubscriptionFailed, cause),
		Message: message,
	}
}
