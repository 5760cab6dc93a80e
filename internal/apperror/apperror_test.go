package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("project", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("name", "name is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("project", "abc123"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "QuotaExceeded wraps ErrQuotaExceeded",
			err:       QuotaExceeded("no searches left"),
			target:    ErrQuotaExceeded,
			wantMatch: true,
		},
		{
			name:      "Unavailable wraps ErrUnavailable",
			err:       Unavailable("could not load", cause),
			target:    ErrUnavailable,
			wantMatch: true,
		},
		{
			name:      "Unavailable keeps the cause reachable",
			err:       Unavailable("could not load", cause),
			target:    cause,
			wantMatch: true,
		},
		{
			name:      "SearchUnavailable through fmt.Errorf wrapping",
			err:       fmt.Errorf("searching: %w", SearchUnavailable("busy", cause)),
			target:    ErrSearchUnavailable,
			wantMatch: true,
		},
		{
			name:      "SubscriptionFailed with nil cause",
			err:       SubscriptionFailed("billing down", nil),
			target:    ErrSubscriptionFailed,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("project", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "QuotaExceeded does NOT match ErrSearchUnavailable",
			err:       QuotaExceeded("no searches left"),
			target:    ErrSearchUnavailable,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("thread", "abc123"),
			wantMessage: "thread not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("name", "name is required"),
			wantMessage: "name is required",
		},
		{
			name:        "Conflict message includes resource and id",
			err:         Conflict("project", "job-1"),
			wantMessage: "project conflict with id job-1",
		},
		{
			name:        "SearchUnavailable hides the cause",
			err:         SearchUnavailable("try again later", errors.New("HTTP 503 from upstream")),
			wantMessage: "try again later",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("project", "abc123")
	unwrapped := err.Unwrap()

	if unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("email", "invalid email format")

	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
}
