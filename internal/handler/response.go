package handler

// RESPONSE HELPERS:
// Every error response from the API has the same shape:
//   {"error": "quota_exceeded", "message": "You've reached your search limit..."}
//
// Validation errors also name the offending field, and errors raised by an
// event carry the session snapshot so the front end can re-render the page
// the failure left behind (error banner, cleared results, and so on).

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/session"
)

// maxBodyBytes caps request bodies. Profiles with a portfolio are the largest.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error    string            `json:"error"`           // Machine-readable error type (e.g., "not_found")
	Message  string            `json:"message"`         // Human-readable description
	Field    string            `json:"field,omitempty"` // Offending input field for validation errors
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set before the body; once Encode writes,
// later header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorStatus maps a domain error to its HTTP status and machine-readable type.
//
// errors.Is walks joined errors too, so the collaborator failures built with
// errors.Join(ErrUnavailable, cause) still match their sentinel.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrQuotaExceeded):
		return http.StatusPaymentRequired, "quota_exceeded"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrSubscriptionFailed):
		return http.StatusBadGateway, "subscription_failed"
	case errors.Is(err, apperror.ErrSearchUnavailable):
		return http.StatusServiceUnavailable, "search_unavailable"
	case errors.Is(err, apperror.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// errorResponse builds the body for err. Unknown errors get a generic
// message; the raw text may contain SQL or file paths.
func errorResponse(err error) (int, ErrorResponse) {
	status, errorType := errorStatus(err)

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		}
	}
	return status, ErrorResponse{
		Error:   errorType,
		Message: appErr.Message,
		Field:   appErr.Field,
	}
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
func writeError(w http.ResponseWriter, err error) {
	status, body := errorResponse(err)
	writeJSON(w, status, body)
}

// writeSnapshot answers an event. On failure the error body carries the
// snapshot the event left behind, when there is one.
func writeSnapshot(w http.ResponseWriter, snap session.Snapshot, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, snap)
		return
	}
	status, body := errorResponse(err)
	if snap.State.View != "" {
		body.Snapshot = &snap
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a JSON request body into dst. Unknown fields are rejected
// so typos in the front end surface as 400s instead of silently ignored input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "Invalid JSON body.")
	}
	return nil
}
