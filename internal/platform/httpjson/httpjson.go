// Package httpjson writes JSON responses and maps service errors to HTTP status codes.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/shahwaiz14/event-tracker/internal/apperr"
	"github.com/shahwaiz14/event-tracker/internal/lib/logger/sl"
)

// maxBodyBytes bounds request bodies; event log payloads are the largest legitimate input.
const maxBodyBytes = 1 << 20

// ErrorBody is the shape of every non-validation error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// ValidationBody is the shape of validation error responses.
type ValidationBody struct {
	Errors map[string][]string `json:"errors"`
}

// Write encodes v as JSON with the given status. A nil v writes no body.
func Write(w http.ResponseWriter, status int, v any) {
	if v == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("httpjson: encode response", sl.Err(err))
	}
}

// WriteError maps err to a status code and body:
// validation and duplicate names and unknown log targets are 400, missing or foreign
// resources are 404, missing credentials are 401, anything else is logged and rendered as 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := apperr.AsValidation(err); ok {
		Write(w, http.StatusBadRequest, ValidationBody{Errors: ve.Fields})
		return
	}
	switch {
	case errors.Is(err, apperr.ErrDuplicate):
		Write(w, http.StatusBadRequest, ErrorBody{Error: apperr.ErrDuplicate.Error()})
	case errors.Is(err, apperr.ErrEventNotFound):
		Write(w, http.StatusBadRequest, ErrorBody{Error: apperr.EventNotFoundMessage})
	case errors.Is(err, apperr.ErrUsernameTaken):
		Write(w, http.StatusBadRequest, ErrorBody{Error: apperr.ErrUsernameTaken.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		Write(w, http.StatusNotFound, ErrorBody{Error: apperr.ErrNotFound.Error()})
	case errors.Is(err, apperr.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
		Write(w, http.StatusUnauthorized, ErrorBody{Error: apperr.ErrUnauthenticated.Error()})
	case errors.Is(err, apperr.ErrInvalidCredentials):
		Write(w, http.StatusUnauthorized, ErrorBody{Error: apperr.ErrInvalidCredentials.Error()})
	default:
		slog.ErrorContext(r.Context(), "request failed", slog.String("method", r.Method), slog.String("path", r.URL.Path), sl.Err(err))
		Write(w, http.StatusInternalServerError, ErrorBody{Error: "internal error"})
	}
}

// Decode reads a JSON body into dst. Empty or malformed bodies become a ValidationError
// on the "body" field.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.NewValidationError("body", "Request body is required.")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.NewValidationError("body", "Request body is too large.")
		}
		return apperr.NewValidationError("body", "JSON parse error: "+err.Error())
	}
	if dec.More() {
		return apperr.NewValidationError("body", "Request body must contain a single JSON value.")
	}
	return nil
}
