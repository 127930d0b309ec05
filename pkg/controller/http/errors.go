package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/secmon-lab/airform/pkg/usecase"
	"github.com/secmon-lab/airform/pkg/utils/errutil"
)

type errorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

// writeError answers a request that failed before reaching a use case
func writeError(w http.ResponseWriter, r *http.Request, statusCode int, msg string) {
	writeJSON(r.Context(), w, statusCode, errorResponse{Message: msg})
}

// statusOf maps use case error kinds to HTTP statuses
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, usecase.ErrStorageDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// clientError shows the use case message to the client and keeps the full
// chain for logging
type clientError struct {
	msg string
	err error
}

func (e *clientError) Error() string { return e.msg }
func (e *clientError) Unwrap() error { return e.err }

// handleError logs err and writes the matching error response
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var subErr *usecase.SubmissionError
	if errors.As(err, &subErr) {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{
			Message: subErr.Error(),
			Errors:  subErr.Errors,
		})
		return
	}

	status := statusOf(err)

	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		errutil.HandleHTTP(r.Context(), w, err, status)
		return
	}

	switch status {
	case http.StatusBadGateway:
		// Airtable details stay in the log; the client learns which call failed
		errutil.Handle(r.Context(), err, "Airtable request failed")
		writeError(w, r, status, ucErr.Message)
	case http.StatusNotImplemented:
		writeError(w, r, status, ucErr.Message)
	default:
		errutil.HandleHTTP(r.Context(), w, &clientError{msg: ucErr.Message, err: err}, status)
	}
}

// decodeJSON reads a JSON request body into v
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &usecase.Error{Kind: usecase.ErrValidation, Message: "Invalid JSON body", Cause: err}
	}
	return nil
}
