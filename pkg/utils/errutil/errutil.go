package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/utils/logging"
)

// Handle logs the error with a message and reports it to Sentry when a Sentry
// client is initialized. It returns err unchanged.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	report(err, msg, 0)
	return err
}

type errorBody struct {
	Message string `json:"message"`
}

// HandleHTTP logs the error and writes a JSON error response. Messages of 5xx
// errors are replaced by the status text so internal details stay in logs.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
		)
	}

	msg := err.Error()
	if statusCode >= http.StatusInternalServerError {
		report(err, "HTTP error", statusCode)
		msg = http.StatusText(statusCode)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if encErr := json.NewEncoder(w).Encode(errorBody{Message: msg}); encErr != nil {
		logger.Error("failed to encode error response", "error", encErr.Error())
	}
}

// report sends err to Sentry. It is a no-op while no Sentry client is bound.
func report(err error, msg string, statusCode int) {
	hub := sentry.CurrentHub()
	if hub.Client() == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("message", msg)
		if statusCode != 0 {
			scope.SetTag("status", http.StatusText(statusCode))
		}
		var ge *goerr.Error
		if errors.As(err, &ge) {
			scope.SetContext("goerr", sentry.Context(ge.Values()))
		}
		hub.CaptureException(err)
	})
}
