package usecase

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Error kinds of the use case layer. The HTTP controller maps each to a status.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUpstream        = errors.New("Airtable request failed")
	ErrStorageDisabled = errors.New("attachment storage is not configured")
)

// Context keys for error values
const (
	FormIDKey  = "form_id"
	BaseIDKey  = "base_id"
	TableIDKey = "table_id"
	UserIDKey  = "user_id"
)

// Error is a use case failure with a message that can be shown to API
// clients. errors.Is matches its Kind as well as anything in Cause.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func newError(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Cause }

// causeMessage returns the message of the outermost goerr in err without the
// text of the sentinels it wraps
func causeMessage(err error) string {
	if ge := goerr.Unwrap(err); ge != nil {
		if msg := ge.Printable().Message; msg != "" {
			return msg
		}
	}
	return err.Error()
}

// SubmissionError carries every answer problem of a rejected submission
type SubmissionError struct {
	Errors []string
}

func (e *SubmissionError) Error() string { return "Validation failed" }

func (e *SubmissionError) Is(target error) bool { return target == ErrValidation }
