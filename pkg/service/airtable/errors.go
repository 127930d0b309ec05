package airtable

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

// ErrAPI marks every failure reported by the Airtable Web API
var ErrAPI = goerr.New("Airtable API error")

// APIError is a non 2xx answer of the Airtable Web API
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable responded %d: %s", e.Status, e.Body)
}

func (e *APIError) Is(target error) bool {
	return target == ErrAPI
}

// IsNotFound reports whether err is an Airtable 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
