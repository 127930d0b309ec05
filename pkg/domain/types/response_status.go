package types

import "fmt"

// ResponseStatus represents the status of a stored form response
type ResponseStatus string

const (
	ResponseStatusSubmitted ResponseStatus = "submitted"
)

// AllResponseStatuses returns all valid response statuses
func AllResponseStatuses() []ResponseStatus {
	return []ResponseStatus{
		ResponseStatusSubmitted,
	}
}

// IsValid checks if the response status is valid
func (s ResponseStatus) IsValid() bool {
	switch s {
	case ResponseStatusSubmitted:
		return true
	default:
		return false
	}
}

// OrDefault returns submitted for an unset status
func (s ResponseStatus) OrDefault() ResponseStatus {
	if s == "" {
		return ResponseStatusSubmitted
	}
	return s
}

// String returns the string representation of the response status
func (s ResponseStatus) String() string {
	return string(s)
}

// ParseResponseStatus parses a string into a ResponseStatus
func ParseResponseStatus(s string) (ResponseStatus, error) {
	status := ResponseStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid response status: %s", s)
	}
	return status, nil
}
