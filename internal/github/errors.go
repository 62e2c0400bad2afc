// Package github implements the API client used by the workflow controller:
// repository mapping, Basic-auth request signing and the three REST calls.
package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedRecord is returned when a raw record lacks a required field or
// the field has the wrong type.
var ErrMalformedRecord = errors.New("malformed record")

// RequestFailedError reports any failure of an API call: transport,
// authentication, HTTP status, decoding or mapping.
type RequestFailedError struct {
	Op    string
	Cause error
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Cause)
}

func (e *RequestFailedError) Unwrap() error {
	return e.Cause
}

func requestFailed(op string, cause error) error {
	return &RequestFailedError{Op: op, Cause: cause}
}

// apiError represents an error response from the GitHub API.
type apiError struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}

// parseAPIError parses a GitHub API error response.
func parseAPIError(statusCode int, body []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return fmt.Errorf("API error (status %d): %s", statusCode, string(body))
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("unauthorized: %s (check JWT validity and expiration)", apiErr.Message)
	case http.StatusForbidden:
		return fmt.Errorf("forbidden: %s (check App permissions)", apiErr.Message)
	case http.StatusNotFound:
		return fmt.Errorf("not found: %s (check installation ID)", apiErr.Message)
	default:
		return fmt.Errorf("API error (status %d): %s", statusCode, apiErr.Message)
	}
}
