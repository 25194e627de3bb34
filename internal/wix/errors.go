package wix

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound reports that the requested record does not exist upstream.
	ErrNotFound = errors.New("wix: not found")
	// ErrNoCart reports that the current visitor has no cart yet.
	ErrNoCart = errors.New("wix: no cart for current session")
)

// StatusError captures non-2xx HTTP responses from Wix APIs.
type StatusError struct {
	Operation  string
	StatusCode int
	Code       string // applicationError.code when Wix sends one
	Body       string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Body == "" {
		return fmt.Sprintf("%s request failed: status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s request failed: status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// notFound wraps a 404 from a single-record lookup with ErrNotFound so
// callers can match it while the status stays reachable with errors.As.
// Listing endpoints never go through it; a 404 there is an upstream failure.
func notFound(err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

func applicationCode(body []byte) string {
	var payload struct {
		Details struct {
			ApplicationError struct {
				Code string `json:"code"`
			} `json:"applicationError"`
		} `json:"details"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Details.ApplicationError.Code
}
