package models

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMissingCredentials is returned before any network call when no API key
// could be resolved.
var ErrMissingCredentials = errors.New("missing API credentials")

// StatusError is a non-2xx provider response.
type StatusError struct {
	Protocol   Protocol
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 500 {
		body = body[:500] + "..."
	}
	return fmt.Sprintf("%s: provider returned %d %s: %s",
		e.Protocol, e.StatusCode, http.StatusText(e.StatusCode), body)
}

// NetworkError is a transport failure before a response was received.
type NetworkError struct {
	Protocol Protocol
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Protocol, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedResponseError is a 2xx response that could not be interpreted,
// including tool-call arguments that are not valid JSON.
type MalformedResponseError struct {
	Protocol Protocol
	Reason   string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed response: %s: %v", e.Protocol, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: malformed response: %s", e.Protocol, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IsRetryable reports whether a caller may reasonably retry the request:
// network failures, rate limiting and server errors.
func IsRetryable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	return false
}

// Describe converts a provider error into a short user-facing explanation.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrMissingCredentials) {
		return "no API key configured: " + err.Error()
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden:
			return "authentication failed: " + err.Error()
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return "rate limited: " + err.Error()
		case statusErr.StatusCode == http.StatusNotFound:
			return "model not found: " + err.Error()
		}
		return err.Error()
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "connection error: " + err.Error()
	}
	return err.Error()
}
