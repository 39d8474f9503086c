package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of an error response ends up in logs.
const maxErrorBody = 512

// HTTPError is a non-2xx response from a collaborator.
type HTTPError struct {
	StatusCode int
	Message    string
}

func newHTTPError(status int, body []byte) *HTTPError {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	return &HTTPError{StatusCode: status, Message: msg}
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NetworkError means no usable response arrived: the dial, the TLS handshake
// or reading the body failed.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether sending the request again may succeed.
// Network failures, 5xx, 408 and 429 qualify unless the caller's context is
// already done.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	switch httpErr.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	default:
		return httpErr.StatusCode >= http.StatusInternalServerError
	}
}
