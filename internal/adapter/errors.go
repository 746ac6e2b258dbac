package adapter

import (
	"errors"
	"fmt"
)

// ErrAnchorNotFound is returned when an HTML feed lacks the script that
// carries its embedded data.
var ErrAnchorNotFound = errors.New("data anchor not found")

// HTTPError reports a non-2xx response from a feed.
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

// NewHTTPError creates an HTTPError.
func NewHTTPError(statusCode int, url, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, URL: url, Message: message}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}
