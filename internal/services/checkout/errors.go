package checkout

import (
	"fmt"
)

// maxErrorBody bounds how much of a processor response is kept on errors.
const maxErrorBody = 2048

// NetworkError means the processor could not be reached or did not answer in
// time. No HTTP status exists.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx answer from the processor. Message holds the
// processor's "error" field when the body was JSON.
type HTTPError struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("processor returned HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("processor returned HTTP %d", e.StatusCode)
}

// ResponseParseError is a 2xx answer whose body is not a JSON object.
type ResponseParseError struct {
	Body string
	Err  error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("failed to parse processor response: %v", e.Err)
}

func (e *ResponseParseError) Unwrap() error {
	return e.Err
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody])
	}
	return string(b)
}
