package transport

import (
	"errors"
	"net/http"
)

// ErrCanceled marks a request whose context was canceled before it settled.
var ErrCanceled = errors.New("request canceled")

// HTTPError is a non-2xx response, a network failure (StatusCode 0) or a
// request refused by an open circuit breaker.
type HTTPError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// IsCanceled reports whether err is a cancellation outcome.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

func genericMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return "request failed: " + text
	}
	return "request failed"
}
