package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
)

var (
	// ErrUnavailable marks a fetch that failed to connect or timed out.
	// It is recoverable: the caller should try again shortly.
	ErrUnavailable = errors.New("weather service unavailable")

	// ErrMalformedResponse is returned when the body is not the expected JSON.
	ErrMalformedResponse = errors.New("malformed weather response")

	// ErrMissingLocation is returned when no location identifier is configured.
	ErrMissingLocation = errors.New("missing location setting, please configure it")
)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weather API error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// transient reports whether err came from the connection itself (refused,
// reset, DNS, timeout) rather than from the request or the response.
func transient(err error) bool {
	// *url.Error satisfies net.Error itself, look at what it wraps instead.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
