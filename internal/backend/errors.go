package backend

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a 2xx response whose body could not be decoded.
// Call sites treat it the same way as a transport failure; the raw decode
// error is wrapped for logs but never shown to the user.
var ErrMalformedResponse = errors.New("malformed backend response")

// RequestError is the typed failure returned for any backend call that did
// not complete successfully. Transport errors and non-2xx statuses both end
// up here so that no raw transport error crosses a message channel.
type RequestError struct {
	// Op names the failed operation ("search", "health", "sync", ...).
	Op string
	// StatusCode is the HTTP status, or 0 for transport-level failures.
	StatusCode int
	// Err is the underlying cause.
	Err error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend %s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether the failure never reached the server.
func (e *RequestError) IsTransport() bool {
	return e.StatusCode == 0 && !errors.Is(e.Err, ErrMalformedResponse)
}
