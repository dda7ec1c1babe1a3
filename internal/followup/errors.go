package followup

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport matches every *TransportError via errors.Is.
	ErrTransport = errors.New("follow-up transport failed")

	// ErrMalformedResponse reports a response that could not be normalized
	// into a batch. The Service absorbs it; it never reaches Resolve callers.
	ErrMalformedResponse = errors.New("malformed follow-up response")
)

// TransportError reports a failed network call or a non-2xx status.
type TransportError struct {
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%v: status %d: %v", ErrTransport, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%v: %v", ErrTransport, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransport) true for any TransportError.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformedResponse}, args...)...)
}
