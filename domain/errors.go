package domain

import (
	"errors"
	"fmt"
)

// ErrDeviceAccessDenied is returned when microphone access is refused. Session
// start aborts and returns to idle without side effects.
var ErrDeviceAccessDenied = errors.New("audio capture device access denied")

// MissingFieldError signals that a required request field is empty. Callers
// treat it as an explicit skip (disable the trigger), never as a provider
// failure.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required field %q is empty", e.Field)
}

// IsValidation reports whether err stems from request validation.
func IsValidation(err error) bool {
	var m *MissingFieldError
	return errors.As(err, &m)
}

// TransportError wraps a network or endpoint failure for one capability call.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}

// NormalizationError signals a malformed or unexpected provider response. Raw
// carries the offending payload for diagnostics; results are never partially
// populated from such a payload.
type NormalizationError struct {
	Reason string
	Raw    string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("malformed provider response: %s", e.Reason)
}

// IsNormalization reports whether err is a normalization failure.
func IsNormalization(err error) bool {
	var n *NormalizationError
	return errors.As(err, &n)
}
