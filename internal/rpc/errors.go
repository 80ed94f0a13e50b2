package rpc

import "fmt"

// FramingError reports a frame whose header could not be understood.
// It only affects the frame being read; the stream stays usable.
type FramingError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *FramingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("framing error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("framing error: %s", e.Reason)
}

// Unwrap returns the underlying read or parse error, if any.
func (e *FramingError) Unwrap() error {
	return e.Err
}
