package lsp

import "fmt"

// ParseError reports a payload that could not be decoded, either as a
// JSON-RPC envelope or, when Method is set, as that method's params.
type ParseError struct {
	Method string
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("parse error: params of %s: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("parse error: %v", e.Err)
}

// Unwrap returns the underlying decode error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
