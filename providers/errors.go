package providers

import (
	"fmt"

	"github.com/unigenai/unigen/adapter"
)

// CallError wraps a transport or provider-signaled failure with the resolved
// model identity, so multi-model callers can disambiguate. The cause is
// typically a *webc.StatusError.
type CallError struct {
	ModelIden adapter.ModelIden
	Cause     error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("model call failed for %s: %v", e.ModelIden, e.Cause)
}

func (e *CallError) Unwrap() error { return e.Cause }

// ResponseParseError is a response body that could not be decoded into the
// expected shape. Body is kept for debuggability.
type ResponseParseError struct {
	ModelIden adapter.ModelIden
	Body      []byte
	Cause     error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("cannot parse %s response: %v", e.ModelIden, e.Cause)
}

func (e *ResponseParseError) Unwrap() error { return e.Cause }

// NoResponseError is a well-formed body that carries no usable completion
// (no choices, no candidates, no content blocks).
type NoResponseError struct {
	ModelIden adapter.ModelIden
}

func (e *NoResponseError) Error() string {
	return fmt.Sprintf("no chat response from %s", e.ModelIden)
}

// InvalidJSONElementError is a response element that should have been JSON
// (typically tool-call arguments) but could not be parsed even after repair.
type InvalidJSONElementError struct {
	ModelIden adapter.ModelIden
	Element   string
	Cause     error
}

func (e *InvalidJSONElementError) Error() string {
	return fmt.Sprintf("invalid JSON in %s element %q: %v", e.ModelIden, e.Element, e.Cause)
}

func (e *InvalidJSONElementError) Unwrap() error { return e.Cause }

// StreamParseError is a stream event that could not be decoded.
type StreamParseError struct {
	ModelIden adapter.ModelIden
	Cause     error
}

func (e *StreamParseError) Error() string {
	return fmt.Sprintf("cannot parse %s stream event: %v", e.ModelIden, e.Cause)
}

func (e *StreamParseError) Unwrap() error { return e.Cause }
