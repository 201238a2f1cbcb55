package adapter

import "fmt"

// NotSupportedError is returned when a request asks an adapter for a
// capability it does not implement (for example embeddings on a chat-only
// adapter). Callers should treat it as a permanent error for that
// (kind, feature) pair.
type NotSupportedError struct {
	Kind    Kind
	Feature string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("adapter %s does not support %s", e.Kind, e.Feature)
}
