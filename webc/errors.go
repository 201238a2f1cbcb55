package webc

import (
	"fmt"
	"net/http"
)

// StatusError is a non-2xx HTTP response, with the full body and headers
// preserved for diagnostics.
type StatusError struct {
	Status int
	Header http.Header
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.Status, truncate(string(e.Body), 500))
}

// IsAuth reports whether the status indicates an authentication or
// authorization failure (do not retry).
func (e *StatusError) IsAuth() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
