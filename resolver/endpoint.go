// Package resolver turns a caller-supplied model reference into a fully
// resolved ServiceTarget (endpoint + auth + model), layering the optional
// user hooks (ModelMapper, AuthResolver, ServiceTargetResolver) on top of
// adapter defaults.
package resolver

import "strings"

// Endpoint is a provider base URL.
type Endpoint struct {
	base string
}

// NewEndpoint builds an endpoint from a base URL. A trailing slash is
// guaranteed so that service paths can be joined by concatenation.
func NewEndpoint(baseURL string) Endpoint {
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return Endpoint{base: baseURL}
}

// BaseURL returns the base URL, always with a trailing slash when non-empty.
func (e Endpoint) BaseURL() string { return e.base }

// IsZero reports whether the endpoint is unset.
func (e Endpoint) IsZero() bool { return e.base == "" }

// JoinPath returns the base URL with the path appended.
func (e Endpoint) JoinPath(path string) string {
	return e.base + strings.TrimPrefix(path, "/")
}
