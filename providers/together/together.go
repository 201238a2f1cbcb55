// Package together implements the Together AI adapter over the shared
// OpenAI-compatible wire logic, including embeddings.
package together

import (
	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/providers/openai"
	"github.com/unigenai/unigen/resolver"
)

const defaultBaseURL = "https://api.together.xyz/v1/"

// Adapter is the Together AI adapter.
type Adapter struct {
	openai.Adapter
}

func init() { providers.Register(Adapter{}) }

func (Adapter) Kind() adapter.Kind { return adapter.KindTogether }

func (Adapter) DefaultEndpoint() resolver.Endpoint {
	return resolver.NewEndpoint(defaultBaseURL)
}

func (Adapter) DefaultAuth() resolver.AuthData {
	return resolver.AuthFromEnvName(adapter.KindTogether.DefaultKeyEnvName())
}

// ListModels returns nil: the Together catalog is too large and volatile to
// pin; models are specified directly.
func (Adapter) ListModels() []string { return nil }
