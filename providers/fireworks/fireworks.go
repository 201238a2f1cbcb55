// Package fireworks implements the Fireworks AI adapter over the shared
// OpenAI-compatible wire logic, including embeddings.
package fireworks

import (
	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/providers/openai"
	"github.com/unigenai/unigen/resolver"
)

const defaultBaseURL = "https://api.fireworks.ai/inference/v1/"

// Adapter is the Fireworks AI adapter.
type Adapter struct {
	openai.Adapter
}

func init() { providers.Register(Adapter{}) }

func (Adapter) Kind() adapter.Kind { return adapter.KindFireworks }

func (Adapter) DefaultEndpoint() resolver.Endpoint {
	return resolver.NewEndpoint(defaultBaseURL)
}

func (Adapter) DefaultAuth() resolver.AuthData {
	return resolver.AuthFromEnvName(adapter.KindFireworks.DefaultKeyEnvName())
}

// ListModels returns nil: Fireworks models are account-scoped
// ("accounts/fireworks/models/…") and specified directly.
func (Adapter) ListModels() []string { return nil }
