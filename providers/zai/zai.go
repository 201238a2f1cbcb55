// Package zai implements the Z.AI adapter over the shared OpenAI-compatible
// wire logic. The "coding::" namespace alias resolves to this adapter; the
// remainder after the namespace is the model name sent on the wire.
package zai

import (
	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/embed"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/providers/openai"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

const defaultBaseURL = "https://api.z.ai/api/paas/v4/"

// Adapter is the Z.AI adapter.
type Adapter struct {
	openai.Adapter
}

func init() { providers.Register(Adapter{}) }

func (Adapter) Kind() adapter.Kind { return adapter.KindZAi }

func (Adapter) DefaultEndpoint() resolver.Endpoint {
	return resolver.NewEndpoint(defaultBaseURL)
}

func (Adapter) DefaultAuth() resolver.AuthData {
	return resolver.AuthFromEnvName(adapter.KindZAi.DefaultKeyEnvName())
}

func (Adapter) ListModels() []string { return adapter.StaticModels(adapter.KindZAi) }

func (Adapter) BuildEmbedRequest(resolver.ServiceTarget, embed.EmbedRequest, *embed.EmbedOptions) (webc.WebRequestData, error) {
	return webc.WebRequestData{}, &adapter.NotSupportedError{Kind: adapter.KindZAi, Feature: "embed"}
}

func (Adapter) ParseEmbedResponse(resolver.ServiceTarget, *webc.WebResponse, *embed.EmbedOptions) (*embed.EmbedResponse, error) {
	return nil, &adapter.NotSupportedError{Kind: adapter.KindZAi, Feature: "embed"}
}
