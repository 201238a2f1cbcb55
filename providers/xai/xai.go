// Package xai implements the xAI (Grok) adapter over the shared
// OpenAI-compatible wire logic. The usage accounting quirk (reasoning tokens
// missing from completion_tokens) is corrected in the shared normalization.
package xai

import (
	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/embed"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/providers/openai"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

const defaultBaseURL = "https://api.x.ai/v1/"

// Adapter is the xAI adapter.
type Adapter struct {
	openai.Adapter
}

func init() { providers.Register(Adapter{}) }

func (Adapter) Kind() adapter.Kind { return adapter.KindXai }

func (Adapter) DefaultEndpoint() resolver.Endpoint {
	return resolver.NewEndpoint(defaultBaseURL)
}

func (Adapter) DefaultAuth() resolver.AuthData {
	return resolver.AuthFromEnvName(adapter.KindXai.DefaultKeyEnvName())
}

func (Adapter) ListModels() []string { return adapter.StaticModels(adapter.KindXai) }

func (Adapter) BuildEmbedRequest(resolver.ServiceTarget, embed.EmbedRequest, *embed.EmbedOptions) (webc.WebRequestData, error) {
	return webc.WebRequestData{}, &adapter.NotSupportedError{Kind: adapter.KindXai, Feature: "embed"}
}

func (Adapter) ParseEmbedResponse(resolver.ServiceTarget, *webc.WebResponse, *embed.EmbedOptions) (*embed.EmbedResponse, error) {
	return nil, &adapter.NotSupportedError{Kind: adapter.KindXai, Feature: "embed"}
}
