// Package groq implements the Groq adapter. The Groq API is
// OpenAI-compatible, so request building, parsing, and streaming delegate to
// the openai package; only the endpoint, auth, and the x_groq stream usage
// quirk (handled in the shared streamer) differ.
package groq

import (
	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/embed"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/providers/openai"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

const defaultBaseURL = "https://api.groq.com/openai/v1/"

// Adapter is the Groq adapter.
type Adapter struct {
	openai.Adapter
}

func init() { providers.Register(Adapter{}) }

func (Adapter) Kind() adapter.Kind { return adapter.KindGroq }

func (Adapter) DefaultEndpoint() resolver.Endpoint {
	return resolver.NewEndpoint(defaultBaseURL)
}

func (Adapter) DefaultAuth() resolver.AuthData {
	return resolver.AuthFromEnvName(adapter.KindGroq.DefaultKeyEnvName())
}

func (Adapter) ListModels() []string { return adapter.StaticModels(adapter.KindGroq) }

func (Adapter) BuildEmbedRequest(resolver.ServiceTarget, embed.EmbedRequest, *embed.EmbedOptions) (webc.WebRequestData, error) {
	return webc.WebRequestData{}, &adapter.NotSupportedError{Kind: adapter.KindGroq, Feature: "embed"}
}

func (Adapter) ParseEmbedResponse(resolver.ServiceTarget, *webc.WebResponse, *embed.EmbedOptions) (*embed.EmbedResponse, error) {
	return nil, &adapter.NotSupportedError{Kind: adapter.KindGroq, Feature: "embed"}
}
