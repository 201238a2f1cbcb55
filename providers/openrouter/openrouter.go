// Package openrouter implements the OpenRouter adapter over the shared
// OpenAI-compatible wire logic, adding the OpenRouter identification
// headers to every request.
package openrouter

import (
	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/embed"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/providers/openai"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

const defaultBaseURL = "https://openrouter.ai/api/v1/"

// Adapter is the OpenRouter adapter.
type Adapter struct {
	openai.Adapter
}

func init() { providers.Register(Adapter{}) }

func (Adapter) Kind() adapter.Kind { return adapter.KindOpenRouter }

func (Adapter) DefaultEndpoint() resolver.Endpoint {
	return resolver.NewEndpoint(defaultBaseURL)
}

func (Adapter) DefaultAuth() resolver.AuthData {
	return resolver.AuthFromEnvName(adapter.KindOpenRouter.DefaultKeyEnvName())
}

// ListModels returns nil: the OpenRouter catalog is too large to pin;
// models are specified directly.
func (Adapter) ListModels() []string { return nil }

func (Adapter) BuildChatRequest(target resolver.ServiceTarget, req chat.ChatRequest, opts *chat.ChatOptions, stream bool) (webc.WebRequestData, error) {
	data, err := openai.BuildChatRequestData(target, req, opts, stream)
	if err != nil {
		return webc.WebRequestData{}, err
	}
	// OpenRouter asks integrations to identify themselves. User extra
	// headers were already applied and win over these.
	setIfAbsent(data.Headers, "HTTP-Referer", "https://github.com/unigenai/unigen")
	setIfAbsent(data.Headers, "X-Title", "unigen")
	return data, nil
}

func (Adapter) BuildEmbedRequest(resolver.ServiceTarget, embed.EmbedRequest, *embed.EmbedOptions) (webc.WebRequestData, error) {
	return webc.WebRequestData{}, &adapter.NotSupportedError{Kind: adapter.KindOpenRouter, Feature: "embed"}
}

func (Adapter) ParseEmbedResponse(resolver.ServiceTarget, *webc.WebResponse, *embed.EmbedOptions) (*embed.EmbedResponse, error) {
	return nil, &adapter.NotSupportedError{Kind: adapter.KindOpenRouter, Feature: "embed"}
}

func setIfAbsent(headers map[string]string, name, value string) {
	if _, ok := headers[name]; !ok {
		headers[name] = value
	}
}
