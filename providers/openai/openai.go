// Package openai implements the OpenAI chat-completions and embeddings
// adapter. It is also the base every OpenAI-compatible adapter (Groq, xAI,
// DeepSeek, Together, Fireworks, Nebius, Zhipu, Z.AI, Mimo, OpenRouter,
// Ollama) delegates to: the exported Build/Parse helpers take the resolved
// target, so the same wire logic serves any compatible endpoint.
package openai

import (
	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/embed"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

const (
	defaultBaseURL = "https://api.openai.com/v1/"

	chatCompletionsPath = "chat/completions"
	embeddingsPath      = "embeddings"
)

// Adapter is the OpenAI chat-completions adapter.
type Adapter struct{}

func init() { providers.Register(Adapter{}) }

func (Adapter) Kind() adapter.Kind { return adapter.KindOpenAI }

func (Adapter) DefaultEndpoint() resolver.Endpoint {
	return resolver.NewEndpoint(defaultBaseURL)
}

func (Adapter) DefaultAuth() resolver.AuthData {
	return resolver.AuthFromEnvName(adapter.KindOpenAI.DefaultKeyEnvName())
}

func (Adapter) ListModels() []string { return adapter.StaticModels(adapter.KindOpenAI) }

func (Adapter) BuildChatRequest(target resolver.ServiceTarget, req chat.ChatRequest, opts *chat.ChatOptions, stream bool) (webc.WebRequestData, error) {
	return BuildChatRequestData(target, req, opts, stream)
}

func (Adapter) ParseChatResponse(target resolver.ServiceTarget, res *webc.WebResponse, opts *chat.ChatOptions) (*chat.ChatResponse, error) {
	return ParseChatResponseData(target, res, opts)
}

func (Adapter) BuildEmbedRequest(target resolver.ServiceTarget, req embed.EmbedRequest, opts *embed.EmbedOptions) (webc.WebRequestData, error) {
	return BuildEmbedRequestData(target, req, opts)
}

func (Adapter) ParseEmbedResponse(target resolver.ServiceTarget, res *webc.WebResponse, opts *embed.EmbedOptions) (*embed.EmbedResponse, error) {
	return ParseEmbedResponseData(target, res, opts)
}
