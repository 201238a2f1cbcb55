// Package providers defines the Adapter interface every provider package
// implements, the dispatcher that routes operations by adapter.Kind, and the
// inter-stream event layer between provider stream parsers and the public
// chat stream.
//
// Adapters are stateless: each provider package registers a zero-size value
// at init time, and every operation is a pure function of its inputs plus
// the HTTP response. Provider packages are linked in by the root package's
// blank imports.
package providers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/embed"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

// Adapter is the per-provider translation layer.
type Adapter interface {
	// Kind returns the adapter's identity.
	Kind() adapter.Kind

	// DefaultEndpoint returns the provider's default base URL.
	DefaultEndpoint() resolver.Endpoint

	// DefaultAuth returns the provider's default auth, usually env-var based.
	DefaultAuth() resolver.AuthData

	// ListModels returns the static model list. Adapters with a live listing
	// endpoint additionally implement LiveModelLister.
	ListModels() []string

	// BuildChatRequest produces the wire request for a chat call. stream
	// selects the provider's streaming flag or path.
	BuildChatRequest(target resolver.ServiceTarget, req chat.ChatRequest, opts *chat.ChatOptions, stream bool) (webc.WebRequestData, error)

	// ParseChatResponse normalizes a unary chat response body.
	ParseChatResponse(target resolver.ServiceTarget, res *webc.WebResponse, opts *chat.ChatOptions) (*chat.ChatResponse, error)

	// BuildChatStream wraps an open streaming response into the normalized
	// inter-stream. The returned stream owns closing res.Body.
	BuildChatStream(ctx context.Context, res *http.Response, model adapter.ModelIden, opts *chat.ChatOptions) InterStream

	// BuildEmbedRequest produces the wire request for an embedding call.
	// Adapters without embedding support return *adapter.NotSupportedError.
	BuildEmbedRequest(target resolver.ServiceTarget, req embed.EmbedRequest, opts *embed.EmbedOptions) (webc.WebRequestData, error)

	// ParseEmbedResponse normalizes a unary embedding response body.
	ParseEmbedResponse(target resolver.ServiceTarget, res *webc.WebResponse, opts *embed.EmbedOptions) (*embed.EmbedResponse, error)
}

// LiveModelLister is implemented by adapters that can list models from the
// service itself (Ollama).
type LiveModelLister interface {
	ListModelsLive(ctx context.Context, wc *webc.WebClient, endpoint resolver.Endpoint, auth resolver.AuthData) ([]string, error)
}

var registry = map[adapter.Kind]Adapter{}

// Register installs an adapter implementation for its kind. Called from
// provider package init functions; not safe for concurrent use afterwards.
func Register(a Adapter) {
	registry[a.Kind()] = a
}

// Dispatch returns the adapter for the kind.
func Dispatch(kind adapter.Kind) (Adapter, error) {
	a, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for kind %q", kind)
	}
	return a, nil
}
