// Package ollama implements the Ollama adapter through Ollama's
// OpenAI-compatible surface. No credentials are required, the model list is
// fetched live from the local server, and usage counters of zero are
// reported as absent by the shared normalization.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/providers/openai"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

const (
	defaultBaseURL = "http://localhost:11434/v1/"

	// tagsPath is the native Ollama listing endpoint, relative to the host
	// root rather than the /v1 compatibility prefix.
	tagsPath = "api/tags"
)

// Adapter is the Ollama adapter.
type Adapter struct {
	openai.Adapter
}

func init() { providers.Register(Adapter{}) }

func (Adapter) Kind() adapter.Kind { return adapter.KindOllama }

func (Adapter) DefaultEndpoint() resolver.Endpoint {
	return resolver.NewEndpoint(defaultBaseURL)
}

func (Adapter) DefaultAuth() resolver.AuthData { return resolver.NoAuth() }

// ListModels returns nil; Ollama models are listed live (see ListModelsLive).
func (Adapter) ListModels() []string { return nil }

// ListModelsLive fetches the installed models from the Ollama server's
// /api/tags endpoint.
func (Adapter) ListModelsLive(ctx context.Context, wc *webc.WebClient, endpoint resolver.Endpoint, auth resolver.AuthData) ([]string, error) {
	url := tagsURL(endpoint)

	headers := map[string]string{}
	if key, err := auth.SingleKey(); err == nil && key != "" {
		headers["Authorization"] = "Bearer " + key
	}

	res, err := wc.DoGet(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("listing ollama models: %w", err)
	}

	var body struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(res.Body, &body); err != nil {
		return nil, fmt.Errorf("parsing ollama model list: %w", err)
	}

	names := make([]string, 0, len(body.Models))
	for _, model := range body.Models {
		names = append(names, model.Name)
	}
	return names, nil
}

// tagsURL derives the native /api/tags URL from the configured endpoint,
// stripping the /v1 compatibility prefix when present.
func tagsURL(endpoint resolver.Endpoint) string {
	base := endpoint.BaseURL()
	const v1 = "v1/"
	if len(base) >= len(v1) && base[len(base)-len(v1):] == v1 {
		base = base[:len(base)-len(v1)]
	}
	return base + tagsPath
}
