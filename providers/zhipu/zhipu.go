// Package zhipu implements the Zhipu (bigmodel.cn) adapter over the shared
// OpenAI-compatible wire logic, including embeddings.
package zhipu

import (
	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/providers/openai"
	"github.com/unigenai/unigen/resolver"
)

const defaultBaseURL = "https://open.bigmodel.cn/api/paas/v4/"

// Adapter is the Zhipu adapter.
type Adapter struct {
	openai.Adapter
}

func init() { providers.Register(Adapter{}) }

func (Adapter) Kind() adapter.Kind { return adapter.KindZhipu }

func (Adapter) DefaultEndpoint() resolver.Endpoint {
	return resolver.NewEndpoint(defaultBaseURL)
}

func (Adapter) DefaultAuth() resolver.AuthData {
	return resolver.AuthFromEnvName(adapter.KindZhipu.DefaultKeyEnvName())
}

func (Adapter) ListModels() []string { return adapter.StaticModels(adapter.KindZhipu) }
