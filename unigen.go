// Package unigen is a unified client for chat-completion and embedding
// services across heterogeneous generative-AI providers. One request,
// response, and stream shape is translated to each provider's wire format
// and normalized back.
//
// Basic use:
//
//	client := unigen.NewClient()
//	req := chat.NewChatRequest(chat.UserMessage("Why is the sky blue?"))
//	res, err := client.ExecChat(ctx, "gpt-4o-mini", req, nil)
//
// The model name alone selects the provider (see adapter.InferKind); a
// namespace prefix such as "anthropic::claude-3-5-haiku-latest" forces the
// routing. Resolver hooks on the client can rewrite the model, the auth, or
// the whole service target.
package unigen

import (
	// Provider adapters register themselves with the dispatcher at init.
	_ "github.com/unigenai/unigen/providers/anthropic"
	_ "github.com/unigenai/unigen/providers/bedrock"
	_ "github.com/unigenai/unigen/providers/cohere"
	_ "github.com/unigenai/unigen/providers/deepseek"
	_ "github.com/unigenai/unigen/providers/fireworks"
	_ "github.com/unigenai/unigen/providers/gemini"
	_ "github.com/unigenai/unigen/providers/groq"
	_ "github.com/unigenai/unigen/providers/mimo"
	_ "github.com/unigenai/unigen/providers/nebius"
	_ "github.com/unigenai/unigen/providers/ollama"
	_ "github.com/unigenai/unigen/providers/openai"
	_ "github.com/unigenai/unigen/providers/openairesp"
	_ "github.com/unigenai/unigen/providers/openrouter"
	_ "github.com/unigenai/unigen/providers/together"
	_ "github.com/unigenai/unigen/providers/xai"
	_ "github.com/unigenai/unigen/providers/zai"
	_ "github.com/unigenai/unigen/providers/zhipu"
)
