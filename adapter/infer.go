package adapter

import (
	"slices"
	"strings"
)

// SplitNamespace splits a namespaced model reference "ns::rest" into its
// namespace and remainder. Returns ok=false when the reference carries no
// namespace separator.
func SplitNamespace(model string) (ns string, rest string, ok bool) {
	before, after, found := strings.Cut(model, "::")
	if !found || before == "" {
		return "", model, false
	}
	return before, after, true
}

// InferKind maps a bare model name to an adapter Kind.
//
// Rules are applied in order, first match wins:
//
//  1. Namespace prefix "ns::rest" where ns is a known adapter lowercase name
//     (or the alias "coding" for Z.AI) forces the adapter; the model name
//     used downstream is the remainder.
//  2. Name prefixes: gpt (except gpt-oss), o1/o3/o4, chatgpt, codex,
//     text-embedding go to OpenAI, with codex and pro-class variants routed
//     to the Responses API adapter. claude goes to Anthropic, gemini to
//     Gemini, command and embed- to Cohere, grok to xAI.
//  3. glm models go to Z.AI when they are in the Z.AI static list, otherwise
//     to Zhipu (turbo variants are Zhipu-only).
//  4. Names containing "fireworks" go to Fireworks; membership in the Groq,
//     DeepSeek, or Mimo static list wins next.
//  5. Everything else falls back to Ollama.
//
// The returned model name differs from the input only when a namespace was
// stripped. InferKind never fails; Ollama is the catch-all.
func InferKind(model string) (Kind, string) {
	if ns, rest, ok := SplitNamespace(model); ok {
		if kind, known := KindFromLower(ns); known {
			return kind, rest
		}
		// Unknown namespace: keep the full reference and fall through to
		// the heuristics so a future provider-side namespace still works.
	}

	switch {
	case strings.HasPrefix(model, "gpt"):
		if strings.HasPrefix(model, "gpt-oss") {
			break // open-weight models are served locally
		}
		if isResponsesOnly(model) {
			return KindOpenAIResp, model
		}
		return KindOpenAI, model
	case strings.HasPrefix(model, "o1"), strings.HasPrefix(model, "o3"), strings.HasPrefix(model, "o4"):
		if isResponsesOnly(model) {
			return KindOpenAIResp, model
		}
		return KindOpenAI, model
	case strings.HasPrefix(model, "chatgpt"), strings.HasPrefix(model, "text-embedding"):
		return KindOpenAI, model
	case strings.HasPrefix(model, "codex"):
		return KindOpenAIResp, model
	case strings.HasPrefix(model, "claude"):
		return KindAnthropic, model
	case strings.HasPrefix(model, "gemini"):
		return KindGemini, model
	case strings.HasPrefix(model, "command"), strings.HasPrefix(model, "embed-"):
		return KindCohere, model
	case strings.HasPrefix(model, "grok"):
		return KindXai, model
	case strings.HasPrefix(model, "glm"):
		if slices.Contains(ZAiModels, model) {
			return KindZAi, model
		}
		return KindZhipu, model
	}

	switch {
	case strings.Contains(model, "fireworks"):
		return KindFireworks, model
	case slices.Contains(GroqModels, model):
		return KindGroq, model
	case slices.Contains(DeepSeekModels, model):
		return KindDeepSeek, model
	case slices.Contains(MimoModels, model):
		return KindMimo, model
	}

	return KindOllama, model
}

// isResponsesOnly reports whether an OpenAI model name is only served by the
// Responses API: the codex family and the pro-class variants.
func isResponsesOnly(model string) bool {
	if strings.Contains(model, "codex") {
		return true
	}
	return model == "gpt-5-pro" || strings.HasPrefix(model, "gpt-5-pro-") ||
		model == "o1-pro" || model == "o3-pro"
}
