package openai

import (
	"encoding/json"

	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

// ParseChatResponseData normalizes a chat-completions response body.
func ParseChatResponseData(target resolver.ServiceTarget, res *webc.WebResponse, opts *chat.ChatOptions) (*chat.ChatResponse, error) {
	var body chatResponse
	if err := json.Unmarshal(res.Body, &body); err != nil {
		return nil, &providers.ResponseParseError{ModelIden: target.Model, Body: res.Body, Cause: err}
	}
	if len(body.Choices) == 0 {
		return nil, &providers.NoResponseError{ModelIden: target.Model}
	}

	message := body.Choices[0].Message

	var content chat.MessageContent
	text := message.Content
	reasoning := message.ReasoningContent

	// Inline <think> blocks move to the reasoning channel on demand.
	if reasoning == "" && opts.NormalizeReasoning() {
		if remaining, extracted, found := chat.ExtractThink(text); found {
			text = remaining
			reasoning = extracted
		}
	}
	if text != "" {
		content = append(content, chat.NewTextPart(text))
	}

	for _, wireCall := range message.ToolCalls {
		arguments, err := providers.ParseToolArgs(target.Model, wireCall.Function.Arguments)
		if err != nil {
			return nil, err
		}
		content = append(content, chat.NewToolCallPart(chat.ToolCall{
			CallID:      providers.EnsureCallID(wireCall.ID),
			FnName:      wireCall.Function.Name,
			FnArguments: arguments,
		}))
	}

	response := &chat.ChatResponse{
		Content:           content,
		ReasoningContent:  reasoning,
		ModelIden:         target.Model,
		ProviderModelIden: target.Model.WithModel(body.Model),
		Usage:             normalizeUsage(target.Model.Kind, body.Usage),
	}
	if opts != nil && opts.CaptureRawBody {
		response.CapturedRawBody = json.RawMessage(res.Body)
	}
	return response, nil
}

// normalizeUsage maps wire usage to the canonical accounting. Zero counters
// are stored as absent.
//
// xAI reports completion_tokens without the reasoning tokens, unlike
// OpenAI's accounting where reasoning is part of the completion total; the
// reasoning count is added back. Groq is adjusted the same way, but only
// when the reported totals do not already add up, to stay correct if the
// service fixes its accounting.
func normalizeUsage(kind adapter.Kind, wire *usage) chat.Usage {
	if wire == nil {
		return chat.Usage{}
	}

	normalized := chat.Usage{
		PromptTokens:     chat.Count(wire.PromptTokens),
		CompletionTokens: chat.Count(wire.CompletionTokens),
		TotalTokens:      chat.Count(wire.TotalTokens),
	}

	var reasoningTokens int32
	if details := wire.PromptTokensDetails; details != nil {
		normalized.PromptTokensDetails = &chat.PromptTokensDetails{
			Cached: chat.Count(details.CachedTokens),
			Audio:  chat.Count(details.AudioTokens),
		}
	}
	if details := wire.CompletionTokensDetails; details != nil {
		reasoningTokens = details.ReasoningTokens
		normalized.CompletionTokensDetails = &chat.CompletionTokensDetails{
			Reasoning:          chat.Count(details.ReasoningTokens),
			Audio:              chat.Count(details.AudioTokens),
			AcceptedPrediction: chat.Count(details.AcceptedPredictionTokens),
			RejectedPrediction: chat.Count(details.RejectedPredictionTokens),
		}
	}

	if reasoningTokens > 0 {
		switch kind {
		case adapter.KindXai:
			normalized.CompletionTokens = chat.Count(wire.CompletionTokens + reasoningTokens)
		case adapter.KindGroq:
			if wire.PromptTokens+wire.CompletionTokens != wire.TotalTokens &&
				wire.PromptTokens+wire.CompletionTokens+reasoningTokens == wire.TotalTokens {
				normalized.CompletionTokens = chat.Count(wire.CompletionTokens + reasoningTokens)
			}
		}
	}

	normalized.CompactDetails()
	return normalized
}
