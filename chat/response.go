package chat

import (
	"encoding/json"

	"github.com/unigenai/unigen/adapter"
)

// ChatResponse is the canonical unary chat result.
type ChatResponse struct {
	// Content is the assistant content, in provider emission order.
	Content MessageContent `json:"content"`
	// ReasoningContent is the reasoning channel when the provider exposes it
	// separately or when <think> normalization extracted it.
	ReasoningContent string `json:"reasoning_content,omitempty"`

	// ModelIden is the model that was requested (after resolution).
	ModelIden adapter.ModelIden `json:"model_iden"`
	// ProviderModelIden is the model the provider reported serving. Falls
	// back to the requested model when the wire omits it.
	ProviderModelIden adapter.ModelIden `json:"provider_model_iden"`

	Usage Usage `json:"usage"`

	// CapturedRawBody is the unparsed response body, present only when
	// ChatOptions.CaptureRawBody was set.
	CapturedRawBody json.RawMessage `json:"captured_raw_body,omitempty"`
}

// FirstText returns the first text part of the content, or "".
func (r *ChatResponse) FirstText() string { return r.Content.FirstText() }

// Texts returns all text parts of the content in order.
func (r *ChatResponse) Texts() []string { return r.Content.Texts() }

// ToolCalls returns all tool calls of the content in order.
func (r *ChatResponse) ToolCalls() []ToolCall { return r.Content.ToolCalls() }

// HasToolCalls reports whether the assistant requested any tool.
func (r *ChatResponse) HasToolCalls() bool { return len(r.Content.ToolCalls()) > 0 }

// IntoAssistantMessage converts the response content into an assistant
// message suitable for appending to the conversation on a tool-use turn.
// Part order is preserved, keeping thought signatures ahead of their calls.
func (r *ChatResponse) IntoAssistantMessage() ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: r.Content}
}
