package chat

// ChatRole is the role of a message author; compatible with string.
type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleTool      ChatRole = "tool"
)

// CacheControl marks a message for provider-side prompt caching. Only
// Anthropic honors it today; other adapters drop the marker silently.
type CacheControl string

const (
	// CacheControlEphemeral5m caches the prefix up to this message for ~5 minutes.
	CacheControlEphemeral5m CacheControl = "ephemeral-5m"
	// CacheControlEphemeral1h caches the prefix up to this message for ~1 hour.
	CacheControlEphemeral1h CacheControl = "ephemeral-1h"
)

// TTL returns the wire TTL string for the cache control ("5m" or "1h").
func (cc CacheControl) TTL() string {
	if cc == CacheControlEphemeral1h {
		return "1h"
	}
	return "5m"
}

// MessageOptions carries optional per-message settings.
type MessageOptions struct {
	CacheControl CacheControl `json:"cache_control,omitempty"`
}

// ChatMessage is one turn of a conversation. Content order is preserved
// verbatim all the way to the wire.
type ChatMessage struct {
	Role    ChatRole        `json:"role"`
	Content MessageContent  `json:"content"`
	Options *MessageOptions `json:"options,omitempty"`
}

// SystemMessage builds a system-role message from plain text.
func SystemMessage(text string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: TextContent(text)}
}

// UserMessage builds a user-role message from plain text.
func UserMessage(text string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: TextContent(text)}
}

// UserMessageParts builds a user-role message from multipart content.
func UserMessageParts(parts ...ContentPart) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: parts}
}

// AssistantMessage builds an assistant-role message from plain text.
func AssistantMessage(text string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: TextContent(text)}
}

// AssistantMessageParts builds an assistant-role message from multipart
// content, typically text plus tool calls (with any thought signatures
// ahead of their calls).
func AssistantMessageParts(parts ...ContentPart) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: parts}
}

// ToolResponseMessage builds a tool-role message carrying one tool response.
func ToolResponseMessage(response ToolResponse) ChatMessage {
	return ChatMessage{Role: RoleTool, Content: MessageContent{NewToolResponsePart(response)}}
}

// WithCacheControl returns a copy of the message with the cache marker set.
func (m ChatMessage) WithCacheControl(cc CacheControl) ChatMessage {
	opts := MessageOptions{}
	if m.Options != nil {
		opts = *m.Options
	}
	opts.CacheControl = cc
	m.Options = &opts
	return m
}
