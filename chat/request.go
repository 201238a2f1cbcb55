package chat

import "errors"

// ErrNoMessages is returned at execution time when a ChatRequest carries no
// messages. It is a caller error; retrying without changes will not help.
var ErrNoMessages = errors.New("chat request has no messages")

// ChatRequest is the canonical chat-completion request. System holds the
// top-level system instruction; system-role messages are honored as well and
// concatenated by adapters that accept a single system field.
type ChatRequest struct {
	System   string        `json:"system,omitempty"`
	Messages []ChatMessage `json:"messages"`
	Tools    []Tool        `json:"tools,omitempty"`
}

// NewChatRequest builds a request from messages.
func NewChatRequest(messages ...ChatMessage) ChatRequest {
	return ChatRequest{Messages: messages}
}

// WithSystem returns a copy of the request with the system instruction set.
func (r ChatRequest) WithSystem(system string) ChatRequest {
	r.System = system
	return r
}

// WithTools returns a copy of the request with the tools set.
func (r ChatRequest) WithTools(tools ...Tool) ChatRequest {
	r.Tools = tools
	return r
}

// AppendMessage returns a copy of the request with the message appended.
func (r ChatRequest) AppendMessage(message ChatMessage) ChatRequest {
	messages := make([]ChatMessage, 0, len(r.Messages)+1)
	messages = append(messages, r.Messages...)
	messages = append(messages, message)
	r.Messages = messages
	return r
}

// Validate checks the invariants required at execution time.
func (r ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return ErrNoMessages
	}
	return nil
}

// CombinedSystem joins the request-level system instruction with all
// system-role messages, in order, separated by blank lines. Adapters that
// accept a single system field use this value.
func (r ChatRequest) CombinedSystem() string {
	combined := r.System
	for _, msg := range r.Messages {
		if msg.Role != RoleSystem {
			continue
		}
		if text := msg.Content.JoinedTexts(); text != "" {
			if combined != "" {
				combined += "\n\n"
			}
			combined += text
		}
	}
	return combined
}
