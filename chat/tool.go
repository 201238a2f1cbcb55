package chat

import (
	"encoding/json"

	"github.com/unigenai/unigen/internal/jsonschema"
)

// Tool declares a function the model may call. Schema describes the expected
// arguments as JSON Schema; Config carries provider-specific tool settings
// passed through verbatim when the provider understands them.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Schema      *jsonschema.Schema `json:"schema,omitempty"`
	Config      json.RawMessage    `json:"config,omitempty"`
}

// NewTool builds a tool with the given name.
func NewTool(name string) Tool {
	return Tool{Name: name}
}

// WithDescription returns a copy of the tool with the description set.
func (t Tool) WithDescription(description string) Tool {
	t.Description = description
	return t
}

// WithSchema returns a copy of the tool with the parameter schema set.
func (t Tool) WithSchema(schema *jsonschema.Schema) Tool {
	t.Schema = schema
	return t
}

// ToolCall is a model-requested function invocation. FnArguments is always a
// JSON value; providers that stream arguments as string fragments have them
// assembled and parsed before a ToolCall is surfaced.
type ToolCall struct {
	CallID      string          `json:"call_id"`
	FnName      string          `json:"fn_name"`
	FnArguments json.RawMessage `json:"fn_arguments"`
	// ThoughtSignatures are the opaque reasoning traces the provider bound to
	// this call. They must be echoed back ahead of the call on the next turn.
	ThoughtSignatures []string `json:"thought_signatures,omitempty"`
}

// ToolResponse is the caller-supplied result of executing a tool call.
type ToolResponse struct {
	CallID  string `json:"call_id"`
	Content string `json:"content"`
}

// NewToolResponse builds a tool response for the given call ID.
func NewToolResponse(callID, content string) ToolResponse {
	return ToolResponse{CallID: callID, Content: content}
}
