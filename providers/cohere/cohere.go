// Package cohere implements the Cohere chat and embed adapter (v1 API).
// Chat history travels as a role-tagged array with the latest user message
// in its own field; streaming is newline-delimited JSON rather than SSE.
package cohere

import (
	"encoding/json"
	"fmt"

	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/internal/jsonschema"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

const (
	defaultBaseURL = "https://api.cohere.com/v1/"
	chatPath       = "chat"
	embedPath      = "embed"
)

// Adapter is the Cohere adapter.
type Adapter struct{}

func init() { providers.Register(Adapter{}) }

func (Adapter) Kind() adapter.Kind { return adapter.KindCohere }

func (Adapter) DefaultEndpoint() resolver.Endpoint {
	return resolver.NewEndpoint(defaultBaseURL)
}

func (Adapter) DefaultAuth() resolver.AuthData {
	return resolver.AuthFromEnvName(adapter.KindCohere.DefaultKeyEnvName())
}

func (Adapter) ListModels() []string { return adapter.StaticModels(adapter.KindCohere) }

/*
	##### WIRE MODEL #####
*/

type chatRequest struct {
	Model       string         `json:"model"`
	Message     string         `json:"message"`
	ChatHistory []historyEntry `json:"chat_history,omitempty"`
	Preamble    string         `json:"preamble,omitempty"`
	Tools       []toolDef      `json:"tools,omitempty"`
	ToolResults []toolResult   `json:"tool_results,omitempty"`

	Temperature   *float64 `json:"temperature,omitempty"`
	P             *float64 `json:"p,omitempty"`
	MaxTokens     *uint32  `json:"max_tokens,omitempty"`
	StopSequences []string `json:"stop_sequences,omitempty"`

	Stream bool `json:"stream,omitempty"`
}

type historyEntry struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

type toolDef struct {
	Name                 string                  `json:"name"`
	Description          string                  `json:"description,omitempty"`
	ParameterDefinitions map[string]paramDefBody `json:"parameter_definitions,omitempty"`
}

type paramDefBody struct {
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
}

type wireToolCall struct {
	Name       string          `json:"name"`
	Parameters json.RawMessage `json:"parameters"`
}

type toolResult struct {
	Call    wireToolCall      `json:"call"`
	Outputs []json.RawMessage `json:"outputs"`
}

type chatResponse struct {
	Text      string         `json:"text"`
	ToolCalls []wireToolCall `json:"tool_calls"`
	Meta      *meta          `json:"meta"`
}

type meta struct {
	Tokens *struct {
		InputTokens  int32 `json:"input_tokens"`
		OutputTokens int32 `json:"output_tokens"`
	} `json:"tokens"`
}

/*
	##### REQUEST BUILDING #####
*/

func (Adapter) BuildChatRequest(target resolver.ServiceTarget, req chat.ChatRequest, opts *chat.ChatOptions, stream bool) (webc.WebRequestData, error) {
	body := chatRequest{
		Model:    target.Model.Model,
		Preamble: req.CombinedSystem(),
		Stream:   stream,
	}

	// The last user message becomes the message field; everything before it
	// is chat history. Tool responses ride in tool_results.
	messages := req.Messages
	lastUser := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == chat.RoleUser {
			lastUser = i
			break
		}
	}

	for i, msg := range messages {
		switch msg.Role {
		case chat.RoleSystem:
			continue // folded into the preamble

		case chat.RoleUser:
			text := msg.Content.JoinedTexts()
			if i == lastUser {
				body.Message = text
			} else {
				body.ChatHistory = append(body.ChatHistory, historyEntry{Role: "USER", Message: text})
			}

		case chat.RoleAssistant:
			if text := msg.Content.JoinedTexts(); text != "" {
				body.ChatHistory = append(body.ChatHistory, historyEntry{Role: "CHATBOT", Message: text})
			}

		case chat.RoleTool:
			for _, part := range msg.Content {
				if part.Type != chat.ContentTypeToolResponse || part.ToolResponse == nil {
					continue
				}
				body.ToolResults = append(body.ToolResults, buildToolResult(part.ToolResponse))
			}

		default:
			return webc.WebRequestData{}, fmt.Errorf("unsupported role %q for %s", msg.Role, target.Model)
		}
	}

	for _, tool := range req.Tools {
		body.Tools = append(body.Tools, buildToolDef(tool))
	}

	if opts != nil {
		body.Temperature = opts.Temperature
		body.P = opts.TopP
		body.MaxTokens = opts.MaxTokens
		body.StopSequences = opts.StopSequences
	}

	data := webc.WebRequestData{
		URL:     target.Endpoint.JoinPath(chatPath),
		Headers: map[string]string{},
		Body:    body,
	}
	if err := applyBearerAuth(&data, target); err != nil {
		return webc.WebRequestData{}, err
	}
	if opts != nil {
		providers.ApplyExtraHeaders(&data, opts.ExtraHeaders)
	}

	return data, nil
}

// buildToolDef flattens a JSON-Schema tool declaration into Cohere's
// parameter_definitions map.
func buildToolDef(tool chat.Tool) toolDef {
	def := toolDef{Name: tool.Name, Description: tool.Description}
	if tool.Schema == nil || len(tool.Schema.Properties) == 0 {
		return def
	}

	def.ParameterDefinitions = map[string]paramDefBody{}
	required := map[string]bool{}
	for _, name := range tool.Schema.Required {
		required[name] = true
	}
	for name, property := range tool.Schema.Properties {
		def.ParameterDefinitions[name] = paramDefBody{
			Description: property.Description,
			Type:        cohereType(property),
			Required:    required[name],
		}
	}
	return def
}

// cohereType maps a schema type to Cohere's python-flavored type names.
func cohereType(schema *jsonschema.Schema) string {
	switch schema.Type {
	case "integer":
		return "int"
	case "number":
		return "float"
	case "boolean":
		return "bool"
	case "array":
		return "list"
	case "object":
		return "dict"
	default:
		return "str"
	}
}

// buildToolResult wraps a tool response. The call is identified by name
// (Cohere has no call IDs); outputs must be JSON objects.
func buildToolResult(toolResponse *chat.ToolResponse) toolResult {
	output := json.RawMessage(toolResponse.Content)
	if !json.Valid(output) || len(output) == 0 || output[0] != '{' {
		wrapped, _ := json.Marshal(map[string]string{"result": toolResponse.Content})
		output = wrapped
	}
	return toolResult{
		Call:    wireToolCall{Name: toolResponse.CallID, Parameters: json.RawMessage(`{}`)},
		Outputs: []json.RawMessage{output},
	}
}

func applyBearerAuth(data *webc.WebRequestData, target resolver.ServiceTarget) error {
	if target.Auth.Kind == resolver.AuthRequestOverride {
		providers.ApplyAuthOverride(data, target.Auth)
		return nil
	}
	key, err := target.Auth.SingleKey()
	if err != nil {
		return err
	}
	data.Headers["Authorization"] = "Bearer " + key
	return nil
}

/*
	##### RESPONSE PARSING #####
*/

func (Adapter) ParseChatResponse(target resolver.ServiceTarget, res *webc.WebResponse, opts *chat.ChatOptions) (*chat.ChatResponse, error) {
	var body chatResponse
	if err := json.Unmarshal(res.Body, &body); err != nil {
		return nil, &providers.ResponseParseError{ModelIden: target.Model, Body: res.Body, Cause: err}
	}
	if body.Text == "" && len(body.ToolCalls) == 0 {
		return nil, &providers.NoResponseError{ModelIden: target.Model}
	}

	var content chat.MessageContent
	if body.Text != "" {
		content = append(content, chat.NewTextPart(body.Text))
	}
	for _, wireCall := range body.ToolCalls {
		arguments := wireCall.Parameters
		if len(arguments) == 0 {
			arguments = json.RawMessage(`{}`)
		}
		content = append(content, chat.NewToolCallPart(chat.ToolCall{
			CallID:      wireCall.Name,
			FnName:      wireCall.Name,
			FnArguments: arguments,
		}))
	}

	response := &chat.ChatResponse{
		Content:           content,
		ModelIden:         target.Model,
		ProviderModelIden: target.Model,
		Usage:             normalizeUsage(body.Meta),
	}
	if opts != nil && opts.CaptureRawBody {
		response.CapturedRawBody = json.RawMessage(res.Body)
	}
	return response, nil
}

func normalizeUsage(wire *meta) chat.Usage {
	if wire == nil || wire.Tokens == nil {
		return chat.Usage{}
	}
	normalized := chat.Usage{
		PromptTokens:     chat.Count(wire.Tokens.InputTokens),
		CompletionTokens: chat.Count(wire.Tokens.OutputTokens),
	}
	if total := wire.Tokens.InputTokens + wire.Tokens.OutputTokens; total > 0 {
		normalized.TotalTokens = chat.Count(total)
	}
	return normalized
}
