// Package openairesp implements the OpenAI Responses API adapter
// (/v1/responses), used for codex-class and pro-class models. It is a
// distinct adapter kind because the wire format differs from chat
// completions: the conversation is a flat item list and tool calls are
// first-class output items.
package openairesp

import (
	"encoding/json"
	"fmt"

	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/embed"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

const (
	defaultBaseURL = "https://api.openai.com/v1/"
	responsesPath  = "responses"
)

// Adapter is the Responses API adapter.
type Adapter struct{}

func init() { providers.Register(Adapter{}) }

func (Adapter) Kind() adapter.Kind { return adapter.KindOpenAIResp }

func (Adapter) DefaultEndpoint() resolver.Endpoint {
	return resolver.NewEndpoint(defaultBaseURL)
}

func (Adapter) DefaultAuth() resolver.AuthData {
	return resolver.AuthFromEnvName(adapter.KindOpenAIResp.DefaultKeyEnvName())
}

func (Adapter) ListModels() []string { return adapter.StaticModels(adapter.KindOpenAIResp) }

func (Adapter) BuildEmbedRequest(resolver.ServiceTarget, embed.EmbedRequest, *embed.EmbedOptions) (webc.WebRequestData, error) {
	return webc.WebRequestData{}, &adapter.NotSupportedError{Kind: adapter.KindOpenAIResp, Feature: "embed"}
}

func (Adapter) ParseEmbedResponse(resolver.ServiceTarget, *webc.WebResponse, *embed.EmbedOptions) (*embed.EmbedResponse, error) {
	return nil, &adapter.NotSupportedError{Kind: adapter.KindOpenAIResp, Feature: "embed"}
}

/*
	##### WIRE MODEL #####
*/

type respRequest struct {
	Model string `json:"model"`
	Input []any  `json:"input"`
	// Store is false to keep behavior stateless like chat completions.
	Store bool `json:"store"`

	MaxOutputTokens *uint32  `json:"max_output_tokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"top_p,omitempty"`

	Reasoning *respReasoning `json:"reasoning,omitempty"`
	Text      *respText      `json:"text,omitempty"`
	Tools     []respTool     `json:"tools,omitempty"`

	Stream bool `json:"stream,omitempty"`
}

type respReasoning struct {
	Effort string `json:"effort"`
}

type respText struct {
	Format    *respTextFormat `json:"format,omitempty"`
	Verbosity string          `json:"verbosity,omitempty"`
}

type respTextFormat struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Schema      any    `json:"schema,omitempty"`
	Strict      bool   `json:"strict,omitempty"`
}

type respTool struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type inputFunctionCall struct {
	Type      string `json:"type"`
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type inputFunctionOutput struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

type respResponse struct {
	Model  string       `json:"model"`
	Output []outputItem `json:"output"`
	Usage  *respUsage   `json:"usage"`
}

type outputItem struct {
	Type    string `json:"type"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Summary []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"summary"`
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type respUsage struct {
	InputTokens        int32 `json:"input_tokens"`
	OutputTokens       int32 `json:"output_tokens"`
	TotalTokens        int32 `json:"total_tokens"`
	InputTokensDetails *struct {
		CachedTokens int32 `json:"cached_tokens"`
	} `json:"input_tokens_details"`
	OutputTokensDetails *struct {
		ReasoningTokens int32 `json:"reasoning_tokens"`
	} `json:"output_tokens_details"`
}

/*
	##### REQUEST BUILDING #####
*/

func (Adapter) BuildChatRequest(target resolver.ServiceTarget, req chat.ChatRequest, opts *chat.ChatOptions, stream bool) (webc.WebRequestData, error) {
	body := respRequest{
		Model:  target.Model.Model,
		Store:  false,
		Stream: stream,
	}

	if system := req.CombinedSystem(); system != "" {
		body.Input = append(body.Input, inputMessage{Role: "system", Content: system})
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case chat.RoleSystem:
			continue

		case chat.RoleUser:
			body.Input = append(body.Input, inputMessage{Role: "user", Content: msg.Content.JoinedTexts()})

		case chat.RoleAssistant:
			if text := msg.Content.JoinedTexts(); text != "" {
				body.Input = append(body.Input, inputMessage{Role: "assistant", Content: text})
			}
			for _, toolCall := range msg.Content.ToolCalls() {
				body.Input = append(body.Input, inputFunctionCall{
					Type:      "function_call",
					CallID:    toolCall.CallID,
					Name:      toolCall.FnName,
					Arguments: string(toolCall.FnArguments),
				})
			}

		case chat.RoleTool:
			for _, part := range msg.Content {
				if part.Type != chat.ContentTypeToolResponse || part.ToolResponse == nil {
					continue
				}
				body.Input = append(body.Input, inputFunctionOutput{
					Type:   "function_call_output",
					CallID: part.ToolResponse.CallID,
					Output: part.ToolResponse.Content,
				})
			}

		default:
			return webc.WebRequestData{}, fmt.Errorf("unsupported role %q for %s", msg.Role, target.Model)
		}
	}

	for _, tool := range req.Tools {
		var params any
		if tool.Schema != nil {
			params = tool.Schema
		}
		body.Tools = append(body.Tools, respTool{
			Type:        "function",
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  params,
		})
	}

	if opts != nil {
		body.MaxOutputTokens = opts.MaxTokens
		body.Temperature = opts.Temperature
		body.TopP = opts.TopP

		if effort := opts.ReasoningEffort; effort != nil {
			switch effort.Level {
			case chat.ReasoningMinimal, chat.ReasoningLow, chat.ReasoningMedium, chat.ReasoningHigh:
				body.Reasoning = &respReasoning{Effort: string(effort.Level)}
			}
		}

		text := respText{}
		if format := opts.ResponseFormat; format != nil {
			switch format.Kind {
			case chat.ResponseFormatJSONMode:
				text.Format = &respTextFormat{Type: "json_object"}
			case chat.ResponseFormatJSONSpec:
				if format.Spec != nil {
					text.Format = &respTextFormat{
						Type:        "json_schema",
						Name:        format.Spec.Name,
						Description: format.Spec.Description,
						Schema:      format.Spec.Schema,
						Strict:      true,
					}
				}
			}
		}
		if opts.Verbosity != nil {
			text.Verbosity = string(*opts.Verbosity)
		}
		if text != (respText{}) {
			body.Text = &text
		}
	}

	data := webc.WebRequestData{
		URL:     target.Endpoint.JoinPath(responsesPath),
		Headers: map[string]string{},
		Body:    body,
	}

	if target.Auth.Kind == resolver.AuthRequestOverride {
		providers.ApplyAuthOverride(&data, target.Auth)
	} else {
		key, err := target.Auth.SingleKey()
		if err != nil {
			return webc.WebRequestData{}, err
		}
		data.Headers["Authorization"] = "Bearer " + key
	}
	if opts != nil {
		providers.ApplyExtraHeaders(&data, opts.ExtraHeaders)
	}

	return data, nil
}

/*
	##### RESPONSE PARSING #####
*/

func (Adapter) ParseChatResponse(target resolver.ServiceTarget, res *webc.WebResponse, opts *chat.ChatOptions) (*chat.ChatResponse, error) {
	var body respResponse
	if err := json.Unmarshal(res.Body, &body); err != nil {
		return nil, &providers.ResponseParseError{ModelIden: target.Model, Body: res.Body, Cause: err}
	}
	if len(body.Output) == 0 {
		return nil, &providers.NoResponseError{ModelIden: target.Model}
	}

	var content chat.MessageContent
	reasoning := ""

	for _, item := range body.Output {
		switch item.Type {
		case "message":
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					content = append(content, chat.NewTextPart(c.Text))
				}
			}

		case "reasoning":
			for _, summary := range item.Summary {
				if summary.Text == "" {
					continue
				}
				if reasoning != "" {
					reasoning += "\n"
				}
				reasoning += summary.Text
			}

		case "function_call":
			arguments, err := providers.ParseToolArgs(target.Model, item.Arguments)
			if err != nil {
				return nil, err
			}
			content = append(content, chat.NewToolCallPart(chat.ToolCall{
				CallID:      providers.EnsureCallID(item.CallID),
				FnName:      item.Name,
				FnArguments: arguments,
			}))
		}
	}

	response := &chat.ChatResponse{
		Content:           content,
		ReasoningContent:  reasoning,
		ModelIden:         target.Model,
		ProviderModelIden: target.Model.WithModel(body.Model),
		Usage:             normalizeUsage(body.Usage),
	}
	if opts != nil && opts.CaptureRawBody {
		response.CapturedRawBody = json.RawMessage(res.Body)
	}
	return response, nil
}

// normalizeUsage maps Responses usage (input/output naming) to the
// canonical accounting. Reasoning tokens are already inside output_tokens.
func normalizeUsage(wire *respUsage) chat.Usage {
	if wire == nil {
		return chat.Usage{}
	}
	normalized := chat.Usage{
		PromptTokens:     chat.Count(wire.InputTokens),
		CompletionTokens: chat.Count(wire.OutputTokens),
		TotalTokens:      chat.Count(wire.TotalTokens),
	}
	if details := wire.InputTokensDetails; details != nil && details.CachedTokens > 0 {
		normalized.PromptTokensDetails = &chat.PromptTokensDetails{
			Cached: chat.Count(details.CachedTokens),
		}
	}
	if details := wire.OutputTokensDetails; details != nil && details.ReasoningTokens > 0 {
		normalized.CompletionTokensDetails = &chat.CompletionTokensDetails{
			Reasoning: chat.Count(details.ReasoningTokens),
		}
	}
	normalized.CompactDetails()
	return normalized
}
