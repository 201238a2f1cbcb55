// Package bedrock implements the AWS Bedrock Converse API adapter with
// bearer-token auth (AWS_BEARER_TOKEN_BEDROCK). The model travels in the
// URL path; request and response use the Converse message shape.
package bedrock

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/embed"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

const (
	// regionEnvName selects the AWS region of the runtime endpoint.
	regionEnvName = "AWS_REGION"
	defaultRegion = "us-east-1"
)

// Adapter is the Bedrock Converse adapter.
type Adapter struct{}

func init() { providers.Register(Adapter{}) }

func (Adapter) Kind() adapter.Kind { return adapter.KindBedrock }

// DefaultEndpoint derives the runtime endpoint from AWS_REGION.
func (Adapter) DefaultEndpoint() resolver.Endpoint {
	region := os.Getenv(regionEnvName)
	if region == "" {
		region = defaultRegion
	}
	return resolver.NewEndpoint(fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com/", region))
}

func (Adapter) DefaultAuth() resolver.AuthData {
	return resolver.AuthFromEnvName(adapter.KindBedrock.DefaultKeyEnvName())
}

func (Adapter) ListModels() []string { return adapter.StaticModels(adapter.KindBedrock) }

func (Adapter) BuildEmbedRequest(resolver.ServiceTarget, embed.EmbedRequest, *embed.EmbedOptions) (webc.WebRequestData, error) {
	return webc.WebRequestData{}, &adapter.NotSupportedError{Kind: adapter.KindBedrock, Feature: "embed"}
}

func (Adapter) ParseEmbedResponse(resolver.ServiceTarget, *webc.WebResponse, *embed.EmbedOptions) (*embed.EmbedResponse, error) {
	return nil, &adapter.NotSupportedError{Kind: adapter.KindBedrock, Feature: "embed"}
}

/*
	##### WIRE MODEL #####
*/

type converseRequest struct {
	Messages        []converseMessage `json:"messages"`
	System          []systemBlock     `json:"system,omitempty"`
	InferenceConfig *inferenceConfig  `json:"inferenceConfig,omitempty"`
	ToolConfig      *toolConfig       `json:"toolConfig,omitempty"`
}

type systemBlock struct {
	Text string `json:"text"`
}

type converseMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Text       string       `json:"text,omitempty"`
	Image      *imageBlock  `json:"image,omitempty"`
	Document   *docBlock    `json:"document,omitempty"`
	ToolUse    *toolUse     `json:"toolUse,omitempty"`
	ToolResult *toolResultB `json:"toolResult,omitempty"`
}

type imageBlock struct {
	Format string      `json:"format"`
	Source blockSource `json:"source"`
}

type docBlock struct {
	Format string      `json:"format"`
	Name   string      `json:"name"`
	Source blockSource `json:"source"`
}

type blockSource struct {
	Bytes string `json:"bytes"`
}

type toolUse struct {
	ToolUseID string          `json:"toolUseId"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
}

type toolResultB struct {
	ToolUseID string              `json:"toolUseId"`
	Content   []toolResultContent `json:"content"`
}

type toolResultContent struct {
	Text string          `json:"text,omitempty"`
	JSON json.RawMessage `json:"json,omitempty"`
}

type inferenceConfig struct {
	MaxTokens     *uint32  `json:"maxTokens,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	TopP          *float64 `json:"topP,omitempty"`
	StopSequences []string `json:"stopSequences,omitempty"`
}

type toolConfig struct {
	Tools []toolEntry `json:"tools"`
}

type toolEntry struct {
	ToolSpec toolSpec `json:"toolSpec"`
}

type toolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema"`
}

type converseResponse struct {
	Output *struct {
		Message *converseResponseMessage `json:"message"`
	} `json:"output"`
	StopReason string `json:"stopReason"`
	Usage      *usage `json:"usage"`
}

type converseResponseMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type usage struct {
	InputTokens  int32 `json:"inputTokens"`
	OutputTokens int32 `json:"outputTokens"`
	TotalTokens  int32 `json:"totalTokens"`
}

/*
	##### REQUEST BUILDING #####
*/

func (Adapter) BuildChatRequest(target resolver.ServiceTarget, req chat.ChatRequest, opts *chat.ChatOptions, stream bool) (webc.WebRequestData, error) {
	body := converseRequest{}

	if system := req.CombinedSystem(); system != "" {
		body.System = []systemBlock{{Text: system}}
	}

	for _, msg := range req.Messages {
		wireMessage, err := buildMessage(target, msg)
		if err != nil {
			return webc.WebRequestData{}, err
		}
		if wireMessage != nil {
			body.Messages = append(body.Messages, *wireMessage)
		}
	}

	if len(req.Tools) > 0 {
		config := &toolConfig{}
		for _, tool := range req.Tools {
			schema := map[string]any{"json": anySchema(tool)}
			config.Tools = append(config.Tools, toolEntry{ToolSpec: toolSpec{
				Name:        tool.Name,
				Description: tool.Description,
				InputSchema: schema,
			}})
		}
		body.ToolConfig = config
	}

	if opts != nil {
		config := &inferenceConfig{
			MaxTokens:     opts.MaxTokens,
			Temperature:   opts.Temperature,
			TopP:          opts.TopP,
			StopSequences: opts.StopSequences,
		}
		if config.MaxTokens != nil || config.Temperature != nil || config.TopP != nil || len(config.StopSequences) > 0 {
			body.InferenceConfig = config
		}
	}

	action := "converse"
	if stream {
		action = "converse-stream"
	}
	data := webc.WebRequestData{
		URL:     target.Endpoint.JoinPath(fmt.Sprintf("model/%s/%s", url.PathEscape(target.Model.Model), action)),
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

func anySchema(tool chat.Tool) any {
	if tool.Schema != nil {
		return tool.Schema
	}
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func buildMessage(target resolver.ServiceTarget, msg chat.ChatMessage) (*converseMessage, error) {
	switch msg.Role {
	case chat.RoleSystem:
		return nil, nil

	case chat.RoleUser, chat.RoleAssistant:
		role := "user"
		if msg.Role == chat.RoleAssistant {
			role = "assistant"
		}
		var blocks []contentBlock
		for _, part := range msg.Content {
			switch part.Type {
			case chat.ContentTypeText:
				blocks = append(blocks, contentBlock{Text: part.Text})
			case chat.ContentTypeToolCall:
				toolCall := part.ToolCall
				blocks = append(blocks, contentBlock{ToolUse: &toolUse{
					ToolUseID: toolCall.CallID,
					Name:      toolCall.FnName,
					Input:     toolCall.FnArguments,
				}})
			case chat.ContentTypeBinary:
				block, err := buildBinaryBlock(target, part.Binary)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, block)
			case chat.ContentTypeThoughtSignature:
				// The Converse API has no signature surface; dropped.
			}
		}
		if len(blocks) == 0 {
			return nil, nil
		}
		return &converseMessage{Role: role, Content: blocks}, nil

	case chat.RoleTool:
		var blocks []contentBlock
		for _, part := range msg.Content {
			if part.Type != chat.ContentTypeToolResponse || part.ToolResponse == nil {
				continue
			}
			blocks = append(blocks, contentBlock{ToolResult: &toolResultB{
				ToolUseID: part.ToolResponse.CallID,
				Content:   []toolResultContent{toolResultPayload(part.ToolResponse.Content)},
			}})
		}
		if len(blocks) == 0 {
			return nil, nil
		}
		// Tool results travel on a user turn.
		return &converseMessage{Role: "user", Content: blocks}, nil

	default:
		return nil, fmt.Errorf("unsupported role %q for %s", msg.Role, target.Model)
	}
}

func toolResultPayload(content string) toolResultContent {
	raw := json.RawMessage(content)
	if json.Valid(raw) && len(raw) > 0 && raw[0] == '{' {
		return toolResultContent{JSON: raw}
	}
	return toolResultContent{Text: content}
}

// buildBinaryBlock maps a binary to an image or document block; the Converse
// API takes inline bytes only.
func buildBinaryBlock(target resolver.ServiceTarget, binary *chat.Binary) (contentBlock, error) {
	if binary.IsURL() {
		return contentBlock{}, fmt.Errorf("binary by URL is not supported for %s; inline it as base64", target.Model)
	}
	format := formatFromMIME(binary.ContentType)
	if binary.IsImage() {
		return contentBlock{Image: &imageBlock{Format: format, Source: blockSource{Bytes: binary.Base64}}}, nil
	}
	name := binary.Name
	if name == "" {
		name = "document"
	}
	return contentBlock{Document: &docBlock{Format: format, Name: name, Source: blockSource{Bytes: binary.Base64}}}, nil
}

func formatFromMIME(contentType string) string {
	switch contentType {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpeg"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "application/pdf":
		return "pdf"
	case "text/plain":
		return "txt"
	default:
		return "png"
	}
}

/*
	##### RESPONSE PARSING #####
*/

func (Adapter) ParseChatResponse(target resolver.ServiceTarget, res *webc.WebResponse, opts *chat.ChatOptions) (*chat.ChatResponse, error) {
	var body converseResponse
	if err := json.Unmarshal(res.Body, &body); err != nil {
		return nil, &providers.ResponseParseError{ModelIden: target.Model, Body: res.Body, Cause: err}
	}
	if body.Output == nil || body.Output.Message == nil {
		return nil, &providers.NoResponseError{ModelIden: target.Model}
	}

	var content chat.MessageContent
	for _, block := range body.Output.Message.Content {
		switch {
		case block.ToolUse != nil:
			arguments := block.ToolUse.Input
			if len(arguments) == 0 {
				arguments = json.RawMessage(`{}`)
			}
			content = append(content, chat.NewToolCallPart(chat.ToolCall{
				CallID:      providers.EnsureCallID(block.ToolUse.ToolUseID),
				FnName:      block.ToolUse.Name,
				FnArguments: arguments,
			}))
		case block.Text != "":
			content = append(content, chat.NewTextPart(block.Text))
		}
	}
	if len(content) == 0 {
		return nil, &providers.NoResponseError{ModelIden: target.Model}
	}

	response := &chat.ChatResponse{
		Content:           content,
		ModelIden:         target.Model,
		ProviderModelIden: target.Model,
		Usage:             normalizeUsage(body.Usage),
	}
	if opts != nil && opts.CaptureRawBody {
		response.CapturedRawBody = json.RawMessage(res.Body)
	}
	return response, nil
}

func normalizeUsage(wire *usage) chat.Usage {
	if wire == nil {
		return chat.Usage{}
	}
	total := wire.TotalTokens
	if total == 0 {
		total = wire.InputTokens + wire.OutputTokens
	}
	return chat.Usage{
		PromptTokens:     chat.Count(wire.InputTokens),
		CompletionTokens: chat.Count(wire.OutputTokens),
		TotalTokens:      chat.Count(total),
	}
}
