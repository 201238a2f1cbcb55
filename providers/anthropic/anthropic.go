// Package anthropic implements the Anthropic Messages API adapter.
package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/embed"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1/"
	messagesPath   = "messages"

	// anthropicVersion is the mandatory API version header value.
	anthropicVersion = "2023-06-01"
)

// Adapter is the Anthropic adapter.
type Adapter struct{}

func init() { providers.Register(Adapter{}) }

func (Adapter) Kind() adapter.Kind { return adapter.KindAnthropic }

func (Adapter) DefaultEndpoint() resolver.Endpoint {
	return resolver.NewEndpoint(defaultBaseURL)
}

func (Adapter) DefaultAuth() resolver.AuthData {
	return resolver.AuthFromEnvName(adapter.KindAnthropic.DefaultKeyEnvName())
}

func (Adapter) ListModels() []string { return adapter.StaticModels(adapter.KindAnthropic) }

func (Adapter) BuildEmbedRequest(resolver.ServiceTarget, embed.EmbedRequest, *embed.EmbedOptions) (webc.WebRequestData, error) {
	return webc.WebRequestData{}, &adapter.NotSupportedError{Kind: adapter.KindAnthropic, Feature: "embed"}
}

func (Adapter) ParseEmbedResponse(resolver.ServiceTarget, *webc.WebResponse, *embed.EmbedOptions) (*embed.EmbedResponse, error) {
	return nil, &adapter.NotSupportedError{Kind: adapter.KindAnthropic, Feature: "embed"}
}

/*
	##### REQUEST BUILDING #####
*/

func (Adapter) BuildChatRequest(target resolver.ServiceTarget, req chat.ChatRequest, opts *chat.ChatOptions, stream bool) (webc.WebRequestData, error) {
	body := chatRequest{
		Model:  target.Model.Model,
		System: req.CombinedSystem(),
		Stream: stream,
	}

	messages, err := buildMessages(target, req.Messages)
	if err != nil {
		return webc.WebRequestData{}, err
	}
	body.Messages = messages

	for _, tool := range req.Tools {
		def := toolDef{Name: tool.Name, Description: tool.Description}
		if tool.Schema != nil {
			def.InputSchema = tool.Schema
		} else {
			// input_schema is mandatory; an empty object schema keeps
			// no-argument tools valid.
			def.InputSchema = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		body.Tools = append(body.Tools, def)
	}

	// max_tokens is required on every request. Without an explicit option,
	// use the model's known maximum, falling back to 1024 for older models.
	body.MaxTokens = defaultMaxTokens(target.Model.Model)
	if opts != nil {
		if opts.MaxTokens != nil {
			body.MaxTokens = *opts.MaxTokens
		}
		body.Temperature = opts.Temperature
		body.TopP = opts.TopP
		body.StopSequences = opts.StopSequences

		if effort := opts.ReasoningEffort; effort != nil {
			if budget := effort.TokenBudget(); budget > 0 {
				body.Thinking = &thinkingConfig{Type: "enabled", BudgetTokens: budget}
			}
		}
	}

	data := webc.WebRequestData{
		URL: target.Endpoint.JoinPath(messagesPath),
		Headers: map[string]string{
			"anthropic-version": anthropicVersion,
		},
		Body: body,
	}

	if target.Auth.Kind == resolver.AuthRequestOverride {
		providers.ApplyAuthOverride(&data, target.Auth)
	} else {
		key, err := target.Auth.SingleKey()
		if err != nil {
			return webc.WebRequestData{}, err
		}
		data.Headers["x-api-key"] = key
	}
	if opts != nil {
		providers.ApplyExtraHeaders(&data, opts.ExtraHeaders)
	}

	return data, nil
}

// buildMessages converts canonical messages to Anthropic's strictly
// alternating user/assistant layout. Tool responses become user-role
// tool_result blocks; consecutive tool responses merge into one user turn
// because the API forbids back-to-back user messages.
func buildMessages(target resolver.ServiceTarget, messages []chat.ChatMessage) ([]chatMessage, error) {
	var result []chatMessage

	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleSystem:
			// Folded into the top-level system field by CombinedSystem.
			continue

		case chat.RoleUser, chat.RoleAssistant:
			blocks, err := buildContentBlocks(target, msg.Content)
			if err != nil {
				return nil, err
			}
			if len(blocks) == 0 {
				continue
			}
			applyCacheControl(blocks, msg.Options)
			result = append(result, chatMessage{Role: string(msg.Role), Content: blocks})

		case chat.RoleTool:
			for _, part := range msg.Content {
				if part.Type != chat.ContentTypeToolResponse || part.ToolResponse == nil {
					continue
				}
				block := contentBlock{
					Type:      "tool_result",
					ToolUseID: part.ToolResponse.CallID,
					Content:   part.ToolResponse.Content,
				}
				// Merge into a preceding all-tool-result user turn.
				if n := len(result); n > 0 && isAllToolResults(result[n-1]) {
					result[n-1].Content = append(result[n-1].Content, block)
				} else {
					result = append(result, chatMessage{Role: "user", Content: []contentBlock{block}})
				}
			}

		default:
			return nil, fmt.Errorf("unsupported role %q for %s", msg.Role, target.Model)
		}
	}

	return result, nil
}

// buildContentBlocks converts content parts, preserving order. Thought
// signatures become thinking blocks carrying the signature so the API can
// verify the round trip ahead of the tool_use block they precede.
func buildContentBlocks(target resolver.ServiceTarget, content chat.MessageContent) ([]contentBlock, error) {
	var blocks []contentBlock
	for _, part := range content {
		switch part.Type {
		case chat.ContentTypeText:
			blocks = append(blocks, contentBlock{Type: "text", Text: part.Text})

		case chat.ContentTypeThoughtSignature:
			blocks = append(blocks, contentBlock{Type: "thinking", Signature: part.ThoughtSignature})

		case chat.ContentTypeToolCall:
			toolCall := part.ToolCall
			blocks = append(blocks, contentBlock{
				Type:  "tool_use",
				ID:    toolCall.CallID,
				Name:  toolCall.FnName,
				Input: toolCall.FnArguments,
			})

		case chat.ContentTypeBinary:
			block, err := buildBinaryBlock(target, part.Binary)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)

		case chat.ContentTypeToolResponse:
			if part.ToolResponse != nil {
				blocks = append(blocks, contentBlock{
					Type:      "tool_result",
					ToolUseID: part.ToolResponse.CallID,
					Content:   part.ToolResponse.Content,
				})
			}
		}
	}
	return blocks, nil
}

// buildBinaryBlock maps a binary to an image or document block. Images must
// be inline base64; PDFs take the document form.
func buildBinaryBlock(target resolver.ServiceTarget, binary *chat.Binary) (contentBlock, error) {
	if binary.IsImage() {
		if binary.IsURL() {
			return contentBlock{}, fmt.Errorf("image by URL is not supported for %s; inline it as base64", target.Model)
		}
		return contentBlock{Type: "image", Source: &blockSource{
			Type:      "base64",
			MediaType: binary.ContentType,
			Data:      binary.Base64,
		}}, nil
	}

	source := &blockSource{Type: "base64", MediaType: binary.ContentType, Data: binary.Base64}
	if binary.IsURL() {
		source = &blockSource{Type: "url", URL: binary.URL}
	}
	return contentBlock{Type: "document", Source: source, Title: binary.Name}, nil
}

// applyCacheControl attaches the message's cache marker to its last content
// block, which caches the whole prefix up to and including this message.
func applyCacheControl(blocks []contentBlock, opts *chat.MessageOptions) {
	if opts == nil || opts.CacheControl == "" || len(blocks) == 0 {
		return
	}
	blocks[len(blocks)-1].CacheControl = &cacheControl{
		Type: "ephemeral",
		TTL:  opts.CacheControl.TTL(),
	}
}

// defaultMaxTokens picks the required max_tokens when the caller set none:
// the model maximum for Claude 3.5 and later generations, 1024 otherwise.
func defaultMaxTokens(model string) uint32 {
	switch {
	case strings.HasPrefix(model, "claude-opus-4"), strings.HasPrefix(model, "claude-sonnet-4"),
		strings.HasPrefix(model, "claude-haiku-4"):
		return 32000
	case strings.HasPrefix(model, "claude-3-7"):
		return 64000
	case strings.HasPrefix(model, "claude-3-5"):
		return 8192
	default:
		return 1024
	}
}

/*
	##### RESPONSE PARSING #####
*/

func (Adapter) ParseChatResponse(target resolver.ServiceTarget, res *webc.WebResponse, opts *chat.ChatOptions) (*chat.ChatResponse, error) {
	var body chatResponse
	if err := json.Unmarshal(res.Body, &body); err != nil {
		return nil, &providers.ResponseParseError{ModelIden: target.Model, Body: res.Body, Cause: err}
	}
	if len(body.Content) == 0 {
		return nil, &providers.NoResponseError{ModelIden: target.Model}
	}

	var content chat.MessageContent
	var reasoningParts []string

	for _, block := range body.Content {
		switch block.Type {
		case "text":
			content = append(content, chat.NewTextPart(block.Text))

		case "thinking":
			// Thinking text feeds the reasoning channel; the signature stays
			// in the ordered content so it precedes any following tool_use.
			if block.Thinking != "" {
				reasoningParts = append(reasoningParts, block.Thinking)
			}
			if block.Signature != "" {
				content = append(content, chat.NewThoughtSignaturePart(block.Signature))
			}

		case "tool_use":
			arguments := block.Input
			if len(arguments) == 0 {
				arguments = json.RawMessage(`{}`)
			}
			content = append(content, chat.NewToolCallPart(chat.ToolCall{
				CallID:      providers.EnsureCallID(block.ID),
				FnName:      block.Name,
				FnArguments: arguments,
			}))

		default:
			// Unknown block types are skipped for forward compatibility.
		}
	}

	response := &chat.ChatResponse{
		Content:           content,
		ReasoningContent:  strings.Join(reasoningParts, "\n"),
		ModelIden:         target.Model,
		ProviderModelIden: target.Model.WithModel(body.Model),
		Usage:             normalizeUsage(body.Usage),
	}
	if opts != nil && opts.CaptureRawBody {
		response.CapturedRawBody = json.RawMessage(res.Body)
	}
	return response, nil
}

// normalizeUsage maps Anthropic usage to the canonical accounting:
// prompt_tokens includes the cache-creation and cache-read counts, which
// Anthropic reports outside input_tokens.
func normalizeUsage(wire *usage) chat.Usage {
	if wire == nil {
		return chat.Usage{}
	}

	promptTokens := wire.InputTokens + wire.CacheCreationInputTokens + wire.CacheReadInputTokens
	normalized := chat.Usage{
		PromptTokens:     chat.Count(promptTokens),
		CompletionTokens: chat.Count(wire.OutputTokens),
		TotalTokens:      chat.Count(promptTokens + wire.OutputTokens),
	}

	details := &chat.PromptTokensDetails{
		CacheCreation: chat.Count(wire.CacheCreationInputTokens),
		Cached:        chat.Count(wire.CacheReadInputTokens),
	}
	if inner := wire.CacheCreation; inner != nil {
		details.CacheCreationDetails = &chat.CacheCreationDetails{
			Ephemeral5m: chat.Count(inner.Ephemeral5mInputTokens),
			Ephemeral1h: chat.Count(inner.Ephemeral1hInputTokens),
		}
	}
	normalized.PromptTokensDetails = details

	normalized.CompactDetails()
	return normalized
}

// isAllToolResults reports whether every block of the message is a
// tool_result, marking it mergeable with further tool responses.
func isAllToolResults(msg chatMessage) bool {
	if msg.Role != "user" || len(msg.Content) == 0 {
		return false
	}
	for _, block := range msg.Content {
		if block.Type != "tool_result" {
			return false
		}
	}
	return true
}
