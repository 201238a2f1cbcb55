package openai

import (
	"fmt"
	"strings"

	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

// BuildChatRequestData builds the chat-completions wire request for the
// target. The model and the stream flag travel in the body; the URL is the
// endpoint plus the chat-completions path.
func BuildChatRequestData(target resolver.ServiceTarget, req chat.ChatRequest, opts *chat.ChatOptions, stream bool) (webc.WebRequestData, error) {
	body := chatRequest{Model: target.Model.Model}

	// -- Messages --
	if system := req.CombinedSystem(); system != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: system})
	}
	for _, msg := range req.Messages {
		wireMessages, err := buildMessages(target, msg)
		if err != nil {
			return webc.WebRequestData{}, err
		}
		body.Messages = append(body.Messages, wireMessages...)
	}

	// -- Tools --
	for _, tool := range req.Tools {
		var params any
		if tool.Schema != nil {
			params = tool.Schema
		}
		body.Tools = append(body.Tools, toolDef{
			Type: "function",
			Function: toolDefBody{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  params,
			},
		})
	}

	// -- Options --
	if opts != nil {
		body.Temperature = opts.Temperature
		body.TopP = opts.TopP
		body.Stop = opts.StopSequences
		body.Seed = opts.Seed

		if opts.MaxTokens != nil {
			if usesMaxCompletionTokens(target.Model.Model) {
				body.MaxCompletionTokens = opts.MaxTokens
			} else {
				body.MaxTokens = opts.MaxTokens
			}
		}

		if format := opts.ResponseFormat; format != nil {
			switch format.Kind {
			case chat.ResponseFormatJSONMode:
				body.ResponseFormat = &responseFormat{Type: "json_object"}
			case chat.ResponseFormatJSONSpec:
				if format.Spec == nil {
					return webc.WebRequestData{}, fmt.Errorf("json_spec response format without a spec")
				}
				body.ResponseFormat = &responseFormat{
					Type: "json_schema",
					JSONSchema: &jsonSchema{
						Name:        format.Spec.Name,
						Description: format.Spec.Description,
						Schema:      format.Spec.Schema,
						Strict:      true,
					},
				}
			}
		}

		if effort := opts.ReasoningEffort; effort != nil {
			// OpenAI takes the keyword form only; a fixed budget has no
			// chat-completions mapping and None means "do not send".
			switch effort.Level {
			case chat.ReasoningMinimal, chat.ReasoningLow, chat.ReasoningMedium, chat.ReasoningHigh:
				body.ReasoningEffort = string(effort.Level)
			}
		}

		if opts.Verbosity != nil {
			body.Verbosity = string(*opts.Verbosity)
		}
		if opts.ServiceTier != nil {
			body.ServiceTier = string(*opts.ServiceTier)
		}
	}

	if stream {
		body.Stream = true
		body.StreamOptions = &streamOptions{IncludeUsage: true}
	}

	// -- Headers / URL --
	data := webc.WebRequestData{
		URL:     target.Endpoint.JoinPath(chatCompletionsPath),
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

// buildMessages converts one canonical message to its wire form. A single
// message can expand to several wire messages: each tool response becomes
// its own tool-role message.
func buildMessages(target resolver.ServiceTarget, msg chat.ChatMessage) ([]chatMessage, error) {
	switch msg.Role {
	case chat.RoleSystem:
		// Already folded into the leading system message by CombinedSystem.
		return nil, nil

	case chat.RoleUser:
		content, err := buildUserContent(target, msg.Content)
		if err != nil {
			return nil, err
		}
		return []chatMessage{{Role: "user", Content: content}}, nil

	case chat.RoleAssistant:
		return buildAssistantMessages(msg.Content)

	case chat.RoleTool:
		var wireMessages []chatMessage
		for _, part := range msg.Content {
			if part.Type != chat.ContentTypeToolResponse || part.ToolResponse == nil {
				continue
			}
			wireMessages = append(wireMessages, chatMessage{
				Role:       "tool",
				ToolCallID: part.ToolResponse.CallID,
				Content:    part.ToolResponse.Content,
			})
		}
		return wireMessages, nil

	default:
		return nil, fmt.Errorf("unsupported role %q for %s", msg.Role, target.Model)
	}
}

// buildUserContent renders user content as a plain string when text-only,
// or as a part array when binaries are present.
func buildUserContent(target resolver.ServiceTarget, content chat.MessageContent) (any, error) {
	multipart := false
	for _, part := range content {
		if part.Type == chat.ContentTypeBinary {
			multipart = true
			break
		}
	}
	if !multipart {
		return content.JoinedTexts(), nil
	}

	var parts []contentPart
	for _, part := range content {
		switch part.Type {
		case chat.ContentTypeText:
			parts = append(parts, contentPart{Type: "text", Text: part.Text})
		case chat.ContentTypeBinary:
			binary := part.Binary
			if binary.IsImage() {
				url := binary.URL
				if url == "" {
					url = dataURI(binary.ContentType, binary.Base64)
				}
				parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: url}})
				continue
			}
			if binary.URL != "" {
				return nil, fmt.Errorf("content type %q by URL is not supported for %s", binary.ContentType, target.Model)
			}
			parts = append(parts, contentPart{Type: "file", File: &filePart{
				Filename: binary.Name,
				FileData: dataURI(binary.ContentType, binary.Base64),
			}})
		}
	}
	return parts, nil
}

// buildAssistantMessages renders an assistant turn: joined text plus tool
// calls. Thought signatures have no chat-completions representation and are
// omitted.
func buildAssistantMessages(content chat.MessageContent) ([]chatMessage, error) {
	wireMessage := chatMessage{Role: "assistant"}

	if text := content.JoinedTexts(); text != "" {
		wireMessage.Content = text
	}
	for _, toolCall := range content.ToolCalls() {
		wireMessage.ToolCalls = append(wireMessage.ToolCalls, wireToolCall{
			ID:   toolCall.CallID,
			Type: "function",
			Function: wireToolFunction{
				Name:      toolCall.FnName,
				Arguments: string(toolCall.FnArguments),
			},
		})
	}

	if wireMessage.Content == nil && len(wireMessage.ToolCalls) == 0 {
		return nil, nil
	}
	return []chatMessage{wireMessage}, nil
}

// applyBearerAuth resolves the target auth into an Authorization header, or
// applies a request override. Providers without credentials (Ollama) send no
// header.
func applyBearerAuth(data *webc.WebRequestData, target resolver.ServiceTarget) error {
	if target.Auth.Kind == resolver.AuthRequestOverride {
		providers.ApplyAuthOverride(data, target.Auth)
		return nil
	}
	key, err := target.Auth.SingleKey()
	if err != nil {
		return err
	}
	if key != "" {
		data.Headers["Authorization"] = "Bearer " + key
	}
	return nil
}

// usesMaxCompletionTokens reports whether the model requires the
// max_completion_tokens field instead of the legacy max_tokens.
func usesMaxCompletionTokens(model string) bool {
	return strings.HasPrefix(model, "gpt-5") ||
		strings.HasPrefix(model, "gpt-4.1") ||
		strings.HasPrefix(model, "o1") ||
		strings.HasPrefix(model, "o3") ||
		strings.HasPrefix(model, "o4")
}

// dataURI renders inline binary data as a data: URI.
func dataURI(contentType, base64Data string) string {
	return "data:" + contentType + ";base64," + base64Data
}
