// Package gemini implements the Google Gemini generateContent adapter. The
// model name and stream mode travel in the URL path; streaming uses an
// incrementally delivered JSON array rather than SSE.
package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/"

// Adapter is the Gemini adapter.
type Adapter struct{}

func init() { providers.Register(Adapter{}) }

func (Adapter) Kind() adapter.Kind { return adapter.KindGemini }

func (Adapter) DefaultEndpoint() resolver.Endpoint {
	return resolver.NewEndpoint(defaultBaseURL)
}

func (Adapter) DefaultAuth() resolver.AuthData {
	return resolver.AuthFromEnvName(adapter.KindGemini.DefaultKeyEnvName())
}

func (Adapter) ListModels() []string { return adapter.StaticModels(adapter.KindGemini) }

/*
	##### REQUEST BUILDING #####
*/

func (Adapter) BuildChatRequest(target resolver.ServiceTarget, req chat.ChatRequest, opts *chat.ChatOptions, stream bool) (webc.WebRequestData, error) {
	body := chatRequest{}

	if system := req.CombinedSystem(); system != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}

	for _, msg := range req.Messages {
		wireContent, err := buildContent(target, msg)
		if err != nil {
			return webc.WebRequestData{}, err
		}
		if wireContent != nil {
			body.Contents = append(body.Contents, *wireContent)
		}
	}

	if len(req.Tools) > 0 {
		entry := toolsEntry{}
		for _, tool := range req.Tools {
			var params any
			if tool.Schema != nil {
				params = tool.Schema
			}
			entry.FunctionDeclarations = append(entry.FunctionDeclarations, functionDeclaration{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  params,
			})
		}
		body.Tools = []toolsEntry{entry}
	}

	body.GenerationConfig = buildGenerationConfig(opts)

	// The model and the stream mode are path-encoded.
	action := "generateContent"
	if stream {
		action = "streamGenerateContent"
	}
	url := target.Endpoint.JoinPath(fmt.Sprintf("models/%s:%s", target.Model.Model, action))

	data := webc.WebRequestData{
		URL:     url,
		Headers: map[string]string{},
		Body:    body,
	}
	if stream {
		// The array stream is plain JSON, not SSE.
		data.Headers["Accept"] = "application/json"
	}

	if target.Auth.Kind == resolver.AuthRequestOverride {
		providers.ApplyAuthOverride(&data, target.Auth)
	} else {
		key, err := target.Auth.SingleKey()
		if err != nil {
			return webc.WebRequestData{}, err
		}
		data.Headers["x-goog-api-key"] = key
	}
	if opts != nil {
		providers.ApplyExtraHeaders(&data, opts.ExtraHeaders)
	}

	return data, nil
}

// buildContent converts one canonical message to a Gemini content entry.
// A thought signature preceding a tool call attaches to that call's part,
// which is how Gemini expects signatures to be echoed back.
func buildContent(target resolver.ServiceTarget, msg chat.ChatMessage) (*content, error) {
	role := ""
	switch msg.Role {
	case chat.RoleSystem:
		return nil, nil // folded into systemInstruction
	case chat.RoleUser, chat.RoleTool:
		role = "user"
	case chat.RoleAssistant:
		role = "model"
	default:
		return nil, fmt.Errorf("unsupported role %q for %s", msg.Role, target.Model)
	}

	var parts []part
	pendingSignature := ""

	flushSignature := func() {
		if pendingSignature != "" {
			parts = append(parts, part{ThoughtSignature: pendingSignature})
			pendingSignature = ""
		}
	}

	for _, contentPart := range msg.Content {
		switch contentPart.Type {
		case chat.ContentTypeText:
			flushSignature()
			parts = append(parts, part{Text: contentPart.Text})

		case chat.ContentTypeThoughtSignature:
			pendingSignature = contentPart.ThoughtSignature

		case chat.ContentTypeToolCall:
			toolCall := contentPart.ToolCall
			p := part{FunctionCall: &functionCall{
				Name: toolCall.FnName,
				Args: toolCall.FnArguments,
			}}
			if pendingSignature != "" {
				p.ThoughtSignature = pendingSignature
				pendingSignature = ""
			} else if len(toolCall.ThoughtSignatures) > 0 {
				p.ThoughtSignature = toolCall.ThoughtSignatures[0]
			}
			parts = append(parts, p)

		case chat.ContentTypeToolResponse:
			flushSignature()
			toolResponse := contentPart.ToolResponse
			parts = append(parts, part{FunctionResponse: &functionResponse{
				// Gemini has no call IDs; the function name plays that role.
				Name:     toolResponse.CallID,
				Response: toolResponseBody(toolResponse),
			}})

		case chat.ContentTypeBinary:
			flushSignature()
			binary := contentPart.Binary
			if binary.IsURL() {
				parts = append(parts, part{FileData: &fileData{
					MimeType: binary.ContentType,
					FileURI:  binary.URL,
				}})
			} else {
				parts = append(parts, part{InlineData: &inlineData{
					MimeType: binary.ContentType,
					Data:     binary.Base64,
				}})
			}
		}
	}
	flushSignature()

	if len(parts) == 0 {
		return nil, nil
	}
	return &content{Role: role, Parts: parts}, nil
}

// toolResponseBody wraps a tool result as the functionResponse payload.
// Valid JSON passes through under "content"; anything else is carried as a
// JSON string.
func toolResponseBody(toolResponse *chat.ToolResponse) json.RawMessage {
	inner := json.RawMessage(toolResponse.Content)
	if !json.Valid(inner) {
		quoted, _ := json.Marshal(toolResponse.Content)
		inner = quoted
	}
	body, _ := json.Marshal(map[string]json.RawMessage{
		"name":    mustJSONString(toolResponse.CallID),
		"content": inner,
	})
	return body
}

func mustJSONString(s string) json.RawMessage {
	quoted, _ := json.Marshal(s)
	return quoted
}

func buildGenerationConfig(opts *chat.ChatOptions) *generationConfig {
	if opts == nil {
		return nil
	}

	config := &generationConfig{
		Temperature:     opts.Temperature,
		TopP:            opts.TopP,
		MaxOutputTokens: opts.MaxTokens,
		StopSequences:   opts.StopSequences,
		Seed:            opts.Seed,
	}

	if format := opts.ResponseFormat; format != nil {
		switch format.Kind {
		case chat.ResponseFormatJSONMode:
			config.ResponseMimeType = "application/json"
		case chat.ResponseFormatJSONSpec:
			config.ResponseMimeType = "application/json"
			if format.Spec != nil {
				config.ResponseSchema = format.Spec.Schema
			}
		}
	}

	if effort := opts.ReasoningEffort; effort != nil {
		// The budget is always sent, including an explicit 0 which disables
		// thinking for None and Minimal.
		config.ThinkingConfig = &thinkingConfig{
			ThinkingBudget:  int32(effort.TokenBudget()),
			IncludeThoughts: effort.TokenBudget() > 0,
		}
	}

	if config.Temperature == nil && config.TopP == nil && config.MaxOutputTokens == nil &&
		len(config.StopSequences) == 0 && config.Seed == nil &&
		config.ResponseMimeType == "" && config.ResponseSchema == nil && config.ThinkingConfig == nil {
		return nil
	}
	return config
}

/*
	##### RESPONSE PARSING #####
*/

func (Adapter) ParseChatResponse(target resolver.ServiceTarget, res *webc.WebResponse, opts *chat.ChatOptions) (*chat.ChatResponse, error) {
	var body chatResponse
	if err := json.Unmarshal(res.Body, &body); err != nil {
		return nil, &providers.ResponseParseError{ModelIden: target.Model, Body: res.Body, Cause: err}
	}
	if len(body.Candidates) == 0 || body.Candidates[0].Content == nil {
		return nil, &providers.NoResponseError{ModelIden: target.Model}
	}

	content, reasoning := parseParts(body.Candidates[0].Content.Parts)

	response := &chat.ChatResponse{
		Content:           content,
		ReasoningContent:  reasoning,
		ModelIden:         target.Model,
		ProviderModelIden: target.Model.WithModel(body.ModelVersion),
		Usage:             normalizeUsage(body.UsageMetadata),
	}
	if opts != nil && opts.CaptureRawBody {
		response.CapturedRawBody = json.RawMessage(res.Body)
	}
	return response, nil
}

// parseParts converts candidate parts, keeping order. Thought parts feed the
// reasoning channel; a part-level thoughtSignature becomes a signature part
// placed ahead of the part it signs.
func parseParts(parts []part) (chat.MessageContent, string) {
	var content chat.MessageContent
	reasoning := ""

	for _, p := range parts {
		if p.ThoughtSignature != "" {
			content = append(content, chat.NewThoughtSignaturePart(p.ThoughtSignature))
		}

		switch {
		case p.FunctionCall != nil:
			arguments := p.FunctionCall.Args
			if len(arguments) == 0 {
				arguments = json.RawMessage(`{}`)
			}
			toolCall := chat.ToolCall{
				// No call IDs on this API; the function name stands in.
				CallID:      p.FunctionCall.Name,
				FnName:      p.FunctionCall.Name,
				FnArguments: arguments,
			}
			if p.ThoughtSignature != "" {
				toolCall.ThoughtSignatures = []string{p.ThoughtSignature}
			}
			content = append(content, chat.NewToolCallPart(toolCall))

		case p.Thought:
			if reasoning != "" {
				reasoning += "\n"
			}
			reasoning += p.Text

		case p.Text != "":
			content = append(content, chat.NewTextPart(p.Text))
		}
	}

	return content, reasoning
}

// normalizeUsage maps usageMetadata to the canonical accounting:
// promptTokenCount already includes the cached content count, and
// thoughtsTokenCount is not part of candidatesTokenCount, so reasoning is
// added into the completion total.
func normalizeUsage(wire *usageMetadata) chat.Usage {
	if wire == nil {
		return chat.Usage{}
	}

	normalized := chat.Usage{
		PromptTokens:     chat.Count(wire.PromptTokenCount),
		CompletionTokens: chat.Count(wire.CandidatesTokenCount + wire.ThoughtsTokenCount),
		TotalTokens:      chat.Count(wire.TotalTokenCount),
	}
	if wire.CachedContentTokenCount > 0 {
		normalized.PromptTokensDetails = &chat.PromptTokensDetails{
			Cached: chat.Count(wire.CachedContentTokenCount),
		}
	}
	if wire.ThoughtsTokenCount > 0 {
		normalized.CompletionTokensDetails = &chat.CompletionTokensDetails{
			Reasoning: chat.Count(wire.ThoughtsTokenCount),
		}
	}
	normalized.CompactDetails()
	return normalized
}
