package openai

import (
	"encoding/json"
	"testing"

	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

func testTarget(model string) resolver.ServiceTarget {
	return resolver.ServiceTarget{
		Endpoint: resolver.NewEndpoint("https://api.openai.com/v1/"),
		Auth:     resolver.AuthFromKey("sk-test"),
		Model:    adapter.NewModelIden(adapter.KindOpenAI, model),
	}
}

// marshalBody round-trips the request body to a generic map for assertions.
func marshalBody(t *testing.T, data webc.WebRequestData) map[string]any {
	t.Helper()
	raw, err := json.Marshal(data.Body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	return body
}

// TestBuildChatRequestData_Basic checks the URL, auth header, and the
// minimal body of a plain user message.
func TestBuildChatRequestData_Basic(t *testing.T) {
	req := chat.NewChatRequest(chat.UserMessage("Hi"))

	data, err := BuildChatRequestData(testTarget("gpt-4o-mini"), req, nil, false)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if data.URL != "https://api.openai.com/v1/chat/completions" {
		t.Errorf("URL = %q", data.URL)
	}
	if data.Headers["Authorization"] != "Bearer sk-test" {
		t.Errorf("Authorization = %q", data.Headers["Authorization"])
	}

	body := marshalBody(t, data)
	if body["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v", body["model"])
	}
	messages := body["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("messages = %v", messages)
	}
	first := messages[0].(map[string]any)
	if first["role"] != "user" || first["content"] != "Hi" {
		t.Errorf("first message = %v", first)
	}
	if _, hasStream := body["stream"]; hasStream {
		t.Error("unary request must not set stream")
	}
}

// TestBuildChatRequestData_Options checks option mapping, including the
// max_completion_tokens switch for newer models and the system fold-in.
func TestBuildChatRequestData_Options(t *testing.T) {
	temperature := 0.7
	maxTokens := uint32(256)
	seed := uint64(42)
	opts := &chat.ChatOptions{
		Temperature:     &temperature,
		MaxTokens:       &maxTokens,
		Seed:            &seed,
		StopSequences:   []string{"STOP"},
		ResponseFormat:  chat.JSONMode(),
		ReasoningEffort: chat.EffortLevel(chat.ReasoningLow),
	}
	req := chat.NewChatRequest(chat.UserMessage("Hi")).WithSystem("be brief")

	t.Run("legacy model uses max_tokens", func(t *testing.T) {
		data, err := BuildChatRequestData(testTarget("gpt-4o-mini"), req, opts, false)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		body := marshalBody(t, data)
		if body["max_tokens"] != float64(256) {
			t.Errorf("max_tokens = %v", body["max_tokens"])
		}
		if body["temperature"] != 0.7 || body["seed"] != float64(42) {
			t.Errorf("sampling = %v / %v", body["temperature"], body["seed"])
		}
		if body["reasoning_effort"] != "low" {
			t.Errorf("reasoning_effort = %v", body["reasoning_effort"])
		}
		format := body["response_format"].(map[string]any)
		if format["type"] != "json_object" {
			t.Errorf("response_format = %v", format)
		}
		messages := body["messages"].([]any)
		first := messages[0].(map[string]any)
		if first["role"] != "system" || first["content"] != "be brief" {
			t.Errorf("system message = %v", first)
		}
	})

	t.Run("gpt-5 uses max_completion_tokens", func(t *testing.T) {
		data, err := BuildChatRequestData(testTarget("gpt-5-mini"), req, opts, false)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		body := marshalBody(t, data)
		if body["max_completion_tokens"] != float64(256) {
			t.Errorf("max_completion_tokens = %v", body["max_completion_tokens"])
		}
		if _, hasLegacy := body["max_tokens"]; hasLegacy {
			t.Error("gpt-5 must not send max_tokens")
		}
	})
}

// TestBuildChatRequestData_ToolTurn checks the assistant tool-call turn and
// the per-response tool messages of the tool-use handoff.
func TestBuildChatRequestData_ToolTurn(t *testing.T) {
	toolCall := chat.ToolCall{
		CallID:      "call_1",
		FnName:      "get_weather",
		FnArguments: json.RawMessage(`{"location":"Paris"}`),
	}
	req := chat.NewChatRequest(
		chat.UserMessage("weather?"),
		chat.AssistantMessageParts(chat.NewToolCallPart(toolCall)),
		chat.ToolResponseMessage(chat.NewToolResponse("call_1", "sunny")),
	)

	data, err := BuildChatRequestData(testTarget("gpt-4o-mini"), req, nil, false)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	body := marshalBody(t, data)
	messages := body["messages"].([]any)
	if len(messages) != 3 {
		t.Fatalf("messages = %d, want 3", len(messages))
	}

	assistant := messages[1].(map[string]any)
	calls := assistant["tool_calls"].([]any)
	call := calls[0].(map[string]any)
	if call["id"] != "call_1" {
		t.Errorf("tool call id = %v", call["id"])
	}
	function := call["function"].(map[string]any)
	if function["name"] != "get_weather" || function["arguments"] != `{"location":"Paris"}` {
		t.Errorf("function = %v", function)
	}

	tool := messages[2].(map[string]any)
	if tool["role"] != "tool" || tool["tool_call_id"] != "call_1" || tool["content"] != "sunny" {
		t.Errorf("tool message = %v", tool)
	}
}

// TestParseChatResponseData_Basic replays the canonical unary exchange:
// first text, usage counters, and the provider-echoed model.
func TestParseChatResponseData_Basic(t *testing.T) {
	body := []byte(`{
		"choices":[{"message":{"role":"assistant","content":"Hello"}}],
		"usage":{"prompt_tokens":5,"completion_tokens":1,"total_tokens":6},
		"model":"gpt-4o-mini"
	}`)

	response, err := ParseChatResponseData(testTarget("gpt-4o-mini"), &webc.WebResponse{Status: 200, Body: body}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if response.FirstText() != "Hello" {
		t.Errorf("first text = %q", response.FirstText())
	}
	if chat.CountOr(response.Usage.PromptTokens, -1) != 5 ||
		chat.CountOr(response.Usage.CompletionTokens, -1) != 1 ||
		chat.CountOr(response.Usage.TotalTokens, -1) != 6 {
		t.Errorf("usage = %+v", response.Usage)
	}
	if response.ProviderModelIden.Model != "gpt-4o-mini" {
		t.Errorf("provider model = %q", response.ProviderModelIden.Model)
	}
}

// TestParseChatResponseData_ToolCalls verifies tool-call extraction with
// string arguments parsed to JSON.
func TestParseChatResponseData_ToolCalls(t *testing.T) {
	body := []byte(`{
		"choices":[{"message":{"role":"assistant","content":"","tool_calls":[
			{"id":"call_9","type":"function","function":{"name":"lookup","arguments":"{\"q\":\"go\"}"}}
		]},"finish_reason":"tool_calls"}],
		"model":"gpt-4o"
	}`)

	response, err := ParseChatResponseData(testTarget("gpt-4o"), &webc.WebResponse{Status: 200, Body: body}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	calls := response.ToolCalls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d", len(calls))
	}
	if calls[0].CallID != "call_9" || calls[0].FnName != "lookup" || string(calls[0].FnArguments) != `{"q":"go"}` {
		t.Errorf("call = %+v", calls[0])
	}
}

// TestParseChatResponseData_ThinkNormalization covers scenario: inline
// <think> moved to the reasoning channel when normalization is on, and only
// then.
func TestParseChatResponseData_ThinkNormalization(t *testing.T) {
	body := []byte(`{
		"choices":[{"message":{"role":"assistant","content":"<think>plan</think>answer"}}],
		"model":"deepseek-r1"
	}`)
	target := resolver.ServiceTarget{
		Endpoint: resolver.NewEndpoint("http://localhost:11434/v1/"),
		Auth:     resolver.NoAuth(),
		Model:    adapter.NewModelIden(adapter.KindOllama, "deepseek-r1"),
	}

	normalize := true
	opts := &chat.ChatOptions{NormalizeReasoningContent: &normalize}

	response, err := ParseChatResponseData(target, &webc.WebResponse{Status: 200, Body: body}, opts)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if response.FirstText() != "answer" || response.ReasoningContent != "plan" {
		t.Errorf("got (%q, %q)", response.FirstText(), response.ReasoningContent)
	}

	// Off by default: the block stays in the text.
	response, err = ParseChatResponseData(target, &webc.WebResponse{Status: 200, Body: body}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if response.FirstText() != "<think>plan</think>answer" || response.ReasoningContent != "" {
		t.Errorf("got (%q, %q)", response.FirstText(), response.ReasoningContent)
	}
}

// TestNormalizeUsage_Quirks verifies the zero-as-absent rule and the
// xAI reasoning correction.
func TestNormalizeUsage_Quirks(t *testing.T) {
	t.Run("zero counters are absent", func(t *testing.T) {
		normalized := normalizeUsage(adapter.KindOllama, &usage{})
		if !normalized.IsEmpty() {
			t.Errorf("usage = %+v, want empty", normalized)
		}
	})

	t.Run("xai adds reasoning into completion", func(t *testing.T) {
		wire := &usage{PromptTokens: 10, CompletionTokens: 35, TotalTokens: 237}
		wire.CompletionTokensDetails = &struct {
			ReasoningTokens          int32 `json:"reasoning_tokens"`
			AudioTokens              int32 `json:"audio_tokens"`
			AcceptedPredictionTokens int32 `json:"accepted_prediction_tokens"`
			RejectedPredictionTokens int32 `json:"rejected_prediction_tokens"`
		}{ReasoningTokens: 192}

		normalized := normalizeUsage(adapter.KindXai, wire)
		if chat.CountOr(normalized.CompletionTokens, 0) != 227 {
			t.Errorf("completion = %v, want 227", chat.CountOr(normalized.CompletionTokens, 0))
		}
		if normalized.CompletionTokensDetails == nil || *normalized.CompletionTokensDetails.Reasoning != 192 {
			t.Error("reasoning detail lost")
		}
	})

	t.Run("openai passes through", func(t *testing.T) {
		wire := &usage{PromptTokens: 5, CompletionTokens: 1, TotalTokens: 6}
		normalized := normalizeUsage(adapter.KindOpenAI, wire)
		if chat.CountOr(normalized.CompletionTokens, 0) != 1 {
			t.Errorf("completion = %v", normalized.CompletionTokens)
		}
	})
}
