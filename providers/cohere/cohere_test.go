package cohere

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

func testTarget(model string) resolver.ServiceTarget {
	return resolver.ServiceTarget{
		Endpoint: resolver.NewEndpoint("https://api.cohere.com/v1/"),
		Auth:     resolver.AuthFromKey("co-key"),
		Model:    adapter.NewModelIden(adapter.KindCohere, model),
	}
}

// TestBuildChatRequest_HistorySplit verifies that the last user message goes
// into the message field, everything before it into chat_history, and the
// system into the preamble.
func TestBuildChatRequest_HistorySplit(t *testing.T) {
	req := chat.NewChatRequest(
		chat.UserMessage("first question"),
		chat.AssistantMessage("first answer"),
		chat.UserMessage("second question"),
	).WithSystem("be brief")

	data, err := Adapter{}.BuildChatRequest(testTarget("command-r"), req, nil, false)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if data.Headers["Authorization"] != "Bearer co-key" {
		t.Errorf("Authorization = %q", data.Headers["Authorization"])
	}

	raw, _ := json.Marshal(data.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	if body["message"] != "second question" {
		t.Errorf("message = %v", body["message"])
	}
	if body["preamble"] != "be brief" {
		t.Errorf("preamble = %v", body["preamble"])
	}
	history := body["chat_history"].([]any)
	if len(history) != 2 {
		t.Fatalf("history = %d entries", len(history))
	}
	first := history[0].(map[string]any)
	second := history[1].(map[string]any)
	if first["role"] != "USER" || second["role"] != "CHATBOT" {
		t.Errorf("history roles = %v, %v", first["role"], second["role"])
	}
}

// TestBuildChatRequest_OptionMapping verifies top_p maps to p.
func TestBuildChatRequest_OptionMapping(t *testing.T) {
	topP := 0.9
	opts := &chat.ChatOptions{TopP: &topP, StopSequences: []string{"END"}}
	req := chat.NewChatRequest(chat.UserMessage("hi"))

	data, err := Adapter{}.BuildChatRequest(testTarget("command-r"), req, opts, false)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	raw, _ := json.Marshal(data.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	if body["p"] != 0.9 {
		t.Errorf("p = %v", body["p"])
	}
	if _, hasTopP := body["top_p"]; hasTopP {
		t.Error("cohere must not send top_p")
	}
}

// TestParseChatResponse verifies text, tool calls, and usage from meta.
func TestParseChatResponse(t *testing.T) {
	body := []byte(`{
		"text":"Hello",
		"tool_calls":[{"name":"lookup","parameters":{"q":"go"}}],
		"meta":{"tokens":{"input_tokens":4,"output_tokens":2}}
	}`)

	response, err := Adapter{}.ParseChatResponse(testTarget("command-r"), &webc.WebResponse{Status: 200, Body: body}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if response.FirstText() != "Hello" {
		t.Errorf("text = %q", response.FirstText())
	}
	calls := response.ToolCalls()
	if len(calls) != 1 || calls[0].FnName != "lookup" {
		t.Errorf("calls = %+v", calls)
	}
	if chat.CountOr(response.Usage.PromptTokens, 0) != 4 ||
		chat.CountOr(response.Usage.CompletionTokens, 0) != 2 ||
		chat.CountOr(response.Usage.TotalTokens, 0) != 6 {
		t.Errorf("usage = %+v", response.Usage)
	}
}

// TestBuildChatStream_NDJSON replays the newline-delimited stream protocol.
func TestBuildChatStream_NDJSON(t *testing.T) {
	payload := `{"is_finished":false,"event_type":"stream-start"}
{"is_finished":false,"event_type":"text-generation","text":"Hel"}
{"is_finished":false,"event_type":"text-generation","text":"lo"}
{"is_finished":true,"event_type":"stream-end","response":{"meta":{"tokens":{"input_tokens":3,"output_tokens":2}}}}
`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	res, err := http.Post(server.URL, "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	opts := &chat.ChatOptions{CaptureContent: true, CaptureUsage: true}
	stream := Adapter{}.BuildChatStream(context.Background(), res, testTarget("command-r").Model, opts)

	var types []chat.StreamEventType
	var text string
	var end *chat.StreamEventType
	var usageTotal int32
	for event, err := range stream {
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		types = append(types, event.Type)
		if event.Type == chat.StreamEventChunk {
			text += event.Content
		}
		if event.Type == chat.StreamEventEnd {
			eventType := event.Type
			end = &eventType
			if event.End.CapturedUsage != nil {
				usageTotal = chat.CountOr(event.End.CapturedUsage.TotalTokens, 0)
			}
		}
	}

	if types[0] != chat.StreamEventStart {
		t.Errorf("first = %q", types[0])
	}
	if text != "Hello" {
		t.Errorf("text = %q", text)
	}
	if end == nil {
		t.Fatal("missing End event")
	}
	if usageTotal != 5 {
		t.Errorf("usage total = %d, want 5", usageTotal)
	}
}
