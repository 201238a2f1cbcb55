package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/providers"
)

// TestBuildChatStream_JSONArray replays an incrementally streamed JSON
// array: Start from "[", chunks per element, cumulative usage resolved at
// End from the last element.
func TestBuildChatStream_JSONArray(t *testing.T) {
	payload := `[
  {"candidates":[{"content":{"role":"model","parts":[{"text":"Hel"}]}}],
   "usageMetadata":{"promptTokenCount":5,"candidatesTokenCount":1,"totalTokenCount":6}},
  {"candidates":[{"content":{"role":"model","parts":[{"text":"lo"}]}}],
   "usageMetadata":{"promptTokenCount":5,"candidatesTokenCount":2,"totalTokenCount":7}}
]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	res, err := http.Post(server.URL, "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	opts := &chat.ChatOptions{CaptureContent: true, CaptureUsage: true}
	stream := Adapter{}.BuildChatStream(context.Background(), res, testTarget("gemini-2.0-flash").Model, opts)

	var events []providers.InterStreamEvent
	for event, err := range stream {
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		events = append(events, event)
	}

	if events[0].Type != chat.StreamEventStart {
		t.Fatalf("first = %q", events[0].Type)
	}

	var text string
	for _, event := range events {
		if event.Type == chat.StreamEventChunk {
			text += event.Content
		}
	}
	if text != "Hello" {
		t.Errorf("text = %q", text)
	}

	last := events[len(events)-1]
	if last.Type != chat.StreamEventEnd {
		t.Fatalf("last = %q", last.Type)
	}
	usage := last.End.CapturedUsage
	// Cumulative semantics: the final element's counts win.
	if usage == nil || chat.CountOr(usage.TotalTokens, 0) != 7 || chat.CountOr(usage.CompletionTokens, 0) != 2 {
		t.Errorf("usage = %+v", usage)
	}
	if last.End.CapturedContent.FirstText() != "Hello" {
		t.Errorf("captured = %q", last.End.CapturedContent.FirstText())
	}
}

// TestBuildChatStream_FunctionCall verifies a streamed function call with a
// thought signature arrives as signature then call.
func TestBuildChatStream_FunctionCall(t *testing.T) {
	payload := `[
  {"candidates":[{"content":{"role":"model","parts":[
    {"functionCall":{"name":"get_weather","args":{"location":"Paris"}},"thoughtSignature":"sig-1"}
  ]}}]}
]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	res, err := http.Post(server.URL, "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	stream := Adapter{}.BuildChatStream(context.Background(), res, testTarget("gemini-2.5-flash").Model, &chat.ChatOptions{CaptureContent: true})

	var types []chat.StreamEventType
	var call *chat.ToolCall
	for event, err := range stream {
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		types = append(types, event.Type)
		if event.Type == chat.StreamEventToolCallChunk {
			call = event.ToolCall
		}
	}

	wantOrder := []chat.StreamEventType{
		chat.StreamEventStart,
		chat.StreamEventThoughtSignatureChunk,
		chat.StreamEventToolCallChunk,
		chat.StreamEventEnd,
	}
	if len(types) != len(wantOrder) {
		t.Fatalf("events = %v", types)
	}
	for i := range wantOrder {
		if types[i] != wantOrder[i] {
			t.Errorf("event[%d] = %q, want %q", i, types[i], wantOrder[i])
		}
	}
	if call == nil || call.FnName != "get_weather" || string(call.FnArguments) != `{"location":"Paris"}` {
		t.Errorf("call = %+v", call)
	}
}
