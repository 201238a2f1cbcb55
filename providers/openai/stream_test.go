package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/providers"
)

// sseHandler writes the given data payloads as SSE events followed by the
// [DONE] sentinel.
func sseHandler(payloads ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, payload := range payloads {
			_, _ = w.Write([]byte("data: " + payload + "\n\n"))
		}
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	}
}

// openStream POSTs to the server and returns the inter-stream.
func openStream(t *testing.T, server *httptest.Server, opts *chat.ChatOptions) providers.InterStream {
	t.Helper()
	res, err := http.Post(server.URL, "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	return Adapter{}.BuildChatStream(context.Background(), res, testTarget("gpt-4o-mini").Model, opts)
}

// collect consumes the stream into events, failing the test on a stream
// error.
func collect(t *testing.T, stream providers.InterStream) []providers.InterStreamEvent {
	t.Helper()
	var events []providers.InterStreamEvent
	for event, err := range stream {
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		events = append(events, event)
	}
	return events
}

// TestBuildStreamEvents_TextChunks verifies ordering (Start first, End
// last) and content capture.
func TestBuildStreamEvents_TextChunks(t *testing.T) {
	server := httptest.NewServer(sseHandler(
		`{"choices":[{"delta":{"content":"Hel"}}]}`,
		`{"choices":[{"delta":{"content":"lo"}}]}`,
		`{"choices":[{"delta":{},"finish_reason":"stop"}],"usage":{"prompt_tokens":5,"completion_tokens":2,"total_tokens":7}}`,
	))
	defer server.Close()

	opts := &chat.ChatOptions{CaptureContent: true, CaptureUsage: true}
	events := collect(t, openStream(t, server, opts))

	if events[0].Type != chat.StreamEventStart {
		t.Fatalf("first event = %q, want start", events[0].Type)
	}
	last := events[len(events)-1]
	if last.Type != chat.StreamEventEnd {
		t.Fatalf("last event = %q, want end", last.Type)
	}

	var text string
	for _, event := range events {
		if event.Type == chat.StreamEventChunk {
			text += event.Content
		}
	}
	if text != "Hello" {
		t.Errorf("streamed text = %q", text)
	}

	end := last.End
	if end.CapturedContent.FirstText() != "Hello" {
		t.Errorf("captured = %q", end.CapturedContent.FirstText())
	}
	if end.CapturedUsage == nil || chat.CountOr(end.CapturedUsage.TotalTokens, 0) != 7 {
		t.Errorf("captured usage = %+v", end.CapturedUsage)
	}
}

// TestBuildStreamEvents_ToolCallAssembly replays the typical tool-call
// fragment sequence: name first, then the argument string split across two
// deltas, closed by finish_reason tool_calls.
func TestBuildStreamEvents_ToolCallAssembly(t *testing.T) {
	server := httptest.NewServer(sseHandler(
		`{"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","function":{"name":"get_weather"}}]}}]}`,
		`{"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"lo"}}]}}]}`,
		`{"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"cation\":\"Paris\"}"}}]}}]}`,
		`{"choices":[{"delta":{},"finish_reason":"tool_calls"}]}`,
	))
	defer server.Close()

	events := collect(t, openStream(t, server, &chat.ChatOptions{CaptureContent: true}))

	var toolCalls []chat.ToolCall
	for _, event := range events {
		if event.Type == chat.StreamEventToolCallChunk {
			toolCalls = append(toolCalls, *event.ToolCall)
		}
	}
	if len(toolCalls) != 1 {
		t.Fatalf("tool calls = %d, want exactly 1", len(toolCalls))
	}
	call := toolCalls[0]
	if call.FnName != "get_weather" || string(call.FnArguments) != `{"location":"Paris"}` {
		t.Errorf("call = %+v", call)
	}

	if events[len(events)-1].Type != chat.StreamEventEnd {
		t.Error("End must follow the tool call")
	}
}

// TestBuildStreamEvents_ReasoningNormalization verifies <think> re-routing
// with the tag split across deltas.
func TestBuildStreamEvents_ReasoningNormalization(t *testing.T) {
	server := httptest.NewServer(sseHandler(
		`{"choices":[{"delta":{"content":"<thi"}}]}`,
		`{"choices":[{"delta":{"content":"nk>plan</think>ans"}}]}`,
		`{"choices":[{"delta":{"content":"wer"}}]}`,
	))
	defer server.Close()

	normalize := true
	opts := &chat.ChatOptions{
		NormalizeReasoningContent: &normalize,
		CaptureContent:            true,
		CaptureReasoningContent:   true,
	}
	events := collect(t, openStream(t, server, opts))

	var text, reasoning string
	for _, event := range events {
		switch event.Type {
		case chat.StreamEventChunk:
			text += event.Content
		case chat.StreamEventReasoningChunk:
			reasoning += event.ReasoningContent
		}
	}
	if text != "answer" || reasoning != "plan" {
		t.Errorf("got (%q, %q)", text, reasoning)
	}

	end := events[len(events)-1].End
	if end.CapturedReasoningContent != "plan" {
		t.Errorf("captured reasoning = %q", end.CapturedReasoningContent)
	}
}

// TestBuildStreamEvents_ConsumerBreak verifies that breaking out of the
// stream early stops event production; no End is observed after the break.
func TestBuildStreamEvents_ConsumerBreak(t *testing.T) {
	server := httptest.NewServer(sseHandler(
		`{"choices":[{"delta":{"content":"He"}}]}`,
		`{"choices":[{"delta":{"content":"llo"}}]}`,
	))
	defer server.Close()

	stream := openStream(t, server, &chat.ChatOptions{CaptureContent: true})

	var seen []chat.StreamEventType
	for event, err := range stream {
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		seen = append(seen, event.Type)
		if event.Type == chat.StreamEventChunk {
			break
		}
	}

	if len(seen) != 2 || seen[0] != chat.StreamEventStart || seen[1] != chat.StreamEventChunk {
		t.Errorf("events before break = %v", seen)
	}
}

// TestBuildStreamEvents_ContextCancel verifies that a canceled context
// terminates the stream with an error and no End event.
func TestBuildStreamEvents_ContextCancel(t *testing.T) {
	server := httptest.NewServer(sseHandler(
		`{"choices":[{"delta":{"content":"He"}}]}`,
	))
	defer server.Close()

	res, err := http.Post(server.URL, "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream := Adapter{}.BuildChatStream(ctx, res, testTarget("gpt-4o-mini").Model, nil)

	sawError := false
	for event, err := range stream {
		if err != nil {
			sawError = true
			break
		}
		if event.Type == chat.StreamEventEnd {
			t.Fatal("no End may be emitted after cancellation")
		}
	}
	if !sawError {
		t.Error("expected a stream error after cancellation")
	}
}
