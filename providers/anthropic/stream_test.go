package anthropic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/providers"
)

// anthropicSSEHandler writes named SSE events the way the Messages API does.
func anthropicSSEHandler(events ...[2]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, event := range events {
			_, _ = w.Write([]byte("event: " + event[0] + "\ndata: " + event[1] + "\n\n"))
		}
	}
}

func runStream(t *testing.T, handler http.HandlerFunc, opts *chat.ChatOptions) []providers.InterStreamEvent {
	t.Helper()
	server := httptest.NewServer(handler)
	defer server.Close()

	res, err := http.Post(server.URL, "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	stream := Adapter{}.BuildChatStream(context.Background(), res, testTarget("claude-sonnet-4-5").Model, opts)

	var events []providers.InterStreamEvent
	for event, err := range stream {
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		events = append(events, event)
	}
	return events
}

// TestBuildChatStream_TextAndUsage walks the full SSE lifecycle and checks
// that input and output tokens combine into one usage snapshot.
func TestBuildChatStream_TextAndUsage(t *testing.T) {
	events := runStream(t, anthropicSSEHandler(
		[2]string{"message_start", `{"type":"message_start","message":{"model":"claude-sonnet-4-5","usage":{"input_tokens":12,"cache_read_input_tokens":2,"output_tokens":0}}}`},
		[2]string{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text"}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"lo"}}`},
		[2]string{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		[2]string{"message_delta", `{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":7}}`},
		[2]string{"message_stop", `{"type":"message_stop"}`},
	), &chat.ChatOptions{CaptureUsage: true, CaptureContent: true})

	if events[0].Type != chat.StreamEventStart {
		t.Fatalf("first = %q", events[0].Type)
	}
	last := events[len(events)-1]
	if last.Type != chat.StreamEventEnd {
		t.Fatalf("last = %q", last.Type)
	}

	usage := last.End.CapturedUsage
	if usage == nil {
		t.Fatal("usage not captured")
	}
	// 12 input + 2 cache read = 14 prompt; 7 output; 21 total.
	if chat.CountOr(usage.PromptTokens, 0) != 14 ||
		chat.CountOr(usage.CompletionTokens, 0) != 7 ||
		chat.CountOr(usage.TotalTokens, 0) != 21 {
		t.Errorf("usage = %+v", usage)
	}
	if last.End.CapturedContent.FirstText() != "Hello" {
		t.Errorf("captured = %q", last.End.CapturedContent.FirstText())
	}
}

// TestBuildChatStream_ToolAssembly verifies input_json_delta accumulation
// with the assembled call emitted at content_block_stop.
func TestBuildChatStream_ToolAssembly(t *testing.T) {
	events := runStream(t, anthropicSSEHandler(
		[2]string{"message_start", `{"type":"message_start","message":{"usage":{"input_tokens":3}}}`},
		[2]string{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"tc_1","name":"get_weather"}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"loc"}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"ation\":\"Paris\"}"}}`},
		[2]string{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		[2]string{"message_delta", `{"type":"message_delta","delta":{"stop_reason":"tool_use"},"usage":{"output_tokens":9}}`},
		[2]string{"message_stop", `{"type":"message_stop"}`},
	), &chat.ChatOptions{CaptureContent: true})

	var calls []chat.ToolCall
	for _, event := range events {
		if event.Type == chat.StreamEventToolCallChunk {
			calls = append(calls, *event.ToolCall)
		}
	}
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if calls[0].CallID != "tc_1" || calls[0].FnName != "get_weather" ||
		string(calls[0].FnArguments) != `{"location":"Paris"}` {
		t.Errorf("call = %+v", calls[0])
	}
}

// TestBuildChatStream_ThinkingDeltas verifies thinking and signature deltas
// route to their channels.
func TestBuildChatStream_ThinkingDeltas(t *testing.T) {
	events := runStream(t, anthropicSSEHandler(
		[2]string{"message_start", `{"type":"message_start","message":{"usage":{"input_tokens":3}}}`},
		[2]string{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"thinking"}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"thinking_delta","thinking":"pla"}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"thinking_delta","thinking":"n"}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"signature_delta","signature":"sig-1"}}`},
		[2]string{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		[2]string{"message_stop", `{"type":"message_stop"}`},
	), &chat.ChatOptions{CaptureReasoningContent: true, CaptureContent: true})

	var reasoning, signature string
	for _, event := range events {
		switch event.Type {
		case chat.StreamEventReasoningChunk:
			reasoning += event.ReasoningContent
		case chat.StreamEventThoughtSignatureChunk:
			signature += event.ThoughtSignature
		}
	}
	if reasoning != "plan" || signature != "sig-1" {
		t.Errorf("got (%q, %q)", reasoning, signature)
	}

	end := events[len(events)-1].End
	if end.CapturedReasoningContent != "plan" {
		t.Errorf("captured reasoning = %q", end.CapturedReasoningContent)
	}
}
