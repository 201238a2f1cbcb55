package chat

import (
	"encoding/json"
	"iter"

	"github.com/unigenai/unigen/adapter"
)

/*
	##### STREAM EVENTS #####
*/

// StreamEventType identifies the kind of payload carried by a ChatStreamEvent.
type StreamEventType string

const (
	// StreamEventStart opens the stream; exactly one per stream, before any
	// content event.
	StreamEventStart StreamEventType = "start"
	// StreamEventChunk is a text content delta.
	StreamEventChunk StreamEventType = "chunk"
	// StreamEventReasoningChunk is a reasoning/thinking delta.
	StreamEventReasoningChunk StreamEventType = "reasoning_chunk"
	// StreamEventThoughtSignatureChunk is an opaque reasoning-trace delta.
	StreamEventThoughtSignatureChunk StreamEventType = "thought_signature_chunk"
	// StreamEventToolCallChunk is one fully assembled tool call.
	StreamEventToolCallChunk StreamEventType = "tool_call_chunk"
	// StreamEventEnd closes the stream; at most one, always last when emitted.
	StreamEventEnd StreamEventType = "end"
)

// ChatStreamEvent is one event of a chat stream. Exactly one payload field is
// set, according to Type.
type ChatStreamEvent struct {
	Type StreamEventType `json:"type"`

	Content          string    `json:"content,omitempty"`
	ReasoningContent string    `json:"reasoning_content,omitempty"`
	ThoughtSignature string    `json:"thought_signature,omitempty"`
	ToolCall         *ToolCall `json:"tool_call,omitempty"`
	End              *StreamEnd `json:"end,omitempty"`
}

// StreamEnd is the terminal snapshot of a stream. The captured fields are
// populated according to the capture flags of the request options.
type StreamEnd struct {
	CapturedUsage *Usage `json:"captured_usage,omitempty"`
	// CapturedContent concatenates all content-bearing events in emission
	// order, with adjacent same-kind text runs merged into single parts.
	CapturedContent          MessageContent  `json:"captured_content,omitempty"`
	CapturedReasoningContent string          `json:"captured_reasoning_content,omitempty"`
	CapturedRawBody          json.RawMessage `json:"captured_raw_body,omitempty"`
}

// CapturedFirstText returns the first captured text part, or "".
func (e *StreamEnd) CapturedFirstText() string { return e.CapturedContent.FirstText() }

// CapturedTexts returns all captured text parts in order.
func (e *StreamEnd) CapturedTexts() []string { return e.CapturedContent.Texts() }

// CapturedToolCalls returns all captured tool calls in order.
func (e *StreamEnd) CapturedToolCalls() []ToolCall { return e.CapturedContent.ToolCalls() }

// IntoAssistantMessage converts the captured content into an assistant
// message for the next conversation turn, preserving the
// thought-signature → tool-call ordering required by Gemini and Anthropic.
func (e *StreamEnd) IntoAssistantMessage() ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: e.CapturedContent}
}

/*
	##### STREAM #####
*/

// ChatStream is a single-consumer, strictly ordered pull stream of chat
// events. Start precedes all content events; End, when reached, is last. A
// transport error terminates the stream through the iterator's error channel
// with no End event.
//
// Callers must consume the stream (including breaking out of the loop
// early): the producer holds the HTTP response body open until the iterator
// completes or is abandoned via a loop break, and dropping the iterator
// cancels the underlying connection.
type ChatStream struct {
	events iter.Seq2[ChatStreamEvent, error]
}

// NewChatStream wraps a raw event iterator.
func NewChatStream(events iter.Seq2[ChatStreamEvent, error]) *ChatStream {
	return &ChatStream{events: events}
}

// Events returns the underlying iterator for range-over-func loops.
//
//	for event, err := range stream.Events() {
//	    if err != nil { … }
//	    fmt.Print(event.Content)
//	}
func (s *ChatStream) Events() iter.Seq2[ChatStreamEvent, error] {
	return s.events
}

// End consumes the remainder of the stream and returns the terminal
// StreamEnd snapshot. Returns the first mid-stream error, if any; the
// snapshot is nil when the stream errored before End.
func (s *ChatStream) End() (*StreamEnd, error) {
	var end *StreamEnd
	for event, err := range s.events {
		if err != nil {
			return nil, err
		}
		if event.Type == StreamEventEnd {
			end = event.End
		}
	}
	if end == nil {
		end = &StreamEnd{}
	}
	return end, nil
}

// ChatStreamResponse pairs a stream with the resolved model identity.
type ChatStreamResponse struct {
	Stream    *ChatStream
	ModelIden adapter.ModelIden
}
