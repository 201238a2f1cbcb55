package providers

import (
	"encoding/json"
	"iter"

	"github.com/unigenai/unigen/chat"
)

// InterStreamEvent is the adapter-emitted stream event, before the client
// flattens it into the public chat stream. The shape mirrors
// chat.ChatStreamEvent; keeping a separate layer lets adapters carry data
// that never surfaces publicly.
type InterStreamEvent struct {
	Type chat.StreamEventType

	Content          string
	ReasoningContent string
	ThoughtSignature string
	ToolCall         *chat.ToolCall
	End              *InterStreamEnd
}

// InterStreamEnd is the terminal inter-stream snapshot, filled according to
// the capture flags in effect.
type InterStreamEnd struct {
	CapturedUsage            *chat.Usage
	CapturedContent          chat.MessageContent
	CapturedReasoningContent string
	CapturedRawBody          json.RawMessage
}

// InterStream is the normalized event sequence an adapter produces from a
// provider byte stream. Single consumer, strictly ordered: Start first, End
// last when reached; a transport error terminates the sequence through the
// error channel with no End.
type InterStream = iter.Seq2[InterStreamEvent, error]

// StartEvent builds the stream-open event.
func StartEvent() InterStreamEvent {
	return InterStreamEvent{Type: chat.StreamEventStart}
}

// ChunkEvent builds a text delta event.
func ChunkEvent(text string) InterStreamEvent {
	return InterStreamEvent{Type: chat.StreamEventChunk, Content: text}
}

// ReasoningChunkEvent builds a reasoning delta event.
func ReasoningChunkEvent(text string) InterStreamEvent {
	return InterStreamEvent{Type: chat.StreamEventReasoningChunk, ReasoningContent: text}
}

// ThoughtSignatureChunkEvent builds a thought-signature delta event.
func ThoughtSignatureChunkEvent(signature string) InterStreamEvent {
	return InterStreamEvent{Type: chat.StreamEventThoughtSignatureChunk, ThoughtSignature: signature}
}

// ToolCallChunkEvent builds a fully assembled tool-call event.
func ToolCallChunkEvent(toolCall chat.ToolCall) InterStreamEvent {
	return InterStreamEvent{Type: chat.StreamEventToolCallChunk, ToolCall: &toolCall}
}

// EndEvent builds the terminal event.
func EndEvent(end *InterStreamEnd) InterStreamEvent {
	if end == nil {
		end = &InterStreamEnd{}
	}
	return InterStreamEvent{Type: chat.StreamEventEnd, End: end}
}
