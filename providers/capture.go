package providers

import (
	"encoding/json"
	"strings"

	"github.com/unigenai/unigen/chat"
)

// CaptureSink accumulates stream events into the terminal InterStreamEnd
// snapshot according to the capture flags. Consecutive deltas of the same
// kind merge into a single content part, so the captured content mirrors the
// part structure a unary response would have had.
type CaptureSink struct {
	captureContent   bool
	captureReasoning bool
	captureToolCalls bool
	captureUsage     bool
	captureRaw       bool

	content   chat.MessageContent
	reasoning strings.Builder
	usage     *chat.Usage
	rawEvents []json.RawMessage
}

// NewCaptureSink builds a sink from the request options.
func NewCaptureSink(opts *chat.ChatOptions) *CaptureSink {
	sink := &CaptureSink{}
	if opts != nil {
		sink.captureContent = opts.CaptureContent
		sink.captureReasoning = opts.CaptureReasoningContent
		sink.captureToolCalls = opts.CaptureToolCalls || opts.CaptureContent
		sink.captureUsage = opts.CaptureUsage
		sink.captureRaw = opts.CaptureRawBody
	}
	return sink
}

// AddRaw records one raw provider event payload; the terminal snapshot
// carries them as a JSON array. Non-JSON payloads are skipped.
func (cs *CaptureSink) AddRaw(payload string) {
	if !cs.captureRaw || !json.Valid([]byte(payload)) {
		return
	}
	cs.rawEvents = append(cs.rawEvents, json.RawMessage(payload))
}

// AddText appends a text delta, merging into a trailing text part.
func (cs *CaptureSink) AddText(text string) {
	if !cs.captureContent || text == "" {
		return
	}
	if n := len(cs.content); n > 0 && cs.content[n-1].Type == chat.ContentTypeText {
		cs.content[n-1].Text += text
		return
	}
	cs.content = append(cs.content, chat.NewTextPart(text))
}

// AddReasoning appends a reasoning delta.
func (cs *CaptureSink) AddReasoning(text string) {
	if !cs.captureReasoning || text == "" {
		return
	}
	cs.reasoning.WriteString(text)
}

// AddThoughtSignature appends a thought-signature delta, merging into a
// trailing signature part.
func (cs *CaptureSink) AddThoughtSignature(signature string) {
	if !cs.captureContent || signature == "" {
		return
	}
	if n := len(cs.content); n > 0 && cs.content[n-1].Type == chat.ContentTypeThoughtSignature {
		cs.content[n-1].ThoughtSignature += signature
		return
	}
	cs.content = append(cs.content, chat.NewThoughtSignaturePart(signature))
}

// AddToolCall appends an assembled tool call.
func (cs *CaptureSink) AddToolCall(toolCall chat.ToolCall) {
	if !cs.captureToolCalls {
		return
	}
	cs.content = append(cs.content, chat.NewToolCallPart(toolCall))
}

// SetUsage records the latest usage snapshot (last value wins, which also
// covers providers whose per-event usage is cumulative).
func (cs *CaptureSink) SetUsage(usage chat.Usage) {
	if !cs.captureUsage {
		return
	}
	cs.usage = &usage
}

// End produces the terminal snapshot from everything accumulated.
func (cs *CaptureSink) End() *InterStreamEnd {
	end := &InterStreamEnd{
		CapturedUsage: cs.usage,
	}
	if cs.captureContent || cs.captureToolCalls {
		end.CapturedContent = cs.content
	}
	if cs.captureReasoning {
		end.CapturedReasoningContent = cs.reasoning.String()
	}
	if cs.captureRaw && len(cs.rawEvents) > 0 {
		if raw, err := json.Marshal(cs.rawEvents); err == nil {
			end.CapturedRawBody = raw
		}
	}
	return end
}
