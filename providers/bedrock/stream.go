package bedrock

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/webc"
)

// streamEvent is the union of ConverseStream event payloads; the event kind
// is inferred from which members are present.
type streamEvent struct {
	// messageStart
	Role string `json:"role"`

	// contentBlockStart
	Start *struct {
		ToolUse *struct {
			ToolUseID string `json:"toolUseId"`
			Name      string `json:"name"`
		} `json:"toolUse"`
	} `json:"start"`

	// contentBlockDelta
	Delta *struct {
		Text    string `json:"text"`
		ToolUse *struct {
			Input string `json:"input"`
		} `json:"toolUse"`
		ReasoningContent *struct {
			Text string `json:"text"`
		} `json:"reasoningContent"`
	} `json:"delta"`

	ContentBlockIndex *int `json:"contentBlockIndex"`

	// messageStop
	StopReason string `json:"stopReason"`

	// metadata
	Usage *usage `json:"usage"`
}

// BuildChatStream converts a ConverseStream response (SSE-framed JSON
// events) into the normalized inter-stream. Tool-use input streams as string
// fragments per content block; the fragments of all blocks are buffered and
// the assembled calls are emitted together when messageStop arrives or the
// body ends.
func (Adapter) BuildChatStream(ctx context.Context, res *http.Response, model adapter.ModelIden, opts *chat.ChatOptions) providers.InterStream {
	return func(yield func(providers.InterStreamEvent, error) bool) {
		defer webc.CloseWithLog(res.Body)

		scanner := webc.NewSSEScanner(res.Body)
		sink := providers.NewCaptureSink(opts)
		assembler := providers.ToolCallAssembler{}
		toolIndex := -1

		if !yield(providers.StartEvent(), nil) {
			return
		}

		drainToolCalls := func() bool {
			if !assembler.HasPending() {
				return true
			}
			calls, err := assembler.Drain(model)
			if err != nil {
				yield(providers.InterStreamEvent{}, err)
				return false
			}
			for _, call := range calls {
				sink.AddToolCall(call)
				if !yield(providers.ToolCallChunkEvent(call), nil) {
					return false
				}
			}
			return true
		}

		for {
			if ctx.Err() != nil {
				yield(providers.InterStreamEvent{}, ctx.Err())
				return
			}

			sseEvent, err := scanner.Next()
			if err == io.EOF {
				if !drainToolCalls() {
					return
				}
				yield(providers.EndEvent(sink.End()), nil)
				return
			}
			if err != nil {
				yield(providers.InterStreamEvent{}, err)
				return
			}

			var event streamEvent
			if parseErr := json.Unmarshal([]byte(sseEvent.Data), &event); parseErr != nil {
				yield(providers.InterStreamEvent{}, &providers.StreamParseError{ModelIden: model, Cause: parseErr})
				return
			}
			sink.AddRaw(sseEvent.Data)

			switch {
			case event.Start != nil && event.Start.ToolUse != nil:
				toolIndex++
				assembler.AddFragment(toolIndex, event.Start.ToolUse.ToolUseID, event.Start.ToolUse.Name, "")

			case event.Delta != nil:
				delta := event.Delta
				if delta.ReasoningContent != nil && delta.ReasoningContent.Text != "" {
					sink.AddReasoning(delta.ReasoningContent.Text)
					if !yield(providers.ReasoningChunkEvent(delta.ReasoningContent.Text), nil) {
						return
					}
				}
				if delta.Text != "" {
					sink.AddText(delta.Text)
					if !yield(providers.ChunkEvent(delta.Text), nil) {
						return
					}
				}
				if delta.ToolUse != nil && delta.ToolUse.Input != "" {
					assembler.AddFragment(toolIndex, "", "", delta.ToolUse.Input)
				}

			case event.StopReason != "":
				if !drainToolCalls() {
					return
				}

			case event.Usage != nil:
				sink.SetUsage(normalizeUsage(event.Usage))
				// metadata is the last event of the stream.
				yield(providers.EndEvent(sink.End()), nil)
				return
			}
		}
	}
}
