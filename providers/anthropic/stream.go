package anthropic

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

// BuildChatStream converts an Anthropic SSE response into the normalized
// inter-stream.
//
// Anthropic SSE lifecycle:
//
//	message_start → content_block_start → content_block_delta(s) →
//	content_block_stop → … → message_delta → message_stop
//
// Input tokens arrive on message_start, output tokens on message_delta; the
// two are combined into one usage snapshot. Tool-call arguments stream as
// input_json_delta fragments and are assembled per block, with the complete
// call emitted on content_block_stop.
func (Adapter) BuildChatStream(ctx context.Context, res *http.Response, model adapter.ModelIden, opts *chat.ChatOptions) providers.InterStream {
	return func(yield func(providers.InterStreamEvent, error) bool) {
		defer webc.CloseWithLog(res.Body)

		scanner := webc.NewSSEScanner(res.Body)
		sink := providers.NewCaptureSink(opts)
		assembler := providers.ToolCallAssembler{}

		// Per-stream state. toolIndex numbers tool_use blocks in order of
		// appearance; blockIsTool tracks whether the currently open content
		// block is a tool_use block.
		toolIndex := -1
		blockIsTool := false

		var wireUsage usage

		if !yield(providers.StartEvent(), nil) {
			return
		}

		for {
			if ctx.Err() != nil {
				yield(providers.InterStreamEvent{}, ctx.Err())
				return
			}

			sseEvent, err := scanner.Next()
			if err == io.EOF {
				// message_stop already emitted End; reaching EOF without it
				// still terminates cleanly with the captured snapshot.
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

			switch event.Type {
			case "message_start":
				// Initial usage snapshot: input tokens plus cache counters.
				if event.Message != nil && event.Message.Usage != nil {
					wireUsage = *event.Message.Usage
				}

			case "content_block_start":
				if event.ContentBlock == nil {
					continue
				}
				blockIsTool = event.ContentBlock.Type == "tool_use"
				if blockIsTool {
					// ID and name only appear here, not on the argument
					// deltas that follow.
					toolIndex++
					assembler.AddFragment(toolIndex, event.ContentBlock.ID, event.ContentBlock.Name, "")
				}

			case "content_block_delta":
				if event.Delta == nil {
					continue
				}
				switch event.Delta.Type {
				case "text_delta":
					if event.Delta.Text != "" {
						sink.AddText(event.Delta.Text)
						if !yield(providers.ChunkEvent(event.Delta.Text), nil) {
							return
						}
					}
				case "thinking_delta":
					if event.Delta.Thinking != "" {
						sink.AddReasoning(event.Delta.Thinking)
						if !yield(providers.ReasoningChunkEvent(event.Delta.Thinking), nil) {
							return
						}
					}
				case "signature_delta":
					if event.Delta.Signature != "" {
						sink.AddThoughtSignature(event.Delta.Signature)
						if !yield(providers.ThoughtSignatureChunkEvent(event.Delta.Signature), nil) {
							return
						}
					}
				case "input_json_delta":
					if event.Delta.PartialJSON != "" {
						assembler.AddFragment(toolIndex, "", "", event.Delta.PartialJSON)
					}
				}

			case "content_block_stop":
				// A closing tool_use block is complete; emit the assembled call.
				if blockIsTool {
					calls, drainErr := assembler.Drain(model)
					if drainErr != nil {
						yield(providers.InterStreamEvent{}, drainErr)
						return
					}
					for _, call := range calls {
						sink.AddToolCall(call)
						if !yield(providers.ToolCallChunkEvent(call), nil) {
							return
						}
					}
					blockIsTool = false
				}

			case "message_delta":
				// Final output token count; consolidate the usage snapshot.
				if event.Usage != nil {
					wireUsage.OutputTokens = event.Usage.OutputTokens
				}
				sink.SetUsage(normalizeUsage(&wireUsage))

			case "message_stop":
				yield(providers.EndEvent(sink.End()), nil)
				return

			case "error":
				message := "unknown stream error"
				if event.Error != nil {
					message = event.Error.Message
				}
				yield(providers.InterStreamEvent{}, &providers.StreamParseError{
					ModelIden: model,
					Cause:     &streamError{message: message},
				})
				return

			case "ping":
				// keep-alive

			default:
				// Unknown event types are skipped for forward compatibility.
			}
		}
	}
}

type streamError struct {
	message string
}

func (e *streamError) Error() string { return e.message }
