package openairesp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/webc"
)

// respStreamEvent is the envelope of one Responses SSE event. The event kind
// is carried by the type field, mirrored by the SSE event name.
type respStreamEvent struct {
	Type  string `json:"type"`
	Delta string `json:"delta"`

	Item *struct {
		Type      string `json:"type"`
		CallID    string `json:"call_id"`
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"item"`

	Response *struct {
		Usage *respUsage `json:"usage"`
	} `json:"response"`
}

// BuildChatStream converts a Responses API SSE stream into the normalized
// inter-stream.
//
// Responses SSE lifecycle: response.created, then typed deltas
// (response.output_text.delta, response.reasoning_summary_text.delta),
// completed items (response.output_item.done), and finally
// response.completed carrying the usage.
func (Adapter) BuildChatStream(ctx context.Context, res *http.Response, model adapter.ModelIden, opts *chat.ChatOptions) providers.InterStream {
	return func(yield func(providers.InterStreamEvent, error) bool) {
		defer webc.CloseWithLog(res.Body)

		scanner := webc.NewSSEScanner(res.Body)
		sink := providers.NewCaptureSink(opts)

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
				yield(providers.EndEvent(sink.End()), nil)
				return
			}
			if err != nil {
				yield(providers.InterStreamEvent{}, err)
				return
			}

			var event respStreamEvent
			if parseErr := json.Unmarshal([]byte(sseEvent.Data), &event); parseErr != nil {
				yield(providers.InterStreamEvent{}, &providers.StreamParseError{ModelIden: model, Cause: parseErr})
				return
			}
			sink.AddRaw(sseEvent.Data)

			switch event.Type {
			case "response.output_text.delta":
				if event.Delta != "" {
					sink.AddText(event.Delta)
					if !yield(providers.ChunkEvent(event.Delta), nil) {
						return
					}
				}

			case "response.reasoning_summary_text.delta":
				if event.Delta != "" {
					sink.AddReasoning(event.Delta)
					if !yield(providers.ReasoningChunkEvent(event.Delta), nil) {
						return
					}
				}

			case "response.output_item.done":
				// Function-call items are complete at this point, with the
				// full argument string in place.
				if event.Item == nil || event.Item.Type != "function_call" {
					continue
				}
				arguments, argErr := providers.ParseToolArgs(model, event.Item.Arguments)
				if argErr != nil {
					yield(providers.InterStreamEvent{}, argErr)
					return
				}
				toolCall := chat.ToolCall{
					CallID:      providers.EnsureCallID(event.Item.CallID),
					FnName:      event.Item.Name,
					FnArguments: arguments,
				}
				sink.AddToolCall(toolCall)
				if !yield(providers.ToolCallChunkEvent(toolCall), nil) {
					return
				}

			case "response.completed":
				if event.Response != nil && event.Response.Usage != nil {
					sink.SetUsage(normalizeUsage(event.Response.Usage))
				}
				yield(providers.EndEvent(sink.End()), nil)
				return

			case "response.failed", "error":
				yield(providers.InterStreamEvent{}, &providers.StreamParseError{
					ModelIden: model,
					Cause:     fmt.Errorf("provider signaled %s", event.Type),
				})
				return

			default:
				// Item added/in-progress bookkeeping events carry nothing
				// we surface.
			}
		}
	}
}
