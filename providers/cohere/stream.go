package cohere

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

// streamMessage is one newline-delimited stream event.
type streamMessage struct {
	EventType string         `json:"event_type"`
	Text      string         `json:"text"`
	ToolCalls []wireToolCall `json:"tool_calls"`
	Response  *struct {
		Meta *meta `json:"meta"`
	} `json:"response"`
}

// BuildChatStream converts a Cohere chat stream into the normalized
// inter-stream. The transport is newline-delimited JSON:
//
//	stream-start → text-generation(s) / tool-calls-generation → stream-end
//
// stream-end carries the final meta with the token counts.
func (Adapter) BuildChatStream(ctx context.Context, res *http.Response, model adapter.ModelIden, opts *chat.ChatOptions) providers.InterStream {
	return func(yield func(providers.InterStreamEvent, error) bool) {
		defer webc.CloseWithLog(res.Body)

		stream := webc.NewDelimiterStream(res.Body, "\n")
		sink := providers.NewCaptureSink(opts)
		started := false

		for {
			if ctx.Err() != nil {
				yield(providers.InterStreamEvent{}, ctx.Err())
				return
			}

			message, err := stream.Next()
			if err == io.EOF {
				yield(providers.EndEvent(sink.End()), nil)
				return
			}
			if err != nil {
				yield(providers.InterStreamEvent{}, err)
				return
			}

			var event streamMessage
			if parseErr := json.Unmarshal([]byte(message), &event); parseErr != nil {
				yield(providers.InterStreamEvent{}, &providers.StreamParseError{ModelIden: model, Cause: parseErr})
				return
			}
			sink.AddRaw(message)

			switch event.EventType {
			case "stream-start":
				started = true
				if !yield(providers.StartEvent(), nil) {
					return
				}

			case "text-generation":
				if !started {
					started = true
					if !yield(providers.StartEvent(), nil) {
						return
					}
				}
				if event.Text != "" {
					sink.AddText(event.Text)
					if !yield(providers.ChunkEvent(event.Text), nil) {
						return
					}
				}

			case "tool-calls-generation":
				// Tool calls arrive fully formed in one event.
				for _, wireCall := range event.ToolCalls {
					arguments := wireCall.Parameters
					if len(arguments) == 0 {
						arguments = json.RawMessage(`{}`)
					}
					toolCall := chat.ToolCall{
						CallID:      wireCall.Name,
						FnName:      wireCall.Name,
						FnArguments: arguments,
					}
					sink.AddToolCall(toolCall)
					if !yield(providers.ToolCallChunkEvent(toolCall), nil) {
						return
					}
				}

			case "stream-end":
				if event.Response != nil {
					sink.SetUsage(normalizeUsage(event.Response.Meta))
				}
				yield(providers.EndEvent(sink.End()), nil)
				return

			default:
				// Other event types carry nothing we surface.
			}
		}
	}
}
