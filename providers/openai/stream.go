package openai

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

// BuildChatStream implements the streaming half of the adapter.
func (Adapter) BuildChatStream(ctx context.Context, res *http.Response, model adapter.ModelIden, opts *chat.ChatOptions) providers.InterStream {
	return BuildStreamEvents(ctx, res, model, opts)
}

// BuildStreamEvents converts a chat-completions SSE response into the
// normalized inter-stream. It is shared by every OpenAI-compatible adapter.
//
// Chat-completions SSE lifecycle: a sequence of chunk objects with choice
// deltas, an optional trailing usage-only chunk, then the [DONE] sentinel.
// Tool-call fragments are buffered per index and emitted as fully assembled
// calls when the provider signals completion for the choice.
func BuildStreamEvents(ctx context.Context, res *http.Response, model adapter.ModelIden, opts *chat.ChatOptions) providers.InterStream {
	return func(yield func(providers.InterStreamEvent, error) bool) {
		defer webc.CloseWithLog(res.Body)

		scanner := webc.NewSSEScanner(res.Body)
		sink := providers.NewCaptureSink(opts)
		assembler := providers.ToolCallAssembler{}

		var splitter *providers.ThinkSplitter
		if opts.NormalizeReasoning() {
			splitter = &providers.ThinkSplitter{}
		}

		// Start is emitted on subscription, before any content.
		if !yield(providers.StartEvent(), nil) {
			return
		}

		// drainToolCalls finalizes buffered fragments into ToolCallChunk
		// events. Returns false when the consumer stopped.
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
			// Respect cancellation between SSE reads.
			if ctx.Err() != nil {
				yield(providers.InterStreamEvent{}, ctx.Err())
				return
			}

			event, err := scanner.Next()
			if err == io.EOF {
				// End of stream ([DONE] or body end). Flush any buffered
				// partial-tag text and pending tool calls, then finish.
				if splitter != nil {
					text, reasoning := splitter.Flush()
					if text != "" {
						sink.AddText(text)
						if !yield(providers.ChunkEvent(text), nil) {
							return
						}
					}
					if reasoning != "" {
						sink.AddReasoning(reasoning)
						if !yield(providers.ReasoningChunkEvent(reasoning), nil) {
							return
						}
					}
				}
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

			var chunk streamChunk
			if parseErr := json.Unmarshal([]byte(event.Data), &chunk); parseErr != nil {
				yield(providers.InterStreamEvent{}, &providers.StreamParseError{ModelIden: model, Cause: parseErr})
				return
			}
			sink.AddRaw(event.Data)

			// Usage may arrive on any chunk; keep the latest value. Groq
			// delivers it under x_groq on the final content chunk.
			if chunk.Usage != nil {
				sink.SetUsage(normalizeUsage(model.Kind, chunk.Usage))
			} else if chunk.XGroq != nil && chunk.XGroq.Usage != nil {
				sink.SetUsage(normalizeUsage(model.Kind, chunk.XGroq.Usage))
			}

			for _, choice := range chunk.Choices {
				delta := choice.Delta

				if delta.ReasoningContent != "" {
					sink.AddReasoning(delta.ReasoningContent)
					if !yield(providers.ReasoningChunkEvent(delta.ReasoningContent), nil) {
						return
					}
				}

				if delta.Content != "" {
					text, reasoning := delta.Content, ""
					if splitter != nil {
						text, reasoning = splitter.Split(delta.Content)
					}
					if reasoning != "" {
						sink.AddReasoning(reasoning)
						if !yield(providers.ReasoningChunkEvent(reasoning), nil) {
							return
						}
					}
					if text != "" {
						sink.AddText(text)
						if !yield(providers.ChunkEvent(text), nil) {
							return
						}
					}
				}

				for _, toolDelta := range delta.ToolCalls {
					assembler.AddFragment(toolDelta.Index, toolDelta.ID, toolDelta.Function.Name, toolDelta.Function.Arguments)
				}

				// The finish reason closes the choice; buffered tool calls
				// are complete at this point.
				if choice.FinishReason != "" {
					if !drainToolCalls() {
						return
					}
				}
			}
		}
	}
}
