package gemini

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

// BuildChatStream converts a streamGenerateContent response into the
// normalized inter-stream.
//
// Gemini does not use SSE here: the body is one JSON array delivered
// incrementally, each element a full generateContent response with the next
// slice of candidate parts. The "[" and "]" frames map to Start and End.
//
// Per-event usage is treated as cumulative (the last value wins); this
// matches observed API behavior but is not documented by Google.
func (Adapter) BuildChatStream(ctx context.Context, res *http.Response, model adapter.ModelIden, opts *chat.ChatOptions) providers.InterStream {
	return func(yield func(providers.InterStreamEvent, error) bool) {
		defer webc.CloseWithLog(res.Body)

		stream := webc.NewPrettyJSONArrayStream(res.Body)
		sink := providers.NewCaptureSink(opts)

		for {
			if ctx.Err() != nil {
				yield(providers.InterStreamEvent{}, ctx.Err())
				return
			}

			message, err := stream.Next()
			if err == io.EOF {
				// A well-formed array ends with "]", already mapped to End;
				// a truncated body still terminates with the snapshot.
				yield(providers.EndEvent(sink.End()), nil)
				return
			}
			if err != nil {
				yield(providers.InterStreamEvent{}, err)
				return
			}

			switch message {
			case "[":
				if !yield(providers.StartEvent(), nil) {
					return
				}
				continue
			case "]":
				yield(providers.EndEvent(sink.End()), nil)
				return
			}

			var block chatResponse
			if parseErr := json.Unmarshal([]byte(message), &block); parseErr != nil {
				yield(providers.InterStreamEvent{}, &providers.StreamParseError{ModelIden: model, Cause: parseErr})
				return
			}
			sink.AddRaw(message)

			if block.UsageMetadata != nil {
				sink.SetUsage(normalizeUsage(block.UsageMetadata))
			}

			if len(block.Candidates) == 0 || block.Candidates[0].Content == nil {
				continue
			}

			for _, p := range block.Candidates[0].Parts() {
				if p.ThoughtSignature != "" {
					sink.AddThoughtSignature(p.ThoughtSignature)
					if !yield(providers.ThoughtSignatureChunkEvent(p.ThoughtSignature), nil) {
						return
					}
				}

				switch {
				case p.FunctionCall != nil:
					arguments := p.FunctionCall.Args
					if len(arguments) == 0 {
						arguments = json.RawMessage(`{}`)
					}
					toolCall := chat.ToolCall{
						CallID:      p.FunctionCall.Name,
						FnName:      p.FunctionCall.Name,
						FnArguments: arguments,
					}
					if p.ThoughtSignature != "" {
						toolCall.ThoughtSignatures = []string{p.ThoughtSignature}
					}
					sink.AddToolCall(toolCall)
					if !yield(providers.ToolCallChunkEvent(toolCall), nil) {
						return
					}

				case p.Thought:
					if p.Text != "" {
						sink.AddReasoning(p.Text)
						if !yield(providers.ReasoningChunkEvent(p.Text), nil) {
							return
						}
					}

				case p.Text != "":
					sink.AddText(p.Text)
					if !yield(providers.ChunkEvent(p.Text), nil) {
						return
					}
				}
			}
		}
	}
}

// Parts returns the candidate's parts, tolerating a nil content.
func (c candidate) Parts() []part {
	if c.Content == nil {
		return nil
	}
	return c.Content.Parts
}
