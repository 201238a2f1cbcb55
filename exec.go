package unigen

import (
	"context"

	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/embed"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/resolver"
)

// ExecChat executes a unary chat completion against the resolved provider.
// opts may be nil; non-nil options merge over the client defaults field by
// field, with the request winning.
func (c *Client) ExecChat(ctx context.Context, model string, req chat.ChatRequest, opts *chat.ChatOptions) (*chat.ChatResponse, error) {
	target, err := c.ResolveServiceTarget(model)
	if err != nil {
		return nil, err
	}
	return c.ExecChatWithTarget(ctx, target, req, opts)
}

// ExecChatWithTarget is ExecChat for an already resolved target.
func (c *Client) ExecChatWithTarget(ctx context.Context, target resolver.ServiceTarget, req chat.ChatRequest, opts *chat.ChatOptions) (*chat.ChatResponse, error) {
	if c.webErr != nil {
		return nil, c.webErr
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	merged := chat.MergeOptions(c.chatDefaults, opts)

	provider, err := providers.Dispatch(target.Model.Kind)
	if err != nil {
		return nil, err
	}

	data, err := provider.BuildChatRequest(target, req, merged, false)
	if err != nil {
		return nil, err
	}

	res, err := c.web.DoPost(ctx, data)
	if err != nil {
		return nil, wrapCallError(target, err)
	}

	return provider.ParseChatResponse(target, res, merged)
}

// ExecChatStream executes a streaming chat completion. The returned stream
// must be consumed; dropping it cancels the underlying connection.
func (c *Client) ExecChatStream(ctx context.Context, model string, req chat.ChatRequest, opts *chat.ChatOptions) (*chat.ChatStreamResponse, error) {
	target, err := c.ResolveServiceTarget(model)
	if err != nil {
		return nil, err
	}
	return c.ExecChatStreamWithTarget(ctx, target, req, opts)
}

// ExecChatStreamWithTarget is ExecChatStream for an already resolved target.
func (c *Client) ExecChatStreamWithTarget(ctx context.Context, target resolver.ServiceTarget, req chat.ChatRequest, opts *chat.ChatOptions) (*chat.ChatStreamResponse, error) {
	if c.webErr != nil {
		return nil, c.webErr
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	merged := chat.MergeOptions(c.chatDefaults, opts)

	provider, err := providers.Dispatch(target.Model.Kind)
	if err != nil {
		return nil, err
	}

	data, err := provider.BuildChatRequest(target, req, merged, true)
	if err != nil {
		return nil, err
	}

	httpRes, err := c.web.DoPostStream(ctx, data)
	if err != nil {
		return nil, wrapCallError(target, err)
	}

	inter := provider.BuildChatStream(ctx, httpRes, target.Model, merged)

	return &chat.ChatStreamResponse{
		Stream:    wrapInterStream(inter),
		ModelIden: target.Model,
	}, nil
}

// wrapInterStream flattens the inter-stream 1:1 into the public stream; the
// mapping is identity apart from converting the terminal snapshot type.
func wrapInterStream(inter providers.InterStream) *chat.ChatStream {
	return chat.NewChatStream(func(yield func(chat.ChatStreamEvent, error) bool) {
		for event, err := range inter {
			if err != nil {
				yield(chat.ChatStreamEvent{}, err)
				return
			}

			public := chat.ChatStreamEvent{
				Type:             event.Type,
				Content:          event.Content,
				ReasoningContent: event.ReasoningContent,
				ThoughtSignature: event.ThoughtSignature,
				ToolCall:         event.ToolCall,
			}
			if event.Type == chat.StreamEventEnd && event.End != nil {
				public.End = &chat.StreamEnd{
					CapturedUsage:            event.End.CapturedUsage,
					CapturedContent:          event.End.CapturedContent,
					CapturedReasoningContent: event.End.CapturedReasoningContent,
					CapturedRawBody:          event.End.CapturedRawBody,
				}
			}
			if !yield(public, nil) {
				return
			}
		}
	})
}

// ExecEmbed executes an embedding request. Adapters without embedding
// support return *adapter.NotSupportedError.
func (c *Client) ExecEmbed(ctx context.Context, model string, req embed.EmbedRequest, opts *embed.EmbedOptions) (*embed.EmbedResponse, error) {
	if c.webErr != nil {
		return nil, c.webErr
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	target, err := c.ResolveServiceTarget(model)
	if err != nil {
		return nil, err
	}
	merged := embed.MergeEmbedOptions(c.embedDefaults, opts)

	provider, err := providers.Dispatch(target.Model.Kind)
	if err != nil {
		return nil, err
	}

	data, err := provider.BuildEmbedRequest(target, req, merged)
	if err != nil {
		return nil, err
	}

	res, err := c.web.DoPost(ctx, data)
	if err != nil {
		return nil, wrapCallError(target, err)
	}

	return provider.ParseEmbedResponse(target, res, merged)
}

// Embed embeds a single text.
func (c *Client) Embed(ctx context.Context, model string, text string, opts *embed.EmbedOptions) (*embed.EmbedResponse, error) {
	return c.ExecEmbed(ctx, model, embed.NewEmbedRequest(text), opts)
}

// EmbedBatch embeds a batch of texts.
func (c *Client) EmbedBatch(ctx context.Context, model string, texts []string, opts *embed.EmbedOptions) (*embed.EmbedResponse, error) {
	return c.ExecEmbed(ctx, model, embed.NewEmbedBatchRequest(texts), opts)
}

// wrapCallError annotates transport and provider-signaled failures with the
// resolved model identity. The cause stays reachable via errors.As, so a
// *webc.StatusError can still be inspected for status, body, and headers.
func wrapCallError(target resolver.ServiceTarget, err error) error {
	return &providers.CallError{ModelIden: target.Model, Cause: err}
}
