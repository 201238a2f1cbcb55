package unigen

import (
	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/embed"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

// Client is the public façade: it resolves model references to service
// targets, builds provider requests through the dispatched adapter, and
// executes them over a shared HTTP client.
//
// A Client is safe for concurrent use. It holds no per-request state: only
// the HTTP client handle, the default options, and the resolver hooks.
type Client struct {
	web           *webc.WebClient
	webErr        error
	chatDefaults  *chat.ChatOptions
	embedDefaults *embed.EmbedOptions

	modelMapper    resolver.ModelMapper
	authResolver   resolver.AuthResolver
	targetResolver resolver.ServiceTargetResolver
}

// NewClient builds a client with the default transport configuration.
// Configure it by chaining With* methods:
//
//	client := unigen.NewClient().
//	    WithWebConfig(webc.WebConfig{Timeout: 60 * time.Second}).
//	    WithDefaultChatOptions(&chat.ChatOptions{Temperature: &temp})
func NewClient() *Client {
	web, err := webc.NewWebClient(webc.WebConfig{})
	return &Client{web: web, webErr: err}
}

// WithWebConfig replaces the transport configuration. A configuration error
// (such as an invalid proxy URL) is surfaced by the next request.
func (c *Client) WithWebConfig(config webc.WebConfig) *Client {
	c.web, c.webErr = webc.NewWebClient(config)
	return c
}

// WithDefaultChatOptions sets client-level chat defaults. Request options
// merge over them field by field, with the request winning.
func (c *Client) WithDefaultChatOptions(opts *chat.ChatOptions) *Client {
	c.chatDefaults = opts
	return c
}

// WithDefaultEmbedOptions sets client-level embedding defaults.
func (c *Client) WithDefaultEmbedOptions(opts *embed.EmbedOptions) *Client {
	c.embedDefaults = opts
	return c
}

// WithModelMapper installs a hook that may rewrite the inferred model
// identity (adapter and/or name) before defaults apply.
func (c *Client) WithModelMapper(mapper resolver.ModelMapper) *Client {
	c.modelMapper = mapper
	return c
}

// WithAuthResolver installs a hook that may supply auth per model,
// overriding the adapter's default env-var lookup.
func (c *Client) WithAuthResolver(auth resolver.AuthResolver) *Client {
	c.authResolver = auth
	return c
}

// WithServiceTargetResolver installs a hook that may rewrite the fully
// resolved target (endpoint, auth, model).
func (c *Client) WithServiceTargetResolver(targetResolver resolver.ServiceTargetResolver) *Client {
	c.targetResolver = targetResolver
	return c
}
