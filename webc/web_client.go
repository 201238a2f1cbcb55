// Package webc is the HTTP/SSE transport layer. It executes a
// WebRequestData as either a unary JSON call or a streamed byte source, and
// owns the framing strategies (SSE, delimited JSON, incrementally streamed
// JSON arrays) the adapters consume.
package webc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// WebConfig configures the shared HTTP client of a WebClient.
type WebConfig struct {
	// Timeout bounds the full request, including body read. Zero means no
	// library-imposed limit.
	Timeout time.Duration
	// ConnectTimeout bounds connection establishment.
	ConnectTimeout time.Duration
	// ProxyURL routes requests through the given proxy when set.
	ProxyURL string
	// DefaultHeaders are applied to every request, below adapter headers.
	DefaultHeaders map[string]string
}

// WebRequestData is the provider-agnostic description of one HTTP call, as
// produced by an adapter: final URL, headers, and JSON body.
type WebRequestData struct {
	URL     string
	Headers map[string]string
	Body    any
}

// WebResponse is a completed unary response: status plus the full body.
type WebResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// maxResponseBodySize caps body reads (10 MB) so a rogue response cannot
// allocate without bound.
const maxResponseBodySize int64 = 10 * 1024 * 1024

// WebClient executes WebRequestData over a shared http.Client. It is safe
// for concurrent use and cheap to copy: all state lives in the underlying
// http.Client handle.
type WebClient struct {
	httpClient     *http.Client
	defaultHeaders map[string]string
}

// NewWebClient builds a WebClient from a WebConfig.
func NewWebClient(config WebConfig) (*WebClient, error) {
	transport := http.DefaultTransport
	if config.ProxyURL != "" || config.ConnectTimeout > 0 {
		base, ok := http.DefaultTransport.(*http.Transport)
		if !ok {
			return nil, fmt.Errorf("default transport is not an *http.Transport")
		}
		custom := base.Clone()
		if config.ProxyURL != "" {
			proxyURL, err := url.Parse(config.ProxyURL)
			if err != nil {
				return nil, fmt.Errorf("invalid proxy url %q: %w", config.ProxyURL, err)
			}
			custom.Proxy = http.ProxyURL(proxyURL)
		}
		if config.ConnectTimeout > 0 {
			custom.DialContext = (&netDialer{timeout: config.ConnectTimeout}).DialContext
		}
		transport = custom
	}

	return &WebClient{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
		defaultHeaders: config.DefaultHeaders,
	}, nil
}

// DoPost performs a unary JSON POST and returns the response with its body
// fully read. Non-2xx statuses return a *StatusError carrying status, body,
// and headers.
func (wc *WebClient) DoPost(ctx context.Context, data WebRequestData) (*WebResponse, error) {
	jsonBody, err := json.Marshal(data.Body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, data.URL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	wc.applyHeaders(req, data.Headers)
	req.Header.Set("Content-Type", "application/json")

	return wc.do(req)
}

// DoGet performs a unary GET (used for Ollama live model listing).
func (wc *WebClient) DoGet(ctx context.Context, url string, headers map[string]string) (*WebResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	wc.applyHeaders(req, headers)

	return wc.do(req)
}

// DoPostStream performs a POST and returns the raw response with the body
// left open for stream reading. The caller owns closing the body; on error
// paths the body is drained and closed before returning.
func (wc *WebClient) DoPostStream(ctx context.Context, data WebRequestData) (*http.Response, error) {
	jsonBody, err := json.Marshal(data.Body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, data.URL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	wc.applyHeaders(req, data.Headers)
	req.Header.Set("Content-Type", "application/json")
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/event-stream")
	}

	res, err := wc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending stream request: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		defer CloseWithLog(res.Body)
		errorBody, readErr := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
		if readErr != nil {
			return nil, fmt.Errorf("non-2xx status %d (failed to read body: %v)", res.StatusCode, readErr)
		}
		return nil, &StatusError{Status: res.StatusCode, Header: res.Header, Body: errorBody}
	}

	return res, nil
}

// do sends the request, reads the body to completion, and maps non-2xx
// statuses to *StatusError.
func (wc *WebClient) do(req *http.Request) (*WebResponse, error) {
	res, err := wc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer CloseWithLog(res.Body)

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &StatusError{Status: res.StatusCode, Header: res.Header, Body: body}
	}

	return &WebResponse{Status: res.StatusCode, Header: res.Header, Body: body}, nil
}

// applyHeaders sets default headers first, then request headers on top.
func (wc *WebClient) applyHeaders(req *http.Request, headers map[string]string) {
	for name, value := range wc.defaultHeaders {
		req.Header.Set(name, value)
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}
}

// CloseWithLog closes the closer and logs (without overriding any primary
// error) when the close itself fails.
func CloseWithLog(closer io.Closer) {
	if err := closer.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}
