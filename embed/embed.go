// Package embed holds the canonical embedding request/response types.
package embed

import (
	"encoding/json"
	"errors"

	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
)

// ErrNoInput is returned at execution time when an EmbedRequest carries no
// input, or a batch contains an empty string.
var ErrNoInput = errors.New("embed request has no input")

// EmbedRequest is a single or batched embedding input.
type EmbedRequest struct {
	// Inputs holds the texts to embed; a single-input request is a batch of
	// one with Single set.
	Inputs []string `json:"inputs"`
	// Single marks a request built from one string, so the response can
	// distinguish single from batch-of-one.
	Single bool `json:"single,omitempty"`
}

// NewEmbedRequest builds a single-input request.
func NewEmbedRequest(input string) EmbedRequest {
	return EmbedRequest{Inputs: []string{input}, Single: true}
}

// NewEmbedBatchRequest builds a batched request.
func NewEmbedBatchRequest(inputs []string) EmbedRequest {
	return EmbedRequest{Inputs: inputs}
}

// Validate checks the invariants required at execution time.
func (r EmbedRequest) Validate() error {
	if len(r.Inputs) == 0 {
		return ErrNoInput
	}
	for _, input := range r.Inputs {
		if input == "" {
			return ErrNoInput
		}
	}
	return nil
}

// EmbedOptions carries the per-request embedding knobs. All optional.
type EmbedOptions struct {
	// Dimensions requests a specific vector size (OpenAI, Gemini).
	Dimensions *int `json:"dimensions,omitempty"`
	// EncodingFormat selects "float" or "base64" where supported.
	EncodingFormat string `json:"encoding_format,omitempty"`
	// User is an end-user identifier passed through to the provider.
	User string `json:"user,omitempty"`
	// EmbeddingType is the Cohere input_type ("search_document",
	// "search_query", "classification", "clustering").
	EmbeddingType string `json:"embedding_type,omitempty"`
	// Truncate is the Cohere truncation strategy ("NONE", "START", "END").
	Truncate string `json:"truncate,omitempty"`

	ExtraHeaders   map[string]string `json:"extra_headers,omitempty"`
	CaptureUsage   bool              `json:"capture_usage,omitempty"`
	CaptureRawBody bool              `json:"capture_raw_body,omitempty"`
}

// MergeEmbedOptions merges defaults under request options, request winning.
func MergeEmbedOptions(defaults, request *EmbedOptions) *EmbedOptions {
	merged := EmbedOptions{}
	if defaults != nil {
		merged = *defaults
	}
	if request == nil {
		return &merged
	}
	if request.Dimensions != nil {
		merged.Dimensions = request.Dimensions
	}
	if request.EncodingFormat != "" {
		merged.EncodingFormat = request.EncodingFormat
	}
	if request.User != "" {
		merged.User = request.User
	}
	if request.EmbeddingType != "" {
		merged.EmbeddingType = request.EmbeddingType
	}
	if request.Truncate != "" {
		merged.Truncate = request.Truncate
	}
	if len(request.ExtraHeaders) > 0 {
		headers := make(map[string]string, len(merged.ExtraHeaders)+len(request.ExtraHeaders))
		for name, value := range merged.ExtraHeaders {
			headers[name] = value
		}
		for name, value := range request.ExtraHeaders {
			headers[name] = value
		}
		merged.ExtraHeaders = headers
	}
	merged.CaptureUsage = merged.CaptureUsage || request.CaptureUsage
	merged.CaptureRawBody = merged.CaptureRawBody || request.CaptureRawBody
	return &merged
}

// Embedding is one embedding vector with its batch index.
type Embedding struct {
	Index  int       `json:"index"`
	Vector []float64 `json:"vector"`
}

// EmbedResponse is the canonical embedding result.
type EmbedResponse struct {
	Embeddings []Embedding `json:"embeddings"`

	ModelIden         adapter.ModelIden `json:"model_iden"`
	ProviderModelIden adapter.ModelIden `json:"provider_model_iden"`

	Usage chat.Usage `json:"usage"`

	CapturedRawBody json.RawMessage `json:"captured_raw_body,omitempty"`
}

// FirstVector returns the first embedding vector, or nil.
func (r *EmbedResponse) FirstVector() []float64 {
	if len(r.Embeddings) == 0 {
		return nil
	}
	return r.Embeddings[0].Vector
}
