package openai

import (
	"encoding/json"

	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/embed"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

// BuildEmbedRequestData builds the embeddings wire request. Shared by the
// OpenAI-compatible adapters that serve embeddings.
func BuildEmbedRequestData(target resolver.ServiceTarget, req embed.EmbedRequest, opts *embed.EmbedOptions) (webc.WebRequestData, error) {
	body := embedRequest{
		Model: target.Model.Model,
		Input: req.Inputs,
	}
	if opts != nil {
		body.Dimensions = opts.Dimensions
		body.EncodingFormat = opts.EncodingFormat
		body.User = opts.User
	}

	data := webc.WebRequestData{
		URL:     target.Endpoint.JoinPath(embeddingsPath),
		Headers: map[string]string{},
		Body:    body,
	}
	if err := applyBearerAuth(&data, target); err != nil {
		return webc.WebRequestData{}, err
	}
	if opts != nil {
		providers.ApplyExtraHeaders(&data, opts.ExtraHeaders)
	}
	return data, nil
}

// ParseEmbedResponseData normalizes an embeddings response body.
func ParseEmbedResponseData(target resolver.ServiceTarget, res *webc.WebResponse, opts *embed.EmbedOptions) (*embed.EmbedResponse, error) {
	var body embedResponse
	if err := json.Unmarshal(res.Body, &body); err != nil {
		return nil, &providers.ResponseParseError{ModelIden: target.Model, Body: res.Body, Cause: err}
	}
	if len(body.Data) == 0 {
		return nil, &providers.NoResponseError{ModelIden: target.Model}
	}

	response := &embed.EmbedResponse{
		ModelIden:         target.Model,
		ProviderModelIden: target.Model.WithModel(body.Model),
	}
	for _, item := range body.Data {
		// Only float vectors are decoded; base64 encoding_format arrives as
		// a JSON string and fails here with a typed error.
		var vector []float64
		if err := json.Unmarshal(item.Embedding, &vector); err != nil {
			return nil, &providers.InvalidJSONElementError{ModelIden: target.Model, Element: "embedding", Cause: err}
		}
		response.Embeddings = append(response.Embeddings, embed.Embedding{Index: item.Index, Vector: vector})
	}

	if body.Usage != nil {
		response.Usage = chat.Usage{
			PromptTokens: chat.Count(body.Usage.PromptTokens),
			TotalTokens:  chat.Count(body.Usage.TotalTokens),
		}
	}
	if opts != nil && opts.CaptureRawBody {
		response.CapturedRawBody = json.RawMessage(res.Body)
	}
	return response, nil
}
