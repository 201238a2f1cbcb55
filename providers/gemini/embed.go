package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/embed"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

type embedContent struct {
	Parts []part `json:"parts"`
}

type embedEntry struct {
	Model                string       `json:"model,omitempty"`
	Content              embedContent `json:"content"`
	OutputDimensionality *int         `json:"outputDimensionality,omitempty"`
}

type batchEmbedRequest struct {
	Requests []embedEntry `json:"requests"`
}

type embedValues struct {
	Values []float64 `json:"values"`
}

type embedResponseBody struct {
	Embedding  *embedValues  `json:"embedding"`
	Embeddings []embedValues `json:"embeddings"`
}

// BuildEmbedRequest builds an embedContent (single) or batchEmbedContents
// request; the mode is path-encoded like the chat actions.
func (Adapter) BuildEmbedRequest(target resolver.ServiceTarget, req embed.EmbedRequest, opts *embed.EmbedOptions) (webc.WebRequestData, error) {
	var body any
	action := "embedContent"

	var dimensions *int
	if opts != nil {
		dimensions = opts.Dimensions
	}

	if req.Single && len(req.Inputs) == 1 {
		body = embedEntry{
			Content:              embedContent{Parts: []part{{Text: req.Inputs[0]}}},
			OutputDimensionality: dimensions,
		}
	} else {
		action = "batchEmbedContents"
		batch := batchEmbedRequest{}
		for _, input := range req.Inputs {
			batch.Requests = append(batch.Requests, embedEntry{
				// Batch entries must repeat the model, path-prefixed.
				Model:                "models/" + target.Model.Model,
				Content:              embedContent{Parts: []part{{Text: input}}},
				OutputDimensionality: dimensions,
			})
		}
		body = batch
	}

	data := webc.WebRequestData{
		URL:     target.Endpoint.JoinPath(fmt.Sprintf("models/%s:%s", target.Model.Model, action)),
		Headers: map[string]string{},
		Body:    body,
	}

	if target.Auth.Kind == resolver.AuthRequestOverride {
		providers.ApplyAuthOverride(&data, target.Auth)
	} else {
		key, err := target.Auth.SingleKey()
		if err != nil {
			return webc.WebRequestData{}, err
		}
		data.Headers["x-goog-api-key"] = key
	}
	if opts != nil {
		providers.ApplyExtraHeaders(&data, opts.ExtraHeaders)
	}

	return data, nil
}

// ParseEmbedResponse normalizes either response shape. Gemini reports no
// token usage for embeddings.
func (Adapter) ParseEmbedResponse(target resolver.ServiceTarget, res *webc.WebResponse, opts *embed.EmbedOptions) (*embed.EmbedResponse, error) {
	var body embedResponseBody
	if err := json.Unmarshal(res.Body, &body); err != nil {
		return nil, &providers.ResponseParseError{ModelIden: target.Model, Body: res.Body, Cause: err}
	}

	response := &embed.EmbedResponse{
		ModelIden:         target.Model,
		ProviderModelIden: target.Model,
		Usage:             chat.Usage{},
	}

	switch {
	case body.Embedding != nil:
		response.Embeddings = []embed.Embedding{{Index: 0, Vector: body.Embedding.Values}}
	case len(body.Embeddings) > 0:
		for i, values := range body.Embeddings {
			response.Embeddings = append(response.Embeddings, embed.Embedding{Index: i, Vector: values.Values})
		}
	default:
		return nil, &providers.NoResponseError{ModelIden: target.Model}
	}

	if opts != nil && opts.CaptureRawBody {
		response.CapturedRawBody = json.RawMessage(res.Body)
	}
	return response, nil
}
