package cohere

import (
	"encoding/json"

	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/embed"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

type embedRequest struct {
	Model     string   `json:"model"`
	Texts     []string `json:"texts"`
	InputType string   `json:"input_type,omitempty"`
	Truncate  string   `json:"truncate,omitempty"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Meta       *struct {
		BilledUnits *struct {
			InputTokens int32 `json:"input_tokens"`
		} `json:"billed_units"`
	} `json:"meta"`
}

// BuildEmbedRequest builds a Cohere embed request. input_type defaults to
// search_document, which is what the API requires for v3 models.
func (Adapter) BuildEmbedRequest(target resolver.ServiceTarget, req embed.EmbedRequest, opts *embed.EmbedOptions) (webc.WebRequestData, error) {
	body := embedRequest{
		Model:     target.Model.Model,
		Texts:     req.Inputs,
		InputType: "search_document",
	}
	if opts != nil {
		if opts.EmbeddingType != "" {
			body.InputType = opts.EmbeddingType
		}
		body.Truncate = opts.Truncate
	}

	data := webc.WebRequestData{
		URL:     target.Endpoint.JoinPath(embedPath),
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

func (Adapter) ParseEmbedResponse(target resolver.ServiceTarget, res *webc.WebResponse, opts *embed.EmbedOptions) (*embed.EmbedResponse, error) {
	var body embedResponse
	if err := json.Unmarshal(res.Body, &body); err != nil {
		return nil, &providers.ResponseParseError{ModelIden: target.Model, Body: res.Body, Cause: err}
	}
	if len(body.Embeddings) == 0 {
		return nil, &providers.NoResponseError{ModelIden: target.Model}
	}

	response := &embed.EmbedResponse{
		ModelIden:         target.Model,
		ProviderModelIden: target.Model,
	}
	for i, vector := range body.Embeddings {
		response.Embeddings = append(response.Embeddings, embed.Embedding{Index: i, Vector: vector})
	}
	if body.Meta != nil && body.Meta.BilledUnits != nil {
		response.Usage = chat.Usage{
			PromptTokens: chat.Count(body.Meta.BilledUnits.InputTokens),
			TotalTokens:  chat.Count(body.Meta.BilledUnits.InputTokens),
		}
	}
	if opts != nil && opts.CaptureRawBody {
		response.CapturedRawBody = json.RawMessage(res.Body)
	}
	return response, nil
}
