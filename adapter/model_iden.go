package adapter

// ModelIden identifies a concrete model on a concrete adapter. It is a small
// value type; compare with ==.
type ModelIden struct {
	Kind  Kind   `json:"kind"`
	Model string `json:"model"`
}

// NewModelIden builds a ModelIden from a kind and a model name.
func NewModelIden(kind Kind, model string) ModelIden {
	return ModelIden{Kind: kind, Model: model}
}

// WithModel returns a copy of the iden with the model name replaced.
// Returns the receiver unchanged when the name is empty or identical, so
// provider-echoed model names can be applied unconditionally.
func (mi ModelIden) WithModel(model string) ModelIden {
	if model == "" || model == mi.Model {
		return mi
	}
	return ModelIden{Kind: mi.Kind, Model: model}
}

// String renders the iden as "kind:model" for error messages and logs.
func (mi ModelIden) String() string {
	return string(mi.Kind) + ":" + mi.Model
}
