package unigen

import (
	"context"

	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/providers"
	"github.com/unigenai/unigen/resolver"
)

// ResolveServiceTarget resolves a model reference into a fully resolved
// service target, applying the configured hooks over adapter defaults.
//
// With no hooks installed the resolution is a pure function of the model
// reference and the adapter defaults.
func (c *Client) ResolveServiceTarget(model string) (resolver.ServiceTarget, error) {
	kind, name := adapter.InferKind(model)
	return c.resolveIden(adapter.NewModelIden(kind, name))
}

// ResolveServiceTargetForIden resolves a target for an explicit
// (kind, model) pair, skipping name inference.
func (c *Client) ResolveServiceTargetForIden(iden adapter.ModelIden) (resolver.ServiceTarget, error) {
	return c.resolveIden(iden)
}

func (c *Client) resolveIden(iden adapter.ModelIden) (resolver.ServiceTarget, error) {
	// -- Model mapping --
	if c.modelMapper != nil {
		mapped, err := c.modelMapper(iden)
		if err != nil {
			return resolver.ServiceTarget{}, &resolver.HookError{Hook: "model mapper", Model: iden, Cause: err}
		}
		iden = mapped
	}

	provider, err := providers.Dispatch(iden.Kind)
	if err != nil {
		return resolver.ServiceTarget{}, err
	}

	// -- Auth and endpoint defaults --
	target := resolver.ServiceTarget{
		Endpoint: provider.DefaultEndpoint(),
		Auth:     provider.DefaultAuth(),
		Model:    iden,
	}
	if c.authResolver != nil {
		auth, ok, err := c.authResolver(iden)
		if err != nil {
			return resolver.ServiceTarget{}, &resolver.HookError{Hook: "auth resolver", Model: iden, Cause: err}
		}
		if ok {
			target.Auth = auth
		}
	}

	// -- Full-target override --
	if c.targetResolver != nil {
		resolved, err := c.targetResolver(target)
		if err != nil {
			return resolver.ServiceTarget{}, &resolver.HookError{Hook: "service target resolver", Model: iden, Cause: err}
		}
		target = resolved
	}

	return target, nil
}

// AllModelNames returns the models known for the adapter kind: the static
// list for most providers, a live listing for Ollama.
func (c *Client) AllModelNames(ctx context.Context, kind adapter.Kind) ([]string, error) {
	if c.webErr != nil {
		return nil, c.webErr
	}
	provider, err := providers.Dispatch(kind)
	if err != nil {
		return nil, err
	}
	if live, ok := provider.(providers.LiveModelLister); ok {
		return live.ListModelsLive(ctx, c.web, provider.DefaultEndpoint(), provider.DefaultAuth())
	}
	return provider.ListModels(), nil
}
