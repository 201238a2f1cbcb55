package resolver

import (
	"fmt"

	"github.com/unigenai/unigen/adapter"
)

// ServiceTarget is a fully resolved execution target: a request can be built
// and sent from it without further lookups (apart from env-var reads
// deferred by AuthFromEnv).
type ServiceTarget struct {
	Endpoint Endpoint
	Auth     AuthData
	Model    adapter.ModelIden
}

// ModelMapper may rewrite the inferred ModelIden (adapter and/or model name)
// before defaults are applied. Returning the input unchanged is valid.
type ModelMapper func(model adapter.ModelIden) (adapter.ModelIden, error)

// AuthResolver may supply AuthData for a model. Returning ok=false falls
// back to the adapter's default env-var auth.
type AuthResolver func(model adapter.ModelIden) (AuthData, bool, error)

// ServiceTargetResolver may rewrite the fully resolved target, including
// swapping the endpoint or substituting AuthRequestOverride.
type ServiceTargetResolver func(target ServiceTarget) (ServiceTarget, error)

// HookError wraps an error returned by a user-supplied resolver hook.
type HookError struct {
	Hook  string
	Model adapter.ModelIden
	Cause error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook failed for %s: %v", e.Hook, e.Model, e.Cause)
}

func (e *HookError) Unwrap() error { return e.Cause }
