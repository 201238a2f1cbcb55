package resolver

import (
	"fmt"
	"os"
)

// AuthKind discriminates AuthData variants.
type AuthKind string

const (
	// AuthFromEnv reads the key from an environment variable at execute time.
	AuthFromEnv AuthKind = "from_env"
	// AuthKey carries the key literal.
	AuthKey AuthKind = "key"
	// AuthRequestOverride replaces the request URL and auth headers wholesale
	// at transport time (for gateways and signed-URL schemes).
	AuthRequestOverride AuthKind = "request_override"
	// AuthMultiKeys carries several named keys; adapters pick by name.
	AuthMultiKeys AuthKind = "multi_keys"
	// AuthNone is for providers that take no credentials (Ollama).
	AuthNone AuthKind = "none"
)

// AuthData is how a request authenticates to a provider.
type AuthData struct {
	Kind AuthKind `json:"kind"`

	// EnvName is set for AuthFromEnv.
	EnvName string `json:"env_name,omitempty"`
	// Key is set for AuthKey.
	Key string `json:"-"`
	// OverrideURL and OverrideHeaders are set for AuthRequestOverride.
	OverrideURL     string            `json:"override_url,omitempty"`
	OverrideHeaders map[string]string `json:"-"`
	// Keys is set for AuthMultiKeys.
	Keys map[string]string `json:"-"`
}

// AuthFromEnvName builds env-var based auth.
func AuthFromEnvName(envName string) AuthData {
	return AuthData{Kind: AuthFromEnv, EnvName: envName}
}

// AuthFromKey builds literal-key auth.
func AuthFromKey(key string) AuthData {
	return AuthData{Kind: AuthKey, Key: key}
}

// AuthFromRequestOverride builds an auth that replaces URL and headers.
func AuthFromRequestOverride(url string, headers map[string]string) AuthData {
	return AuthData{Kind: AuthRequestOverride, OverrideURL: url, OverrideHeaders: headers}
}

// AuthFromMultiKeys builds named-key auth.
func AuthFromMultiKeys(keys map[string]string) AuthData {
	return AuthData{Kind: AuthMultiKeys, Keys: keys}
}

// NoAuth builds the no-credentials auth.
func NoAuth() AuthData {
	return AuthData{Kind: AuthNone}
}

// KeyEnvNotFoundError is returned when an AuthFromEnv variable is unset or
// empty at execute time. It is an auth error; do not retry.
type KeyEnvNotFoundError struct {
	EnvName string
}

func (e *KeyEnvNotFoundError) Error() string {
	return fmt.Sprintf("api key environment variable %q not found", e.EnvName)
}

// SingleKey resolves the auth to one key value. For AuthFromEnv the
// environment is consulted now, not at construction time. Returns "" with no
// error for AuthNone; AuthRequestOverride carries no key at all.
func (a AuthData) SingleKey() (string, error) {
	switch a.Kind {
	case AuthKey:
		return a.Key, nil
	case AuthFromEnv:
		key := os.Getenv(a.EnvName)
		if key == "" {
			return "", &KeyEnvNotFoundError{EnvName: a.EnvName}
		}
		return key, nil
	case AuthMultiKeys:
		// A single-key consumer on multi-key auth takes the "default" entry.
		if key, ok := a.Keys["default"]; ok {
			return key, nil
		}
		return "", fmt.Errorf("multi-key auth has no %q entry", "default")
	case AuthNone, AuthRequestOverride:
		return "", nil
	default:
		return "", fmt.Errorf("unknown auth kind %q", a.Kind)
	}
}

// KeyByName resolves a named key from AuthMultiKeys, falling back to
// SingleKey for the other variants.
func (a AuthData) KeyByName(name string) (string, error) {
	if a.Kind == AuthMultiKeys {
		if key, ok := a.Keys[name]; ok {
			return key, nil
		}
		return "", fmt.Errorf("multi-key auth has no %q entry", name)
	}
	return a.SingleKey()
}
