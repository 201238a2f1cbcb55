package resolver

import (
	"errors"
	"testing"
)

// TestAuthData_SingleKey covers each auth variant, including the env-var
// miss surfacing KeyEnvNotFoundError.
func TestAuthData_SingleKey(t *testing.T) {
	t.Run("literal key", func(t *testing.T) {
		key, err := AuthFromKey("sk-123").SingleKey()
		if err != nil || key != "sk-123" {
			t.Errorf("got (%q, %v)", key, err)
		}
	})

	t.Run("env found", func(t *testing.T) {
		t.Setenv("UNIGEN_TEST_KEY", "sk-env")
		key, err := AuthFromEnvName("UNIGEN_TEST_KEY").SingleKey()
		if err != nil || key != "sk-env" {
			t.Errorf("got (%q, %v)", key, err)
		}
	})

	t.Run("env missing", func(t *testing.T) {
		t.Setenv("UNIGEN_TEST_KEY", "")
		_, err := AuthFromEnvName("UNIGEN_TEST_KEY").SingleKey()
		var notFound *KeyEnvNotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("err = %v, want KeyEnvNotFoundError", err)
		}
		if notFound.EnvName != "UNIGEN_TEST_KEY" {
			t.Errorf("EnvName = %q", notFound.EnvName)
		}
	})

	t.Run("multi keys default entry", func(t *testing.T) {
		auth := AuthFromMultiKeys(map[string]string{"default": "sk-d", "search": "sk-s"})
		key, err := auth.SingleKey()
		if err != nil || key != "sk-d" {
			t.Errorf("got (%q, %v)", key, err)
		}
		key, err = auth.KeyByName("search")
		if err != nil || key != "sk-s" {
			t.Errorf("KeyByName got (%q, %v)", key, err)
		}
	})

	t.Run("none", func(t *testing.T) {
		key, err := NoAuth().SingleKey()
		if err != nil || key != "" {
			t.Errorf("got (%q, %v)", key, err)
		}
	})
}

// TestEndpoint verifies slash normalization and path joining.
func TestEndpoint(t *testing.T) {
	endpoint := NewEndpoint("https://api.example.com/v1")
	if endpoint.BaseURL() != "https://api.example.com/v1/" {
		t.Errorf("BaseURL = %q", endpoint.BaseURL())
	}
	if got := endpoint.JoinPath("/chat/completions"); got != "https://api.example.com/v1/chat/completions" {
		t.Errorf("JoinPath = %q", got)
	}
	if !(Endpoint{}).IsZero() {
		t.Error("zero endpoint should report IsZero")
	}
}
