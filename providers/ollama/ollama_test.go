package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

// TestDefaults verifies the keyless localhost defaults.
func TestDefaults(t *testing.T) {
	a := Adapter{}
	if a.DefaultEndpoint().BaseURL() != "http://localhost:11434/v1/" {
		t.Errorf("endpoint = %q", a.DefaultEndpoint().BaseURL())
	}
	if a.DefaultAuth().Kind != resolver.AuthNone {
		t.Errorf("auth = %+v", a.DefaultAuth())
	}
	if a.ListModels() != nil {
		t.Error("static list should be empty; models are listed live")
	}
}

// TestTagsURL verifies the /v1 prefix strip for the native listing path.
func TestTagsURL(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{"http://localhost:11434/v1/", "http://localhost:11434/api/tags"},
		{"http://box:11434/", "http://box:11434/api/tags"},
	}
	for _, testCase := range tests {
		if got := tagsURL(resolver.NewEndpoint(testCase.endpoint)); got != testCase.want {
			t.Errorf("tagsURL(%q) = %q, want %q", testCase.endpoint, got, testCase.want)
		}
	}
}

// TestListModelsLive verifies the live GET against a fake /api/tags.
func TestListModelsLive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("method = %q", r.Method)
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2:latest"},{"name":"deepseek-r1:8b"}]}`))
	}))
	defer server.Close()

	wc, err := webc.NewWebClient(webc.WebConfig{})
	if err != nil {
		t.Fatalf("web client: %v", err)
	}

	names, err := Adapter{}.ListModelsLive(context.Background(), wc, resolver.NewEndpoint(server.URL+"/v1/"), resolver.NoAuth())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 2 || names[0] != "llama3.2:latest" || names[1] != "deepseek-r1:8b" {
		t.Errorf("names = %v", names)
	}
}

// TestParseChatResponse_ZeroUsageAbsent verifies that zero-token usage is
// reported as absent, and that <think> extraction works through the shared
// OpenAI-compatible parse.
func TestParseChatResponse_ZeroUsageAbsent(t *testing.T) {
	target := resolver.ServiceTarget{
		Endpoint: resolver.NewEndpoint("http://localhost:11434/v1/"),
		Auth:     resolver.NoAuth(),
		Model:    adapter.NewModelIden(adapter.KindOllama, "deepseek-r1:8b"),
	}
	body := []byte(`{
		"choices":[{"message":{"role":"assistant","content":"<think>plan</think>answer"}}],
		"usage":{"prompt_tokens":0,"completion_tokens":0,"total_tokens":0},
		"model":"deepseek-r1:8b"
	}`)

	normalize := true
	opts := &chat.ChatOptions{NormalizeReasoningContent: &normalize}

	response, err := Adapter{}.ParseChatResponse(target, &webc.WebResponse{Status: 200, Body: body}, opts)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if !response.Usage.IsEmpty() {
		t.Errorf("usage = %+v, want absent for zero counters", response.Usage)
	}
	if response.FirstText() != "answer" || response.ReasoningContent != "plan" {
		t.Errorf("got (%q, %q)", response.FirstText(), response.ReasoningContent)
	}
}
