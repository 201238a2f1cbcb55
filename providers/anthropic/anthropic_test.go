package anthropic

import (
	"encoding/json"
	"testing"

	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

func testTarget(model string) resolver.ServiceTarget {
	return resolver.ServiceTarget{
		Endpoint: resolver.NewEndpoint("https://api.anthropic.com/v1/"),
		Auth:     resolver.AuthFromKey("sk-ant"),
		Model:    adapter.NewModelIden(adapter.KindAnthropic, model),
	}
}

func marshalBody(t *testing.T, data webc.WebRequestData) map[string]any {
	t.Helper()
	raw, err := json.Marshal(data.Body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	return body
}

// TestBuildChatRequest_HeadersAndSystem verifies the auth scheme
// (x-api-key + anthropic-version), the top-level system field, and the
// required max_tokens default.
func TestBuildChatRequest_HeadersAndSystem(t *testing.T) {
	req := chat.NewChatRequest(chat.UserMessage("Hi")).WithSystem("be brief")

	data, err := Adapter{}.BuildChatRequest(testTarget("claude-3-5-haiku-latest"), req, nil, false)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if data.URL != "https://api.anthropic.com/v1/messages" {
		t.Errorf("URL = %q", data.URL)
	}
	if data.Headers["x-api-key"] != "sk-ant" {
		t.Errorf("x-api-key = %q", data.Headers["x-api-key"])
	}
	if data.Headers["anthropic-version"] != anthropicVersion {
		t.Errorf("anthropic-version = %q", data.Headers["anthropic-version"])
	}
	if _, hasBearer := data.Headers["Authorization"]; hasBearer {
		t.Error("Anthropic must not use bearer auth")
	}

	body := marshalBody(t, data)
	if body["system"] != "be brief" {
		t.Errorf("system = %v", body["system"])
	}
	// Claude 3.5 gets its model max by default.
	if body["max_tokens"] != float64(8192) {
		t.Errorf("max_tokens = %v, want 8192", body["max_tokens"])
	}

	data, err = Adapter{}.BuildChatRequest(testTarget("claude-2.1"), req, nil, false)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if body := marshalBody(t, data); body["max_tokens"] != float64(1024) {
		t.Errorf("older model max_tokens = %v, want 1024", body["max_tokens"])
	}
}

// TestBuildChatRequest_ToolResultsMerge verifies that consecutive tool
// responses merge into one user turn, as the API requires.
func TestBuildChatRequest_ToolResultsMerge(t *testing.T) {
	call1 := chat.ToolCall{CallID: "t1", FnName: "a", FnArguments: json.RawMessage(`{}`)}
	call2 := chat.ToolCall{CallID: "t2", FnName: "b", FnArguments: json.RawMessage(`{}`)}
	req := chat.NewChatRequest(
		chat.UserMessage("go"),
		chat.AssistantMessageParts(chat.NewToolCallPart(call1), chat.NewToolCallPart(call2)),
		chat.ToolResponseMessage(chat.NewToolResponse("t1", "one")),
		chat.ToolResponseMessage(chat.NewToolResponse("t2", "two")),
	)

	data, err := Adapter{}.BuildChatRequest(testTarget("claude-sonnet-4-5"), req, nil, false)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	body := marshalBody(t, data)
	messages := body["messages"].([]any)
	if len(messages) != 3 {
		t.Fatalf("messages = %d, want 3 (tool results merged)", len(messages))
	}

	merged := messages[2].(map[string]any)
	if merged["role"] != "user" {
		t.Errorf("merged role = %v", merged["role"])
	}
	blocks := merged["content"].([]any)
	if len(blocks) != 2 {
		t.Fatalf("merged blocks = %d, want 2", len(blocks))
	}
	for i, wantID := range []string{"t1", "t2"} {
		block := blocks[i].(map[string]any)
		if block["type"] != "tool_result" || block["tool_use_id"] != wantID {
			t.Errorf("block[%d] = %v", i, block)
		}
	}
}

// TestBuildChatRequest_CacheControl verifies the per-message ephemeral
// marker lands on the last content block with its TTL.
func TestBuildChatRequest_CacheControl(t *testing.T) {
	req := chat.NewChatRequest(
		chat.UserMessage("cache me").WithCacheControl(chat.CacheControlEphemeral1h),
	)

	data, err := Adapter{}.BuildChatRequest(testTarget("claude-sonnet-4-5"), req, nil, false)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	body := marshalBody(t, data)
	messages := body["messages"].([]any)
	blocks := messages[0].(map[string]any)["content"].([]any)
	control := blocks[len(blocks)-1].(map[string]any)["cache_control"].(map[string]any)
	if control["type"] != "ephemeral" || control["ttl"] != "1h" {
		t.Errorf("cache_control = %v", control)
	}
}

// TestBuildChatRequest_Thinking verifies the reasoning-effort to
// budget_tokens derivation.
func TestBuildChatRequest_Thinking(t *testing.T) {
	opts := &chat.ChatOptions{ReasoningEffort: chat.EffortBudget(2048)}
	req := chat.NewChatRequest(chat.UserMessage("think hard"))

	data, err := Adapter{}.BuildChatRequest(testTarget("claude-sonnet-4-5"), req, opts, false)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	body := marshalBody(t, data)
	thinking := body["thinking"].(map[string]any)
	if thinking["type"] != "enabled" || thinking["budget_tokens"] != float64(2048) {
		t.Errorf("thinking = %v", thinking)
	}
}

// TestParseChatResponse_UsageNormalization replays the cache-accounting
// scenario: input 10 + cache creation 3 + cache read 2 => prompt 15,
// output 7 => completion 7, total 22.
func TestParseChatResponse_UsageNormalization(t *testing.T) {
	body := []byte(`{
		"id":"msg_1","model":"claude-sonnet-4-5",
		"content":[{"type":"text","text":"hi"}],
		"usage":{"input_tokens":10,"cache_creation_input_tokens":3,"cache_read_input_tokens":2,"output_tokens":7}
	}`)

	response, err := Adapter{}.ParseChatResponse(testTarget("claude-sonnet-4-5"), &webc.WebResponse{Status: 200, Body: body}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	usage := response.Usage
	if chat.CountOr(usage.PromptTokens, 0) != 15 {
		t.Errorf("prompt = %v, want 15", chat.CountOr(usage.PromptTokens, 0))
	}
	if chat.CountOr(usage.CompletionTokens, 0) != 7 {
		t.Errorf("completion = %v, want 7", chat.CountOr(usage.CompletionTokens, 0))
	}
	if chat.CountOr(usage.TotalTokens, 0) != 22 {
		t.Errorf("total = %v, want 22", chat.CountOr(usage.TotalTokens, 0))
	}
	details := usage.PromptTokensDetails
	if details == nil || chat.CountOr(details.CacheCreation, 0) != 3 || chat.CountOr(details.Cached, 0) != 2 {
		t.Errorf("details = %+v", details)
	}
}

// TestParseChatResponse_BlockOrder verifies that thinking signatures and
// tool calls keep their order, with thinking text on the reasoning channel.
func TestParseChatResponse_BlockOrder(t *testing.T) {
	body := []byte(`{
		"id":"msg_2","model":"claude-sonnet-4-5",
		"content":[
			{"type":"thinking","thinking":"plan","signature":"sig-1"},
			{"type":"text","text":"calling"},
			{"type":"tool_use","id":"tc_1","name":"lookup","input":{"q":"go"}}
		],
		"usage":{"input_tokens":1,"output_tokens":1}
	}`)

	response, err := Adapter{}.ParseChatResponse(testTarget("claude-sonnet-4-5"), &webc.WebResponse{Status: 200, Body: body}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if response.ReasoningContent != "plan" {
		t.Errorf("reasoning = %q", response.ReasoningContent)
	}
	content := response.Content
	if len(content) != 3 {
		t.Fatalf("parts = %d, want 3", len(content))
	}
	if content[0].Type != chat.ContentTypeThoughtSignature || content[0].ThoughtSignature != "sig-1" {
		t.Errorf("part[0] = %+v", content[0])
	}
	if content[1].Type != chat.ContentTypeText {
		t.Errorf("part[1] = %+v", content[1])
	}
	if content[2].Type != chat.ContentTypeToolCall || content[2].ToolCall.FnName != "lookup" {
		t.Errorf("part[2] = %+v", content[2])
	}
}
