package chat

import "testing"

func floatPtr(f float64) *float64 { return &f }
func uint32Ptr(n uint32) *uint32  { return &n }

// TestMergeOptions verifies field-wise merging with the request winning,
// which matters for callers that set a global temperature and a per-call
// max_tokens.
func TestMergeOptions(t *testing.T) {
	defaults := &ChatOptions{
		Temperature:  floatPtr(0.2),
		MaxTokens:    uint32Ptr(100),
		CaptureUsage: true,
		ExtraHeaders: map[string]string{"X-Env": "prod", "X-Base": "base"},
	}
	request := &ChatOptions{
		MaxTokens:    uint32Ptr(500),
		ExtraHeaders: map[string]string{"X-Env": "dev"},
	}

	merged := MergeOptions(defaults, request)

	if merged.Temperature == nil || *merged.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2 from defaults", merged.Temperature)
	}
	if merged.MaxTokens == nil || *merged.MaxTokens != 500 {
		t.Errorf("MaxTokens = %v, want 500 from request", merged.MaxTokens)
	}
	if !merged.CaptureUsage {
		t.Error("CaptureUsage should carry over from defaults")
	}
	if merged.ExtraHeaders["X-Env"] != "dev" {
		t.Errorf("X-Env = %q, want request to win", merged.ExtraHeaders["X-Env"])
	}
	if merged.ExtraHeaders["X-Base"] != "base" {
		t.Errorf("X-Base = %q, want default preserved", merged.ExtraHeaders["X-Base"])
	}

	// Inputs must not be mutated.
	if defaults.MaxTokens == nil || *defaults.MaxTokens != 100 {
		t.Error("defaults were mutated by merge")
	}
	if defaults.ExtraHeaders["X-Env"] != "prod" {
		t.Error("default headers were mutated by merge")
	}
}

// TestMergeOptions_NilInputs verifies that nil inputs yield a usable value.
func TestMergeOptions_NilInputs(t *testing.T) {
	if merged := MergeOptions(nil, nil); merged == nil {
		t.Fatal("MergeOptions(nil, nil) returned nil")
	}
	request := &ChatOptions{Temperature: floatPtr(1.0)}
	merged := MergeOptions(nil, request)
	if merged.Temperature == nil || *merged.Temperature != 1.0 {
		t.Error("request options lost with nil defaults")
	}
}

// TestParseReasoningEffort covers keywords and the budget form.
func TestParseReasoningEffort(t *testing.T) {
	effort, err := ParseReasoningEffort("high")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if effort.Level != ReasoningHigh {
		t.Errorf("Level = %q, want high", effort.Level)
	}

	effort, err = ParseReasoningEffort("budget-2048")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if effort.Level != ReasoningBudget || effort.Budget != 2048 {
		t.Errorf("budget effort = %+v", effort)
	}

	if _, err := ParseReasoningEffort("extreme"); err == nil {
		t.Error("expected error for unknown keyword")
	}
	if _, err := ParseReasoningEffort("budget-x"); err == nil {
		t.Error("expected error for malformed budget")
	}
}

// TestReasoningEffort_TokenBudget verifies the keyword-to-budget mapping
// used by Anthropic and Gemini.
func TestReasoningEffort_TokenBudget(t *testing.T) {
	tests := []struct {
		effort *ReasoningEffort
		want   uint32
	}{
		{EffortLevel(ReasoningNone), 0},
		{EffortLevel(ReasoningMinimal), 0},
		{EffortLevel(ReasoningLow), 1024},
		{EffortLevel(ReasoningMedium), 8192},
		{EffortLevel(ReasoningHigh), 24576},
		{EffortBudget(3000), 3000},
	}
	for _, testCase := range tests {
		if got := testCase.effort.TokenBudget(); got != testCase.want {
			t.Errorf("TokenBudget(%s) = %d, want %d", testCase.effort.Level, got, testCase.want)
		}
	}
}
