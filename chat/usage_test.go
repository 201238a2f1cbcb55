package chat

import "testing"

// TestCount verifies the zero-as-absent rule for wire counters.
func TestCount(t *testing.T) {
	if Count(0) != nil {
		t.Error("Count(0) should be absent")
	}
	if counter := Count(7); counter == nil || *counter != 7 {
		t.Errorf("Count(7) = %v", counter)
	}
}

// TestCompactDetails verifies that empty detail sub-objects are dropped and
// populated ones survive.
func TestCompactDetails(t *testing.T) {
	t.Run("empty details are dropped", func(t *testing.T) {
		usage := Usage{
			PromptTokens:            Count(10),
			PromptTokensDetails:     &PromptTokensDetails{CacheCreationDetails: &CacheCreationDetails{}},
			CompletionTokensDetails: &CompletionTokensDetails{},
		}
		usage.CompactDetails()
		if usage.PromptTokensDetails != nil {
			t.Error("empty PromptTokensDetails should be dropped")
		}
		if usage.CompletionTokensDetails != nil {
			t.Error("empty CompletionTokensDetails should be dropped")
		}
	})

	t.Run("populated details survive", func(t *testing.T) {
		usage := Usage{
			PromptTokensDetails:     &PromptTokensDetails{Cached: Count(3)},
			CompletionTokensDetails: &CompletionTokensDetails{Reasoning: Count(5)},
		}
		usage.CompactDetails()
		if usage.PromptTokensDetails == nil || *usage.PromptTokensDetails.Cached != 3 {
			t.Error("cached detail lost")
		}
		if usage.CompletionTokensDetails == nil || *usage.CompletionTokensDetails.Reasoning != 5 {
			t.Error("reasoning detail lost")
		}
	})
}
