package chat

/*
	##### USAGE #####
*/

// Usage is the normalized token accounting, committed to OpenAI's
// convention: PromptTokens includes cache-hit and cache-creation tokens,
// CompletionTokens includes reasoning tokens, and the detail sub-counters
// are additive refinements, never subtractive.
//
// A counter of 0 from the wire is stored as absent (nil) so that empty
// detail objects can be dropped by CompactDetails.
type Usage struct {
	PromptTokens     *int32 `json:"prompt_tokens,omitempty"`
	CompletionTokens *int32 `json:"completion_tokens,omitempty"`
	TotalTokens      *int32 `json:"total_tokens,omitempty"`

	PromptTokensDetails     *PromptTokensDetails     `json:"prompt_tokens_details,omitempty"`
	CompletionTokensDetails *CompletionTokensDetails `json:"completion_tokens_details,omitempty"`
}

// PromptTokensDetails refines PromptTokens.
type PromptTokensDetails struct {
	// CacheCreation counts tokens written to the provider prompt cache.
	CacheCreation *int32 `json:"cache_creation,omitempty"`
	// Cached counts tokens read from the provider prompt cache.
	Cached *int32 `json:"cached,omitempty"`
	Audio  *int32 `json:"audio,omitempty"`

	CacheCreationDetails *CacheCreationDetails `json:"cache_creation_details,omitempty"`
}

// CacheCreationDetails splits cache writes by TTL (Anthropic).
type CacheCreationDetails struct {
	Ephemeral5m *int32 `json:"ephemeral_5m,omitempty"`
	Ephemeral1h *int32 `json:"ephemeral_1h,omitempty"`
}

// CompletionTokensDetails refines CompletionTokens.
type CompletionTokensDetails struct {
	Reasoning          *int32 `json:"reasoning,omitempty"`
	Audio              *int32 `json:"audio,omitempty"`
	AcceptedPrediction *int32 `json:"accepted_prediction,omitempty"`
	RejectedPrediction *int32 `json:"rejected_prediction,omitempty"`
}

// Count returns a counter pointer for a wire value, with 0 stored as absent.
func Count(n int32) *int32 {
	if n == 0 {
		return nil
	}
	return &n
}

// CountOr returns the counter value, or fallback when absent.
func CountOr(counter *int32, fallback int32) int32 {
	if counter == nil {
		return fallback
	}
	return *counter
}

// CompactDetails drops detail sub-objects whose counters are all absent, so
// serialized usage never carries empty `{}` members.
func (u *Usage) CompactDetails() {
	if details := u.PromptTokensDetails; details != nil {
		if inner := details.CacheCreationDetails; inner != nil && inner.Ephemeral5m == nil && inner.Ephemeral1h == nil {
			details.CacheCreationDetails = nil
		}
		if details.CacheCreation == nil && details.Cached == nil && details.Audio == nil && details.CacheCreationDetails == nil {
			u.PromptTokensDetails = nil
		}
	}
	if details := u.CompletionTokensDetails; details != nil {
		if details.Reasoning == nil && details.Audio == nil &&
			details.AcceptedPrediction == nil && details.RejectedPrediction == nil {
			u.CompletionTokensDetails = nil
		}
	}
}

// IsEmpty reports whether no counter at all is present.
func (u *Usage) IsEmpty() bool {
	return u.PromptTokens == nil && u.CompletionTokens == nil && u.TotalTokens == nil &&
		u.PromptTokensDetails == nil && u.CompletionTokensDetails == nil
}
