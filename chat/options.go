package chat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/unigenai/unigen/internal/jsonschema"
)

/*
	##### OPTIONS #####
*/

// ChatOptions carries the per-request knobs. All fields are optional;
// pointer fields distinguish "unset" from zero values so that client
// defaults merge field-wise under request-level overrides.
type ChatOptions struct {
	// Sampling
	Temperature   *float64 `json:"temperature,omitempty"`
	TopP          *float64 `json:"top_p,omitempty"`
	MaxTokens     *uint32  `json:"max_tokens,omitempty"`
	StopSequences []string `json:"stop_sequences,omitempty"`
	Seed          *uint64  `json:"seed,omitempty"`

	// Structure
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	// Reasoning
	ReasoningEffort *ReasoningEffort `json:"reasoning_effort,omitempty"`
	// NormalizeReasoningContent extracts inline <think>…</think> spans into
	// the dedicated reasoning channel for providers that interleave them.
	NormalizeReasoningContent *bool `json:"normalize_reasoning_content,omitempty"`

	// Output control
	Verbosity   *Verbosity   `json:"verbosity,omitempty"`
	ServiceTier *ServiceTier `json:"service_tier,omitempty"`

	// Capture: stream accumulation into the terminal StreamEnd snapshot.
	CaptureUsage            bool `json:"capture_usage,omitempty"`
	CaptureContent          bool `json:"capture_content,omitempty"`
	CaptureReasoningContent bool `json:"capture_reasoning_content,omitempty"`
	CaptureToolCalls        bool `json:"capture_tool_calls,omitempty"`
	CaptureRawBody          bool `json:"capture_raw_body,omitempty"`

	// Transport
	ExtraHeaders map[string]string `json:"extra_headers,omitempty"`
}

// NormalizeReasoning reports whether <think> normalization is enabled.
func (o *ChatOptions) NormalizeReasoning() bool {
	return o != nil && o.NormalizeReasoningContent != nil && *o.NormalizeReasoningContent
}

// MergeOptions merges client defaults under request options, field by field,
// with the request winning wherever it sets a value. Neither input is
// mutated. A nil result is never returned; with two nil inputs the merge is
// an empty options value.
func MergeOptions(defaults, request *ChatOptions) *ChatOptions {
	merged := ChatOptions{}
	if defaults != nil {
		merged = *defaults
	}
	if request == nil {
		return &merged
	}

	if request.Temperature != nil {
		merged.Temperature = request.Temperature
	}
	if request.TopP != nil {
		merged.TopP = request.TopP
	}
	if request.MaxTokens != nil {
		merged.MaxTokens = request.MaxTokens
	}
	if request.StopSequences != nil {
		merged.StopSequences = request.StopSequences
	}
	if request.Seed != nil {
		merged.Seed = request.Seed
	}
	if request.ResponseFormat != nil {
		merged.ResponseFormat = request.ResponseFormat
	}
	if request.ReasoningEffort != nil {
		merged.ReasoningEffort = request.ReasoningEffort
	}
	if request.NormalizeReasoningContent != nil {
		merged.NormalizeReasoningContent = request.NormalizeReasoningContent
	}
	if request.Verbosity != nil {
		merged.Verbosity = request.Verbosity
	}
	if request.ServiceTier != nil {
		merged.ServiceTier = request.ServiceTier
	}

	merged.CaptureUsage = merged.CaptureUsage || request.CaptureUsage
	merged.CaptureContent = merged.CaptureContent || request.CaptureContent
	merged.CaptureReasoningContent = merged.CaptureReasoningContent || request.CaptureReasoningContent
	merged.CaptureToolCalls = merged.CaptureToolCalls || request.CaptureToolCalls
	merged.CaptureRawBody = merged.CaptureRawBody || request.CaptureRawBody

	if len(request.ExtraHeaders) > 0 {
		headers := make(map[string]string, len(merged.ExtraHeaders)+len(request.ExtraHeaders))
		for name, value := range merged.ExtraHeaders {
			headers[name] = value
		}
		for name, value := range request.ExtraHeaders {
			headers[name] = value
		}
		merged.ExtraHeaders = headers
	}

	return &merged
}

/*
	##### RESPONSE FORMAT #####
*/

// ResponseFormatKind discriminates ResponseFormat variants.
type ResponseFormatKind string

const (
	// ResponseFormatJSONMode asks for any well-formed JSON object.
	ResponseFormatJSONMode ResponseFormatKind = "json_mode"
	// ResponseFormatJSONSpec asks for JSON conforming to a named schema.
	ResponseFormatJSONSpec ResponseFormatKind = "json_spec"
)

// ResponseFormat selects structured output. JSON mode maps to the provider's
// JSON flag (a no-op where unsupported); JSONSpec maps to the provider's
// schema-constrained output (OpenAI, Gemini).
type ResponseFormat struct {
	Kind ResponseFormatKind `json:"kind"`
	Spec *JSONSpec          `json:"spec,omitempty"`
}

// JSONSpec names a schema for schema-constrained output.
type JSONSpec struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Schema      *jsonschema.Schema `json:"schema"`
}

// JSONMode returns the JSON-mode response format.
func JSONMode() *ResponseFormat {
	return &ResponseFormat{Kind: ResponseFormatJSONMode}
}

// JSONSpecFormat returns a schema-constrained response format.
func JSONSpecFormat(name string, schema *jsonschema.Schema) *ResponseFormat {
	return &ResponseFormat{
		Kind: ResponseFormatJSONSpec,
		Spec: &JSONSpec{Name: name, Schema: schema},
	}
}

/*
	##### REASONING EFFORT #####
*/

// ReasoningLevel is the qualitative reasoning setting.
type ReasoningLevel string

const (
	ReasoningNone    ReasoningLevel = "none"
	ReasoningMinimal ReasoningLevel = "minimal"
	ReasoningLow     ReasoningLevel = "low"
	ReasoningMedium  ReasoningLevel = "medium"
	ReasoningHigh    ReasoningLevel = "high"
	// ReasoningBudget carries an explicit token budget in
	// ReasoningEffort.Budget instead of a keyword.
	ReasoningBudget ReasoningLevel = "budget"
)

// ReasoningEffort selects how much the model should think. Providers map it
// to their own surface: OpenAI takes the keyword, Anthropic and Gemini take
// a token budget derived from the keyword (or passed through for
// ReasoningBudget).
type ReasoningEffort struct {
	Level  ReasoningLevel `json:"level"`
	Budget uint32         `json:"budget,omitempty"`
}

// EffortLevel returns a keyword effort.
func EffortLevel(level ReasoningLevel) *ReasoningEffort {
	return &ReasoningEffort{Level: level}
}

// EffortBudget returns a fixed token-budget effort.
func EffortBudget(tokens uint32) *ReasoningEffort {
	return &ReasoningEffort{Level: ReasoningBudget, Budget: tokens}
}

// ParseReasoningEffort parses "none", "minimal", "low", "medium", "high", or
// "budget-<n>".
func ParseReasoningEffort(s string) (*ReasoningEffort, error) {
	switch ReasoningLevel(s) {
	case ReasoningNone, ReasoningMinimal, ReasoningLow, ReasoningMedium, ReasoningHigh:
		return EffortLevel(ReasoningLevel(s)), nil
	}
	if rest, ok := strings.CutPrefix(s, "budget-"); ok {
		budget, err := strconv.ParseUint(rest, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid reasoning budget %q: %w", s, err)
		}
		return EffortBudget(uint32(budget)), nil
	}
	return nil, fmt.Errorf("unknown reasoning effort %q", s)
}

// TokenBudget maps the effort to a thinking-token budget for providers that
// are budget-based. Keywords map to 1k/8k/24k; Minimal and None map to 0;
// Budget passes through.
func (re *ReasoningEffort) TokenBudget() uint32 {
	switch re.Level {
	case ReasoningLow:
		return 1024
	case ReasoningMedium:
		return 8192
	case ReasoningHigh:
		return 24576
	case ReasoningBudget:
		return re.Budget
	default: // none, minimal
		return 0
	}
}

/*
	##### OUTPUT CONTROL #####
*/

// Verbosity hints at the target response length (OpenAI gpt-5 family).
type Verbosity string

const (
	VerbosityLow    Verbosity = "low"
	VerbosityMedium Verbosity = "medium"
	VerbosityHigh   Verbosity = "high"
)

// ServiceTier selects the provider processing tier where supported.
type ServiceTier string

const (
	ServiceTierAuto    ServiceTier = "auto"
	ServiceTierDefault ServiceTier = "default"
	ServiceTierFlex    ServiceTier = "flex"
)
