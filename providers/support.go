package providers

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/kaptinlin/jsonrepair"

	"github.com/unigenai/unigen/adapter"
	"github.com/unigenai/unigen/chat"
	"github.com/unigenai/unigen/resolver"
	"github.com/unigenai/unigen/webc"
)

// structuralHeaders are never overridden by ChatOptions.ExtraHeaders.
var structuralHeaders = map[string]bool{
	"content-type": true,
	"accept":       true,
}

// ApplyExtraHeaders merges user extra headers into the request data last,
// overriding adapter-set headers of the same name except structural ones.
func ApplyExtraHeaders(data *webc.WebRequestData, extra map[string]string) {
	if len(extra) == 0 {
		return
	}
	if data.Headers == nil {
		data.Headers = map[string]string{}
	}
	for name, value := range extra {
		if structuralHeaders[strings.ToLower(name)] {
			continue
		}
		data.Headers[name] = value
	}
}

// ApplyAuthOverride applies an AuthRequestOverride to built request data:
// the override URL replaces the adapter URL, and the override headers
// replace any auth-related headers the adapter set.
func ApplyAuthOverride(data *webc.WebRequestData, auth resolver.AuthData) {
	if auth.Kind != resolver.AuthRequestOverride {
		return
	}
	if auth.OverrideURL != "" {
		data.URL = auth.OverrideURL
	}
	if data.Headers == nil {
		data.Headers = map[string]string{}
	}
	for name, value := range auth.OverrideHeaders {
		data.Headers[name] = value
	}
}

// ParseToolArgs converts provider tool-call arguments to a JSON value.
// String arguments are parsed; near-JSON output (truncated quotes, trailing
// commas) is repaired before giving up with *InvalidJSONElementError. Empty
// arguments become the empty object.
func ParseToolArgs(model adapter.ModelIden, raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return json.RawMessage(`{}`), nil
	}
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed), nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(trimmed)
	if repairErr == nil && json.Valid([]byte(repaired)) {
		return json.RawMessage(repaired), nil
	}

	return nil, &InvalidJSONElementError{
		ModelIden: model,
		Element:   "tool call arguments",
		Cause:     repairErr,
	}
}

// EnsureCallID returns the given call ID, or a generated one when the
// provider omitted it (some OpenAI-compatible services do).
func EnsureCallID(callID string) string {
	if callID != "" {
		return callID
	}
	return "call_" + uuid.NewString()
}

/*
	##### TOOL-CALL ASSEMBLY #####
*/

// ToolCallAssembler buffers streamed tool-call fragments per index and
// produces fully assembled calls once the provider signals completion.
// Fragments may arrive in any mix of header (id, name) and argument pieces;
// nil or empty fragments are tolerated.
type ToolCallAssembler struct {
	builders []toolCallBuilder
}

type toolCallBuilder struct {
	id        string
	name      string
	arguments strings.Builder
	started   bool
}

// AddFragment merges one fragment for the given index, growing the buffer
// as new indices appear.
func (a *ToolCallAssembler) AddFragment(index int, id, name, arguments string) {
	if index < 0 {
		return
	}
	for len(a.builders) <= index {
		a.builders = append(a.builders, toolCallBuilder{})
	}
	builder := &a.builders[index]
	builder.started = true
	if id != "" {
		builder.id = id
	}
	if name != "" {
		builder.name = name
	}
	if arguments != "" {
		builder.arguments.WriteString(arguments)
	}
}

// HasPending reports whether any fragment has been buffered.
func (a *ToolCallAssembler) HasPending() bool {
	for _, builder := range a.builders {
		if builder.started {
			return true
		}
	}
	return false
}

// Drain finalizes all buffered calls in index order, parsing the
// concatenated argument fragments as JSON. The assembler is reset.
func (a *ToolCallAssembler) Drain(model adapter.ModelIden) ([]chat.ToolCall, error) {
	var calls []chat.ToolCall
	for i := range a.builders {
		builder := &a.builders[i]
		if !builder.started {
			continue
		}
		arguments, err := ParseToolArgs(model, builder.arguments.String())
		if err != nil {
			return nil, err
		}
		calls = append(calls, chat.ToolCall{
			CallID:      EnsureCallID(builder.id),
			FnName:      builder.name,
			FnArguments: arguments,
		})
	}
	a.builders = nil
	return calls, nil
}

/*
	##### THINK NORMALIZATION #####
*/

// ThinkSplitter re-routes <think>…</think> spans of a content stream to the
// reasoning channel. Feed raw text deltas in; Text and Reasoning hold what
// should be emitted for each delta. Tag bytes themselves are never emitted,
// and tags split across deltas are handled by buffering a suspect prefix.
type ThinkSplitter struct {
	inThink bool
	sawAny  bool
	pending string
}

// Split consumes one delta and returns the text and reasoning portions to
// emit for it. Either may be empty.
func (ts *ThinkSplitter) Split(delta string) (text string, reasoning string) {
	input := ts.pending + delta
	ts.pending = ""

	var textOut, reasoningOut strings.Builder
	for input != "" {
		if ts.inThink {
			if i := strings.Index(input, "</think>"); i >= 0 {
				reasoningOut.WriteString(input[:i])
				input = strings.TrimPrefix(input[i+len("</think>"):], "\n")
				ts.inThink = false
				continue
			}
			// A partial closing tag at the tail waits for the next delta.
			if keep := partialTagSuffix(input, "</think>"); keep > 0 {
				reasoningOut.WriteString(input[:len(input)-keep])
				ts.pending = input[len(input)-keep:]
			} else {
				reasoningOut.WriteString(input)
			}
			input = ""
			continue
		}

		// Only honor an opening tag at the very start of the stream, matching
		// how reasoning models front-load the think block.
		if !ts.sawAny && strings.HasPrefix(strings.TrimLeft(input, " \t\n"), "<") {
			trimmed := strings.TrimLeft(input, " \t\n")
			if strings.HasPrefix(trimmed, "<think>") {
				ts.inThink = true
				ts.sawAny = true
				input = trimmed[len("<think>"):]
				continue
			}
			if keep := partialTagSuffix(trimmed, "<think>"); keep == len(trimmed) {
				ts.pending = trimmed
				input = ""
				continue
			}
		}

		ts.sawAny = true
		textOut.WriteString(input)
		input = ""
	}

	return textOut.String(), reasoningOut.String()
}

// Flush returns any text buffered while waiting for a tag to complete.
func (ts *ThinkSplitter) Flush() (text string, reasoning string) {
	pending := ts.pending
	ts.pending = ""
	if pending == "" {
		return "", ""
	}
	if ts.inThink {
		return "", pending
	}
	return pending, ""
}

// partialTagSuffix returns the length of the longest suffix of s that is a
// proper prefix of tag, or 0 when there is none.
func partialTagSuffix(s, tag string) int {
	max := len(tag) - 1
	if max > len(s) {
		max = len(s)
	}
	for n := max; n > 0; n-- {
		if strings.HasPrefix(tag, s[len(s)-n:]) {
			return n
		}
	}
	return 0
}
