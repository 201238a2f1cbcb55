package webc

import (
	"io"
	"strings"
	"testing"
)

// TestSSEScanner covers multi-line data joining, comments, event names, and
// the [DONE] sentinel.
func TestSSEScanner(t *testing.T) {
	input := strings.Join([]string{
		": keep-alive",
		"event: message_start",
		"data: {\"a\":1}",
		"",
		"data: line1",
		"data: line2",
		"",
		"data: [DONE]",
		"",
	}, "\n")

	scanner := NewSSEScanner(strings.NewReader(input))

	event, err := scanner.Next()
	if err != nil {
		t.Fatalf("first event: %v", err)
	}
	if event.Name != "message_start" || event.Data != `{"a":1}` {
		t.Errorf("first event = %+v", event)
	}

	event, err = scanner.Next()
	if err != nil {
		t.Fatalf("second event: %v", err)
	}
	if event.Data != "line1\nline2" {
		t.Errorf("multi-line data = %q", event.Data)
	}

	if _, err := scanner.Next(); err != io.EOF {
		t.Errorf("after [DONE]: err = %v, want io.EOF", err)
	}
}

// TestSSEScanner_TrailingEventWithoutBlankLine verifies the flush of a final
// unterminated event.
func TestSSEScanner_TrailingEventWithoutBlankLine(t *testing.T) {
	scanner := NewSSEScanner(strings.NewReader("data: tail"))
	event, err := scanner.Next()
	if err != nil || event.Data != "tail" {
		t.Errorf("got (%+v, %v)", event, err)
	}
	if _, err := scanner.Next(); err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

// TestDelimiterStream verifies newline framing with empty-message skipping,
// as used by the Cohere stream.
func TestDelimiterStream(t *testing.T) {
	input := "{\"event\":1}\n\n{\"event\":2}\n{\"event\":3}"
	stream := NewDelimiterStream(strings.NewReader(input), "\n")

	var messages []string
	for {
		message, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		messages = append(messages, message)
	}

	want := []string{`{"event":1}`, `{"event":2}`, `{"event":3}`}
	if len(messages) != len(want) {
		t.Fatalf("messages = %v, want %v", messages, want)
	}
	for i := range want {
		if messages[i] != want[i] {
			t.Errorf("message[%d] = %q, want %q", i, messages[i], want[i])
		}
	}
}

// TestPrettyJSONArrayStream verifies that an incrementally streamed JSON
// array frames as "[", each element, "]", as used by the Gemini stream.
func TestPrettyJSONArrayStream(t *testing.T) {
	input := "[\n  {\"text\": \"a\"},\n  {\"text\": \"b\",\n   \"nested\": [1,2]}\n]\n"
	stream := NewPrettyJSONArrayStream(strings.NewReader(input))

	message, err := stream.Next()
	if err != nil || message != "[" {
		t.Fatalf("open: (%q, %v)", message, err)
	}

	message, err = stream.Next()
	if err != nil {
		t.Fatalf("element 1: %v", err)
	}
	if !strings.Contains(message, `"text": "a"`) {
		t.Errorf("element 1 = %q", message)
	}

	message, err = stream.Next()
	if err != nil {
		t.Fatalf("element 2: %v", err)
	}
	if !strings.Contains(message, `"nested"`) {
		t.Errorf("element 2 = %q", message)
	}

	message, err = stream.Next()
	if err != nil || message != "]" {
		t.Fatalf("close: (%q, %v)", message, err)
	}

	if _, err := stream.Next(); err != io.EOF {
		t.Errorf("after close: err = %v, want io.EOF", err)
	}
}
