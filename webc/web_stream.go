package webc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// WebStream frames a raw byte stream into string messages for services that
// do not speak text/event-stream. Two modes exist:
//
//   - Delimiter: messages separated by a fixed byte pattern (Cohere uses a
//     single newline).
//   - PrettyJsonArray: the body is one JSON array streamed incrementally
//     (Gemini). The stream emits "[" once, then each array element as its
//     own message, then "]".
//
// Like SSEScanner, a WebStream pulls from the open response body; the caller
// owns closing the body.
type WebStream struct {
	next func() (string, error)
}

// Next returns the next framed message, or io.EOF at end of stream.
func (ws *WebStream) Next() (string, error) { return ws.next() }

// NewDelimiterStream frames messages split on the given delimiter. Empty
// messages are skipped.
func NewDelimiterStream(reader io.Reader, delimiter string) *WebStream {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)
	pattern := []byte(delimiter)
	scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := bytes.Index(data, pattern); i >= 0 {
			return i + len(pattern), data[:i], nil
		}
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	})

	return &WebStream{next: func() (string, error) {
		for scanner.Scan() {
			message := bytes.TrimSpace(scanner.Bytes())
			if len(message) == 0 {
				continue
			}
			return string(message), nil
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("delimiter stream error: %w", err)
		}
		return "", io.EOF
	}}
}

// NewPrettyJSONArrayStream frames an incrementally streamed JSON array. The
// document start and end are surfaced as "[" and "]" so consumers can map
// them to stream Start/End events.
func NewPrettyJSONArrayStream(reader io.Reader) *WebStream {
	decoder := json.NewDecoder(reader)
	started := false
	ended := false

	return &WebStream{next: func() (string, error) {
		if ended {
			return "", io.EOF
		}

		if !started {
			token, err := decoder.Token()
			if err != nil {
				if err == io.EOF {
					return "", io.EOF
				}
				return "", fmt.Errorf("json array stream: reading open bracket: %w", err)
			}
			if delim, ok := token.(json.Delim); !ok || delim != '[' {
				return "", fmt.Errorf("json array stream: expected '[', got %v", token)
			}
			started = true
			return "[", nil
		}

		if decoder.More() {
			var element json.RawMessage
			if err := decoder.Decode(&element); err != nil {
				return "", fmt.Errorf("json array stream: decoding element: %w", err)
			}
			return string(element), nil
		}

		if _, err := decoder.Token(); err != nil && err != io.EOF {
			return "", fmt.Errorf("json array stream: reading close bracket: %w", err)
		}
		ended = true
		return "]", nil
	}}
}
