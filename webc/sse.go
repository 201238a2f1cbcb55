package webc

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxSSELineSize is the maximum size of a single SSE line (1 MB). The
// default bufio.Scanner limit of 64 KiB is too small for large events such
// as long tool-call arguments.
const maxSSELineSize = 1 * 1024 * 1024

// SSEEvent is one Server-Sent Event: the event name (may be empty) and the
// joined data payload.
type SSEEvent struct {
	Name string
	Data string
}

// SSEScanner reads Server-Sent Events from a reader. It handles multi-line
// data fields, skips comments and empty keep-alive lines, and detects the
// [DONE] sentinel used by OpenAI-compatible APIs.
type SSEScanner struct {
	scanner *bufio.Scanner
}

// NewSSEScanner builds an SSEScanner over the reader.
func NewSSEScanner(reader io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)
	return &SSEScanner{scanner: scanner}
}

// Next returns the next event. Multi-line data fields are joined with
// newlines. Returns io.EOF at end of stream and on the [DONE] sentinel.
func (s *SSEScanner) Next() (SSEEvent, error) {
	var event SSEEvent
	var dataLines []string

	flush := func() (SSEEvent, bool) {
		if len(dataLines) == 0 {
			return SSEEvent{}, false
		}
		event.Data = strings.Join(dataLines, "\n")
		return event, true
	}

	for s.scanner.Scan() {
		line := s.scanner.Text()

		// Empty line ends the current event.
		if line == "" {
			if done, ok := flush(); ok {
				return done, nil
			}
			event = SSEEvent{}
			continue
		}

		// SSE comment / keep-alive.
		if strings.HasPrefix(line, ":") {
			continue
		}

		if name, ok := strings.CutPrefix(line, "event:"); ok {
			event.Name = strings.TrimSpace(name)
			continue
		}

		if data, ok := strings.CutPrefix(line, "data:"); ok {
			data = strings.TrimSpace(data)
			if data == "[DONE]" {
				return SSEEvent{}, io.EOF
			}
			dataLines = append(dataLines, data)
			continue
		}

		// Other SSE fields (id:, retry:) are ignored.
	}

	if err := s.scanner.Err(); err != nil {
		return SSEEvent{}, fmt.Errorf("sse scanner error: %w", err)
	}

	// Flush a trailing event that was not terminated by a blank line.
	if done, ok := flush(); ok {
		return done, nil
	}

	return SSEEvent{}, io.EOF
}
