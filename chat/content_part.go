package chat

/*
	##### CONTENT MODEL #####
*/

// ContentType discriminates the variants of a ContentPart.
type ContentType string

const (
	// ContentTypeText is a plain text span.
	ContentTypeText ContentType = "text"
	// ContentTypeBinary is an attachment (image, PDF, audio) carried either
	// inline as base64 or by URL.
	ContentTypeBinary ContentType = "binary"
	// ContentTypeToolCall is a model-requested function invocation.
	ContentTypeToolCall ContentType = "tool_call"
	// ContentTypeToolResponse is a caller-supplied tool result keyed by call ID.
	ContentTypeToolResponse ContentType = "tool_response"
	// ContentTypeThoughtSignature is an opaque provider reasoning trace that
	// must be echoed back before its associated tool call (Gemini, Anthropic).
	ContentTypeThoughtSignature ContentType = "thought_signature"
)

// ContentPart is one element of a message's ordered content. Exactly one of
// the payload fields is set, according to Type. Order between parts is
// load-bearing: thought signatures must precede the tool call they belong to.
type ContentPart struct {
	Type ContentType `json:"type"`

	Text             string        `json:"text,omitempty"`
	Binary           *Binary       `json:"binary,omitempty"`
	ToolCall         *ToolCall     `json:"tool_call,omitempty"`
	ToolResponse     *ToolResponse `json:"tool_response,omitempty"`
	ThoughtSignature string        `json:"thought_signature,omitempty"`
}

// Binary is a non-text attachment. Exactly one of URL and Base64 is set.
type Binary struct {
	// ContentType is the MIME type, e.g. "image/png" or "application/pdf".
	ContentType string `json:"content_type"`
	URL         string `json:"url,omitempty"`
	Base64      string `json:"base64,omitempty"`
	// Name is an optional file name, used by providers with document parts.
	Name string `json:"name,omitempty"`
}

// IsURL reports whether the binary is referenced by URL rather than inline.
func (b *Binary) IsURL() bool { return b.URL != "" }

// IsImage reports whether the MIME type is an image type.
func (b *Binary) IsImage() bool {
	return len(b.ContentType) > 6 && b.ContentType[:6] == "image/"
}

// NewTextPart builds a text content part.
func NewTextPart(text string) ContentPart {
	return ContentPart{Type: ContentTypeText, Text: text}
}

// NewBinaryPart builds an inline base64 attachment part.
func NewBinaryPart(contentType, base64Data string) ContentPart {
	return ContentPart{Type: ContentTypeBinary, Binary: &Binary{ContentType: contentType, Base64: base64Data}}
}

// NewBinaryPartFromURL builds an attachment part referenced by URL.
func NewBinaryPartFromURL(contentType, url string) ContentPart {
	return ContentPart{Type: ContentTypeBinary, Binary: &Binary{ContentType: contentType, URL: url}}
}

// NewToolCallPart wraps a tool call as a content part.
func NewToolCallPart(toolCall ToolCall) ContentPart {
	return ContentPart{Type: ContentTypeToolCall, ToolCall: &toolCall}
}

// NewToolResponsePart wraps a tool response as a content part.
func NewToolResponsePart(toolResponse ToolResponse) ContentPart {
	return ContentPart{Type: ContentTypeToolResponse, ToolResponse: &toolResponse}
}

// NewThoughtSignaturePart wraps an opaque reasoning trace as a content part.
func NewThoughtSignaturePart(signature string) ContentPart {
	return ContentPart{Type: ContentTypeThoughtSignature, ThoughtSignature: signature}
}

// MessageContent is the ordered multipart content of a message. The order of
// parts is preserved verbatim across building, parsing, and serialization.
type MessageContent []ContentPart

// TextContent builds a single-part text content.
func TextContent(text string) MessageContent {
	return MessageContent{NewTextPart(text)}
}

// FirstText returns the first text part, or "" when there is none.
func (mc MessageContent) FirstText() string {
	for _, part := range mc {
		if part.Type == ContentTypeText {
			return part.Text
		}
	}
	return ""
}

// Texts returns all text parts in order.
func (mc MessageContent) Texts() []string {
	var texts []string
	for _, part := range mc {
		if part.Type == ContentTypeText {
			texts = append(texts, part.Text)
		}
	}
	return texts
}

// JoinedTexts concatenates all text parts with newlines. Returns "" when the
// content holds no text.
func (mc MessageContent) JoinedTexts() string {
	texts := mc.Texts()
	if len(texts) == 0 {
		return ""
	}
	joined := texts[0]
	for _, text := range texts[1:] {
		joined += "\n" + text
	}
	return joined
}

// ToolCalls returns all tool-call parts in order.
func (mc MessageContent) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, part := range mc {
		if part.Type == ContentTypeToolCall && part.ToolCall != nil {
			calls = append(calls, *part.ToolCall)
		}
	}
	return calls
}

// ThoughtSignatures returns all thought-signature parts in order.
func (mc MessageContent) ThoughtSignatures() []string {
	var signatures []string
	for _, part := range mc {
		if part.Type == ContentTypeThoughtSignature {
			signatures = append(signatures, part.ThoughtSignature)
		}
	}
	return signatures
}

// IsEmpty reports whether the content has no parts.
func (mc MessageContent) IsEmpty() bool { return len(mc) == 0 }
