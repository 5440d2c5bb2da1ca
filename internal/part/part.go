// Package part defines the typed content parts that make up chat messages.
package part

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Type is the discriminator tag carried by every content part.
type Type string

const (
	TypeText       Type = "text"
	TypeReasoning  Type = "reasoning"
	TypeToolCall   Type = "tool_call"
	TypeToolResult Type = "tool_result"
	TypeImage      Type = "image"
	TypeError      Type = "error"
)

// Part is one piece of a chat message. Concrete types form a closed set;
// payloads the decoder does not recognize surface as Unknown.
type Part interface {
	Tag() Type
}

// Text is the primary message body, markdown by convention.
type Text struct {
	Text string `json:"text"`
}

// Tag returns the part discriminator.
func (Text) Tag() Type { return TypeText }

// Reasoning holds thinking tokens. When the provider withholds the full
// text (encrypted reasoning), only Summary is populated.
type Reasoning struct {
	Text    string `json:"text,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// Tag returns the part discriminator.
func (Reasoning) Tag() Type { return TypeReasoning }

// ToolCall is a tool invocation request emitted by the assistant.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input,omitempty"`
}

// Tag returns the part discriminator.
func (ToolCall) Tag() Type { return TypeToolCall }

// ToolResult is the outcome of a ToolCall. ToolCallID matches the call's ID.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
	IsError    bool   `json:"is_error,omitempty"`
}

// Tag returns the part discriminator.
func (ToolResult) Tag() Type { return TypeToolResult }

// ImageSource describes where image bytes come from: inline base64 data
// or a URL, never both.
type ImageSource struct {
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

// Image is an image attachment.
type Image struct {
	Source ImageSource `json:"source"`
}

// Tag returns the part discriminator.
func (Image) Tag() Type { return TypeImage }

// ByteSize reports the decoded payload size for inline data, 0 for URLs.
func (i Image) ByteSize() int {
	data := i.Source.Data
	if data == "" {
		return 0
	}
	size := base64.StdEncoding.DecodedLen(len(data))
	// DecodedLen counts padding as payload.
	if strings.HasSuffix(data, "==") {
		size -= 2
	} else if strings.HasSuffix(data, "=") {
		size--
	}
	return size
}

// Error marks a part the producing side failed to generate.
type Error struct {
	Message string `json:"message"`
}

// Tag returns the part discriminator.
func (Error) Tag() Type { return TypeError }

// Unknown preserves parts with an unrecognized tag so they can still be
// displayed instead of silently dropped.
type Unknown struct {
	TypeTag string
	Raw     json.RawMessage
}

// Tag returns the part discriminator.
func (u Unknown) Tag() Type { return Type(u.TypeTag) }
