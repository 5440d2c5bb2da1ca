package part

import (
	"encoding/json"
	"fmt"
	"strings"
)

type taggedPart struct {
	Type       string          `json:"type"`
	Text       string          `json:"text"`
	Summary    string          `json:"summary"`
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Input      json.RawMessage `json:"input"`
	ToolCallID string          `json:"tool_call_id"`
	Output     json.RawMessage `json:"output"`
	IsError    bool            `json:"is_error"`
	Source     *ImageSource    `json:"source"`
	Message    string          `json:"message"`
}

// Decode converts one raw JSON object into its typed part.
func Decode(raw json.RawMessage) (Part, error) {
	var tp taggedPart
	if err := json.Unmarshal(raw, &tp); err != nil {
		return nil, fmt.Errorf("unmarshal part: %w", err)
	}

	switch Type(tp.Type) {
	case TypeText:
		return Text{Text: tp.Text}, nil
	case TypeReasoning:
		return Reasoning{Text: tp.Text, Summary: tp.Summary}, nil
	case TypeToolCall:
		return ToolCall{ID: tp.ID, Name: tp.Name, Input: tp.Input}, nil
	case TypeToolResult:
		return ToolResult{
			ToolCallID: tp.ToolCallID,
			Output:     decodeOutput(tp.Output),
			IsError:    tp.IsError,
		}, nil
	case TypeImage:
		var src ImageSource
		if tp.Source != nil {
			src = *tp.Source
		}
		return Image{Source: src}, nil
	case TypeError:
		return Error{Message: tp.Message}, nil
	default:
		return Unknown{TypeTag: tp.Type, Raw: raw}, nil
	}
}

// DecodeList converts a JSON parts array. A bare string is accepted as a
// single text part, matching what older logs emit.
func DecodeList(raw json.RawMessage) ([]Part, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return []Part{Text{Text: asString}}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("unmarshal parts array: %w", err)
	}

	parts := make([]Part, 0, len(items))
	for _, item := range items {
		p, err := Decode(item)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}

// decodeOutput flattens a tool result body. Output is usually a plain
// string, but some producers nest text blocks the way message parts do.
func decodeOutput(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}

	var nested []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		var texts []string
		for _, block := range nested {
			if block.Text != "" {
				texts = append(texts, block.Text)
			}
		}
		return strings.Join(texts, "\n")
	}

	return string(raw)
}
