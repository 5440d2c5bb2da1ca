package render

import (
	"encoding/json"
	"strings"
	"testing"

	"chatview/internal/part"
)

func plainRenderer(opts Options) *Renderer {
	opts.Color = false
	return New(opts)
}

func TestLinesText(t *testing.T) {
	r := plainRenderer(Options{Width: 10})
	lines := r.Lines(part.Text{Text: "one two three four five six"})
	if len(lines) < 2 {
		t.Fatalf("expected wrapped lines, got %v", lines)
	}
	if strings.TrimSpace(lines[0]) == "" {
		t.Fatalf("first line should contain text: %v", lines)
	}
}

func TestLinesTextEmpty(t *testing.T) {
	r := plainRenderer(Options{})
	if lines := r.Lines(part.Text{}); lines != nil {
		t.Fatalf("empty text should produce no lines, got %v", lines)
	}
}

func TestLinesReasoningHiddenByDefault(t *testing.T) {
	r := plainRenderer(Options{})
	if lines := r.Lines(part.Reasoning{Text: "secret thinking"}); lines != nil {
		t.Fatalf("reasoning should be hidden, got %v", lines)
	}
}

func TestLinesReasoningShown(t *testing.T) {
	r := plainRenderer(Options{ShowReasoning: true})
	lines := r.Lines(part.Reasoning{Text: "step by step"})
	if len(lines) < 2 {
		t.Fatalf("expected label and body, got %v", lines)
	}
	if lines[0] != "Reasoning" {
		t.Fatalf("unexpected label: %q", lines[0])
	}
	if lines[1] != "step by step" {
		t.Fatalf("unexpected body: %q", lines[1])
	}
}

func TestLinesReasoningSummaryFallback(t *testing.T) {
	r := plainRenderer(Options{ShowReasoning: true})
	lines := r.Lines(part.Reasoning{Summary: "compressed thoughts"})
	if len(lines) == 0 || lines[0] != "Reasoning (summary)" {
		t.Fatalf("expected summary label, got %v", lines)
	}
}

func TestLinesToolCallIndicator(t *testing.T) {
	r := plainRenderer(Options{})
	lines := r.Lines(part.ToolCall{ID: "c1", Name: "bash", Input: json.RawMessage(`{"command":"ls"}`)})
	if len(lines) != 1 {
		t.Fatalf("expected single line, got %v", lines)
	}
	if !strings.HasPrefix(lines[0], "⏺ bash") {
		t.Fatalf("expected indicator prefix: %q", lines[0])
	}
	if !strings.Contains(lines[0], `{"command":"ls"}`) {
		t.Fatalf("expected input preview: %q", lines[0])
	}
}

func TestLinesToolCallIndicatorHidden(t *testing.T) {
	r := plainRenderer(Options{HideIndicatorTools: []string{"bash", "read_file"}})
	lines := r.Lines(part.ToolCall{Name: "bash"})
	if len(lines) != 1 {
		t.Fatalf("expected single line, got %v", lines)
	}
	if strings.Contains(lines[0], "⏺") {
		t.Fatalf("indicator should be suppressed for configured tool: %q", lines[0])
	}
	if !strings.HasPrefix(lines[0], "bash") {
		t.Fatalf("tool name should still lead the line: %q", lines[0])
	}

	other := r.Lines(part.ToolCall{Name: "web_search"})
	if !strings.HasPrefix(other[0], "⏺") {
		t.Fatalf("unlisted tool should keep its indicator: %q", other[0])
	}
}

func TestHidesIndicatorMemoized(t *testing.T) {
	r := New(Options{HideIndicatorTools: []string{" bash ", ""}})
	if !r.HidesIndicator("bash") {
		t.Fatal("expected trimmed tool name to be hidden")
	}
	if r.HidesIndicator("") {
		t.Fatal("empty names must not match")
	}
}

func TestLinesToolResult(t *testing.T) {
	r := plainRenderer(Options{})
	lines := r.Lines(part.ToolResult{ToolCallID: "c1", Output: "main.go\ngo.mod"})
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %v", lines)
	}
	if !strings.Contains(lines[0], "⎿") {
		t.Fatalf("first line should carry the connector: %q", lines[0])
	}
	if !strings.Contains(lines[1], "go.mod") {
		t.Fatalf("continuation line missing: %q", lines[1])
	}
}

func TestLinesToolResultError(t *testing.T) {
	r := plainRenderer(Options{})
	lines := r.Lines(part.ToolResult{ToolCallID: "c1", Output: "no such file", IsError: true})
	if !strings.Contains(lines[0], "Error: no such file") {
		t.Fatalf("error results should be labelled: %q", lines[0])
	}
}

func TestLinesToolResultClipped(t *testing.T) {
	long := strings.Repeat("line\n", 20)
	r := plainRenderer(Options{})
	lines := r.Lines(part.ToolResult{Output: long})
	if len(lines) != maxResultLines+1 {
		t.Fatalf("expected %d lines, got %d", maxResultLines+1, len(lines))
	}
	last := lines[len(lines)-1]
	if !strings.Contains(last, "(+12 lines)") {
		t.Fatalf("expected clip tail, got %q", last)
	}
}

func TestLinesImagePlaceholder(t *testing.T) {
	r := plainRenderer(Options{})
	img := part.Image{Source: part.ImageSource{MediaType: "image/png", Data: strings.Repeat("A", 2048)}}
	lines := r.Lines(img)
	if len(lines) != 1 {
		t.Fatalf("expected single placeholder line, got %v", lines)
	}
	if !strings.Contains(lines[0], "image/png") || !strings.Contains(lines[0], "KB") {
		t.Fatalf("placeholder should name media type and size: %q", lines[0])
	}
}

func TestLinesImageURL(t *testing.T) {
	r := plainRenderer(Options{})
	lines := r.Lines(part.Image{Source: part.ImageSource{URL: "https://example.com/cat.png"}})
	if !strings.Contains(lines[0], "https://example.com/cat.png") {
		t.Fatalf("URL images should show their URL: %q", lines[0])
	}
}

func TestLinesError(t *testing.T) {
	r := plainRenderer(Options{})
	lines := r.Lines(part.Error{Message: "stream interrupted"})
	if len(lines) != 1 || lines[0] != "Error: stream interrupted" {
		t.Fatalf("unexpected error view: %v", lines)
	}
}

func TestLinesErrorEmptyMessage(t *testing.T) {
	r := plainRenderer(Options{})
	lines := r.Lines(part.Error{})
	if len(lines) != 1 || !strings.Contains(lines[0], "unknown error") {
		t.Fatalf("unexpected view for empty error: %v", lines)
	}
}

func TestLinesUnknownPart(t *testing.T) {
	r := plainRenderer(Options{})
	lines := r.Lines(part.Unknown{TypeTag: "frobnicate", Raw: json.RawMessage(`{"type":"frobnicate","value":42}`)})
	if len(lines) < 2 {
		t.Fatalf("expected tag and body, got %v", lines)
	}
	if lines[0] != "[frobnicate]" {
		t.Fatalf("unexpected tag line: %q", lines[0])
	}
	if !strings.Contains(strings.Join(lines, "\n"), "\"value\": 42") {
		t.Fatalf("body should be pretty-printed JSON: %v", lines)
	}
}

func TestInputPreviewClipped(t *testing.T) {
	big := `{"command":"` + strings.Repeat("x", 200) + `"}`
	preview := inputPreview(json.RawMessage(big))
	if len([]rune(preview)) != maxInputPreview {
		t.Fatalf("expected preview clipped to %d runes, got %d", maxInputPreview, len([]rune(preview)))
	}
	if !strings.HasSuffix(preview, "…") {
		t.Fatalf("clipped preview should end with ellipsis: %q", preview)
	}
}
