// Package render maps chat message parts to their terminal views.
//
// The central operation is Renderer.Lines: given one part and the display
// settings fixed at construction, produce the lines of the one matching
// view. Dispatch is a total switch over the closed part set; unknown tags
// fall through to a raw-JSON view rather than an error.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"chatview/internal/markdown"
	"chatview/internal/part"
	"chatview/internal/style"

	"github.com/charmbracelet/lipgloss"
)

const (
	indicatorGlyph = "⏺"
	connectorGlyph = "⎿"

	// Tool output beyond this many lines is clipped with a count tail.
	maxResultLines = 8

	// One-line tool input previews are clipped at this many runes.
	maxInputPreview = 60
)

// Options fixes the display settings for a Renderer.
type Options struct {
	// Width is the wrap column for text bodies. Zero disables wrapping.
	Width int

	// Color enables lipgloss/glamour styling. When off every view emits
	// plain text.
	Color bool

	// Theme names the markdown style. Empty or "auto" detects the
	// terminal background.
	Theme string

	// ShowReasoning displays reasoning parts; otherwise they produce no
	// output at all.
	ShowReasoning bool

	// HideIndicatorTools lists tool names whose calls render without the
	// execution indicator glyph. Comes from startup configuration.
	HideIndicatorTools []string
}

// Renderer renders parts under a fixed set of display options.
type Renderer struct {
	opts Options

	// Derived from HideIndicatorTools once at construction.
	hiddenIndicator map[string]struct{}
}

// New builds a Renderer, computing derived display state up front.
func New(opts Options) *Renderer {
	var hidden map[string]struct{}
	if len(opts.HideIndicatorTools) > 0 {
		hidden = make(map[string]struct{}, len(opts.HideIndicatorTools))
		for _, name := range opts.HideIndicatorTools {
			name = strings.TrimSpace(name)
			if name != "" {
				hidden[name] = struct{}{}
			}
		}
	}
	return &Renderer{opts: opts, hiddenIndicator: hidden}
}

// Lines returns the rendered lines for one part. A nil result means the
// part produces no output under the current settings.
func (r *Renderer) Lines(p part.Part) []string {
	switch v := p.(type) {
	case part.Text:
		return r.textLines(v)
	case part.Reasoning:
		return r.reasoningLines(v)
	case part.ToolCall:
		return r.toolCallLines(v)
	case part.ToolResult:
		return r.toolResultLines(v)
	case part.Image:
		return r.imageLines(v)
	case part.Error:
		return r.errorLines(v)
	case part.Unknown:
		return r.unknownLines(v)
	default:
		// Parts added to the union without a view land here visibly.
		return []string{fmt.Sprintf("[%s] (unrenderable part)", p.Tag())}
	}
}

// HidesIndicator reports whether the tool's execution indicator is
// suppressed by configuration.
func (r *Renderer) HidesIndicator(toolName string) bool {
	_, ok := r.hiddenIndicator[toolName]
	return ok
}

func (r *Renderer) textLines(p part.Text) []string {
	text := strings.TrimRight(p.Text, "\n")
	if text == "" {
		return nil
	}
	if r.opts.Color {
		return strings.Split(markdown.Render(text, r.opts.Width, r.opts.Theme), "\n")
	}
	return wrapLines(text, r.opts.Width)
}

func (r *Renderer) reasoningLines(p part.Reasoning) []string {
	if !r.opts.ShowReasoning {
		return nil
	}

	label := "Reasoning"
	body := p.Text
	if body == "" {
		if p.Summary == "" {
			return nil
		}
		label = "Reasoning (summary)"
		body = p.Summary
	}

	lines := []string{r.styled(style.ReasoningLabel, label)}
	for _, line := range wrapLines(strings.TrimSpace(body), r.opts.Width) {
		lines = append(lines, r.styled(style.ReasoningBody, line))
	}
	return lines
}

func (r *Renderer) toolCallLines(p part.ToolCall) []string {
	name := p.Name
	if name == "" {
		name = "(unnamed tool)"
	}

	head := r.styled(style.ToolName, name)
	if preview := inputPreview(p.Input); preview != "" {
		head += r.styled(style.ToolArg, "("+preview+")")
	}

	if !r.HidesIndicator(p.Name) {
		head = r.styled(style.Indicator, indicatorGlyph) + " " + head
	}
	return []string{head}
}

func (r *Renderer) toolResultLines(p part.ToolResult) []string {
	body := strings.TrimRight(p.Output, "\n")

	bodyStyle := style.ResultOK
	if p.IsError {
		bodyStyle = style.ResultFailed
	}

	var bodyLines []string
	if body == "" {
		bodyLines = []string{"(no output)"}
	} else {
		bodyLines = strings.Split(body, "\n")
	}
	if len(bodyLines) > maxResultLines {
		clipped := len(bodyLines) - maxResultLines
		bodyLines = append(bodyLines[:maxResultLines], fmt.Sprintf("… (+%d lines)", clipped))
	}

	lines := make([]string, 0, len(bodyLines))
	for i, line := range bodyLines {
		prefix := "   "
		if i == 0 {
			prefix = r.styled(style.Connector, " "+connectorGlyph) + " "
			if p.IsError {
				line = "Error: " + line
			}
		}
		lines = append(lines, prefix+r.styled(bodyStyle, line))
	}
	return lines
}

func (r *Renderer) imageLines(p part.Image) []string {
	if p.Source.URL != "" {
		return []string{r.styled(style.ImageChip, fmt.Sprintf("[image %s]", p.Source.URL))}
	}

	mediaType := p.Source.MediaType
	if mediaType == "" {
		mediaType = "image"
	}
	chip := fmt.Sprintf("[%s · %s]", mediaType, formatByteSize(p.ByteSize()))
	return []string{r.styled(style.ImageChip, chip)}
}

func (r *Renderer) errorLines(p part.Error) []string {
	message := strings.TrimSpace(p.Message)
	if message == "" {
		message = "unknown error"
	}
	lines := wrapLines(message, r.opts.Width)
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if i == 0 {
			line = "Error: " + line
		}
		out = append(out, r.styled(style.ErrorText, line))
	}
	return out
}

func (r *Renderer) unknownLines(p part.Unknown) []string {
	tag := p.TypeTag
	if tag == "" {
		tag = "unknown"
	}
	lines := []string{r.styled(style.UnknownTag, "["+tag+"]")}
	lines = append(lines, strings.Split(formatJSON(string(p.Raw)), "\n")...)
	return lines
}

func (r *Renderer) styled(s lipgloss.Style, text string) string {
	if !r.opts.Color {
		return text
	}
	return s.Render(text)
}

// inputPreview compacts tool input JSON to a single clipped line.
func inputPreview(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	compacted := string(raw)
	if err := json.Compact(&buf, raw); err == nil {
		compacted = buf.String()
	}
	compacted = strings.Join(strings.Fields(compacted), " ")
	runes := []rune(compacted)
	if len(runes) > maxInputPreview {
		return string(runes[:maxInputPreview-1]) + "…"
	}
	return compacted
}

func formatByteSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func formatJSON(raw string) string {
	if raw == "" {
		return raw
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "", "  "); err == nil {
		return buf.String()
	}
	return raw
}

// wrapLines word-wraps each input line at width, preserving hard breaks.
func wrapLines(text string, width int) []string {
	raw := strings.Split(text, "\n")
	if width <= 0 {
		return raw
	}
	var out []string
	for _, line := range raw {
		out = append(out, wrapBody(line, width)...)
	}
	return out
}

func wrapBody(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
