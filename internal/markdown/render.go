// Package markdown converts markdown text to styled terminal output.
package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Render converts markdown to ANSI at the given wrap width using the named
// theme ("auto" or empty detects the terminal background).
// Falls back to the raw text if glamour is unavailable or errors.
func Render(md string, width int, theme string) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	if width <= 0 {
		width = 100
	}
	styleOpt := glamour.WithAutoStyle()
	if name := standardStyle(theme); name != "" {
		styleOpt = glamour.WithStandardStyle(name)
	}
	r, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	// glamour pads with blank lines and trailing newlines; trim both so
	// part views control their own spacing.
	return strings.Trim(out, "\n")
}

// standardStyle maps a configured theme to a glamour standard style name.
// Empty means auto detection.
func standardStyle(theme string) string {
	name := strings.ToLower(strings.TrimSpace(theme))
	if name == "" || name == "auto" {
		return ""
	}
	return name
}
