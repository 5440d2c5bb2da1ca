package view

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chatview/internal/part"
	"chatview/internal/render"
	"chatview/internal/session"
)

func fixturePath(name string) string {
	return filepath.Join("..", "..", "testdata", "sessions", name)
}

func TestBuildViewFiltersDefaults(t *testing.T) {
	filters, err := buildViewFilters(false, "", "")
	if err != nil {
		t.Fatalf("buildViewFilters returned error: %v", err)
	}
	if filters.roles == nil || len(filters.roles) != 2 {
		t.Fatalf("expected default role filter for user/assistant, got %#v", filters.roles)
	}
	if _, ok := filters.roles[session.RoleUser]; !ok {
		t.Fatal("default roles should include user")
	}
	if filters.partTypes != nil {
		t.Fatalf("part types should be unfiltered by default, got %#v", filters.partTypes)
	}
}

func TestBuildViewFiltersAll(t *testing.T) {
	filters, err := buildViewFilters(true, "", "tool_call,tool_result")
	if err != nil {
		t.Fatalf("buildViewFilters returned error: %v", err)
	}
	if filters.roles != nil {
		t.Fatalf("--all should disable role filtering, got %#v", filters.roles)
	}
	if len(filters.partTypes) != 2 {
		t.Fatalf("explicit part filter should survive --all: %#v", filters.partTypes)
	}
}

func TestParseRoleArgUnknown(t *testing.T) {
	if _, _, err := parseRoleArg("user,unknown"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestParsePartTypeArgUnknown(t *testing.T) {
	if _, _, err := parsePartTypeArg("text,bogus"); err == nil {
		t.Fatal("expected error for unknown part type")
	}
}

func TestMessageMatchesFilters(t *testing.T) {
	filters := viewFilters{
		roles: map[session.Role]struct{}{
			session.RoleAssistant: {},
		},
	}

	msg := session.Message{Role: session.RoleAssistant, Parts: []part.Part{part.Text{Text: "hi"}}}
	if !messageMatchesFilters(msg, filters) {
		t.Fatal("expected message to match filters")
	}

	msg.Role = session.RoleUser
	if messageMatchesFilters(msg, filters) {
		t.Fatal("unexpected match for user role")
	}
}

func TestMessageMatchesPartFilter(t *testing.T) {
	filters := viewFilters{
		partTypes: map[part.Type]struct{}{
			part.TypeToolCall: {},
		},
	}

	withCall := session.Message{Role: session.RoleAssistant, Parts: []part.Part{
		part.Text{Text: "hello"},
		part.ToolCall{Name: "bash"},
	}}
	if !messageMatchesFilters(withCall, filters) {
		t.Fatal("message with a tool call should match")
	}

	textOnly := session.Message{Role: session.RoleAssistant, Parts: []part.Part{part.Text{Text: "hello"}}}
	if messageMatchesFilters(textOnly, filters) {
		t.Fatal("text-only message should be filtered out")
	}
}

func TestMessageRing(t *testing.T) {
	ring := newMessageRing(2)
	for i := 0; i < 5; i++ {
		ring.push(session.Message{Timestamp: time.Date(2025, 11, 2, 10, 0, i, 0, time.UTC)})
	}
	kept := ring.slice()
	if len(kept) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(kept))
	}
	if kept[0].Timestamp.Second() != 3 || kept[1].Timestamp.Second() != 4 {
		t.Fatalf("ring should keep the newest messages: %v", kept)
	}
}

func TestRenderChatTranscriptAlignment(t *testing.T) {
	renderer := render.New(render.Options{})
	messages := []session.Message{
		{
			Role:      session.RoleUser,
			Timestamp: time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC),
			Parts:     []part.Part{part.Text{Text: "hello there"}},
		},
		{
			Role:      session.RoleAssistant,
			Timestamp: time.Date(2025, 11, 2, 12, 0, 5, 0, time.UTC),
			Parts:     []part.Part{part.Text{Text: "hi, how can I help you today?"}},
		},
	}

	lines := renderChatTranscript(messages, renderer, viewFilters{}, 80, false)
	if len(lines) == 0 {
		t.Fatal("expected chat lines")
	}

	userTop := findPrefix(lines, "╭")
	if userTop < 0 {
		t.Fatalf("failed to locate user bubble: %v", lines)
	}

	next := findPrefix(lines[userTop+1:], "╭")
	if next < 0 {
		t.Fatalf("failed to locate assistant bubble: %v", lines)
	}
	assistantTop := next + userTop + 1

	if idx := strings.Index(lines[userTop], "╭"); idx <= 2 {
		t.Fatalf("user bubble should be right aligned, got index %d line %q", idx, lines[userTop])
	}

	if !strings.HasPrefix(lines[assistantTop], "  ╭") {
		t.Fatalf("assistant bubble should be left aligned: %q", lines[assistantTop])
	}
}

func TestRenderChatBubbleColoredHeader(t *testing.T) {
	renderer := render.New(render.Options{})
	msg := session.Message{
		Role:      session.RoleUser,
		Timestamp: time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC),
		Parts:     []part.Part{part.Text{Text: "hello"}},
	}

	lines := renderChatBubble(msg, renderer, viewFilters{}, 80, 2, true)
	if len(lines) < 3 {
		t.Fatalf("expected bubble with header and body, got %v", lines)
	}

	header := lines[1]
	if !strings.Contains(header, "User") || !strings.Contains(header, "·") {
		t.Fatalf("styled header should keep label and separator: %q", header)
	}
	for _, line := range lines {
		if visibleWidth(line) > 80 {
			t.Fatalf("styling must not widen the bubble: %q", line)
		}
	}
}

func findPrefix(lines []string, prefix string) int {
	for i, line := range lines {
		if strings.HasPrefix(line, prefix) || strings.Contains(line, prefix) {
			return i
		}
	}
	return -1
}

func TestRunFormatRaw(t *testing.T) {
	path := fixturePath("sample.jsonl")
	var buf bytes.Buffer
	opts := Options{
		Path:      path,
		Format:    "raw",
		AllFilter: true,
		Out:       &buf,
	}
	if err := Run(opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	wantBytes, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample file: %v", err)
	}
	var wantLines []string
	for _, line := range strings.Split(strings.TrimRight(string(wantBytes), "\n"), "\n") {
		if strings.Contains(line, "\"type\":\"session_meta\"") {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		wantLines = append(wantLines, line)
	}
	want := strings.Join(wantLines, "\n") + "\n"
	if buf.String() != want {
		t.Fatalf("raw output mismatch\nwant:\n%q\n\ngot:\n%q", want, buf.String())
	}
}

func TestRunFormatTextReasoningHidden(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{
		Path:         fixturePath("sample.jsonl"),
		Format:       "text",
		AllFilter:    true,
		ForceNoColor: true,
		Out:          &buf,
	}
	if err := Run(opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "directory listing") {
		t.Fatalf("reasoning should be hidden by default:\n%s", out)
	}
	if !strings.Contains(out, "⏺ list_files") {
		t.Fatalf("tool call line missing:\n%s", out)
	}
	if !strings.Contains(out, "Error: stream interrupted") {
		t.Fatalf("error part missing:\n%s", out)
	}
}

func TestRunFormatTextReasoningShown(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{
		Path:          fixturePath("sample.jsonl"),
		Format:        "text",
		AllFilter:     true,
		ShowReasoning: true,
		ForceNoColor:  true,
		Out:           &buf,
	}
	if err := Run(opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !strings.Contains(buf.String(), "directory listing") {
		t.Fatalf("reasoning should be shown:\n%s", buf.String())
	}
}

func TestRunFormatTextHiddenIndicator(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{
		Path:               fixturePath("sample.jsonl"),
		Format:             "text",
		AllFilter:          true,
		HideIndicatorTools: []string{"list_files"},
		ForceNoColor:       true,
		Out:                &buf,
	}
	if err := Run(opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "⏺") {
		t.Fatalf("indicator should be suppressed by configuration:\n%s", out)
	}
	if !strings.Contains(out, "list_files") {
		t.Fatalf("tool name should still appear:\n%s", out)
	}
}

func TestRunUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{
		Path:   fixturePath("sample.jsonl"),
		Format: "html",
		Out:    &buf,
	}
	if err := Run(opts); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
