// Package view renders a transcript according to CLI options.
package view

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"chatview/internal/part"
	"chatview/internal/render"
	"chatview/internal/session"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Options defines the configurable parameters for rendering a transcript.
type Options struct {
	Path        string
	Format      string
	Theme       string
	Wrap        int
	MaxMessages int

	RoleArg     string
	PartTypeArg string
	AllFilter   bool

	ShowReasoning      bool
	HideIndicatorTools []string

	ForceColor   bool
	ForceNoColor bool
	RawFile      bool

	Out     io.Writer
	OutFile *os.File
}

// Run renders a session transcript according to the provided options.
func Run(opts Options) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	if opts.RawFile {
		return copyFile(opts.Out, opts.Path)
	}

	filters, err := buildViewFilters(opts.AllFilter, opts.RoleArg, opts.PartTypeArg)
	if err != nil {
		return err
	}

	formatMode := strings.ToLower(opts.Format)
	if formatMode == "" {
		formatMode = "text"
	}

	if _, err := session.ReadSessionMeta(opts.Path); err != nil {
		return err
	}

	processMessages := func(fn func(session.Message) error) error {
		return session.IterateMessages(opts.Path, func(msg session.Message) error {
			if !messageMatchesFilters(msg, filters) {
				return nil
			}
			return fn(msg)
		})
	}

	useColor := resolveColorChoice(opts)

	switch formatMode {
	case "text":
		renderer := render.New(render.Options{
			Width:              opts.Wrap,
			Color:              useColor,
			Theme:              opts.Theme,
			ShowReasoning:      opts.ShowReasoning,
			HideIndicatorTools: opts.HideIndicatorTools,
		})

		messages, err := collectMessages(processMessages, opts.MaxMessages)
		if err != nil {
			return err
		}
		for idx, msg := range messages {
			if idx > 0 {
				fmt.Fprintln(opts.Out)
			}
			printMessage(opts.Out, msg, idx+1, renderer, filters, useColor)
		}
		return nil

	case "raw":
		messages, err := collectMessages(processMessages, opts.MaxMessages)
		if err != nil {
			return err
		}
		for _, msg := range messages {
			fmt.Fprintln(opts.Out, msg.Raw)
		}
		return nil

	case "chat":
		width := determineWidth(opts.OutFile, opts.Wrap)

		// Bubble geometry needs unstyled bodies; headers are colored
		// separately during bubble assembly.
		renderer := render.New(render.Options{
			ShowReasoning:      opts.ShowReasoning,
			HideIndicatorTools: opts.HideIndicatorTools,
		})

		messages, err := collectMessages(processMessages, opts.MaxMessages)
		if err != nil {
			return err
		}
		if len(messages) == 0 {
			return nil
		}

		lines := renderChatTranscript(messages, renderer, filters, width, useColor)
		if len(lines) == 0 {
			return nil
		}
		if opts.OutFile != nil && isatty.IsTerminal(opts.OutFile.Fd()) {
			return pipeThroughPager(lines, useColor)
		}
		return writeLines(opts.Out, lines)

	default:
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

func collectMessages(process func(func(session.Message) error) error, max int) ([]session.Message, error) {
	if max > 0 {
		ring := newMessageRing(max)
		if err := process(func(msg session.Message) error {
			ring.push(msg)
			return nil
		}); err != nil {
			return nil, err
		}
		return ring.slice(), nil
	}

	var collected []session.Message
	if err := process(func(msg session.Message) error {
		collected = append(collected, msg)
		return nil
	}); err != nil {
		return nil, err
	}
	return collected, nil
}

type viewFilters struct {
	roles     map[session.Role]struct{}
	partTypes map[part.Type]struct{}
}

func buildViewFilters(allFilter bool, roleArg, partTypeArg string) (viewFilters, error) {
	var filters viewFilters

	// --all disables role filtering but keeps any explicit part filter.
	if !allFilter {
		roleFilter, roleProvided, err := parseRoleArg(roleArg)
		if err != nil {
			return filters, err
		}
		if roleProvided {
			filters.roles = roleFilter
		} else {
			filters.roles = map[session.Role]struct{}{
				session.RoleUser:      {},
				session.RoleAssistant: {},
			}
		}
	}

	partFilter, partProvided, err := parsePartTypeArg(partTypeArg)
	if err != nil {
		return filters, err
	}
	if partProvided {
		filters.partTypes = partFilter
	}

	return filters, nil
}

func parseRoleArg(arg string) (map[session.Role]struct{}, bool, error) {
	values := parseCSV(arg)
	if len(values) == 0 {
		return nil, false, nil
	}
	if len(values) == 1 && values[0] == "all" {
		return nil, true, nil
	}

	lookup := map[string]session.Role{
		"user":      session.RoleUser,
		"assistant": session.RoleAssistant,
		"tool":      session.RoleTool,
		"system":    session.RoleSystem,
	}

	set := make(map[session.Role]struct{}, len(values))
	for _, token := range values {
		role, ok := lookup[token]
		if !ok {
			return nil, true, fmt.Errorf("unknown role %q", token)
		}
		set[role] = struct{}{}
	}
	return set, true, nil
}

func parsePartTypeArg(arg string) (map[part.Type]struct{}, bool, error) {
	values := parseCSV(arg)
	if len(values) == 0 {
		return nil, false, nil
	}
	if len(values) == 1 && values[0] == "all" {
		return nil, true, nil
	}

	lookup := map[string]part.Type{
		"text":        part.TypeText,
		"reasoning":   part.TypeReasoning,
		"tool_call":   part.TypeToolCall,
		"tool_result": part.TypeToolResult,
		"image":       part.TypeImage,
		"error":       part.TypeError,
	}

	set := make(map[part.Type]struct{}, len(values))
	for _, token := range values {
		partType, ok := lookup[token]
		if !ok {
			return nil, true, fmt.Errorf("unknown part type %q", token)
		}
		set[partType] = struct{}{}
	}
	return set, true, nil
}

func parseCSV(arg string) []string {
	if strings.TrimSpace(arg) == "" {
		return nil
	}
	parts := strings.Split(arg, ",")
	output := make([]string, 0, len(parts))
	for _, p := range parts {
		token := strings.TrimSpace(strings.ToLower(p))
		if token != "" {
			output = append(output, token)
		}
	}
	return output
}

func messageMatchesFilters(msg session.Message, filters viewFilters) bool {
	if filters.roles != nil {
		if _, ok := filters.roles[msg.Role]; !ok {
			return false
		}
	}
	if filters.partTypes != nil && len(selectParts(msg.Parts, filters)) == 0 {
		return false
	}
	return true
}

// selectParts applies the part-type filter to a message's parts.
func selectParts(parts []part.Part, filters viewFilters) []part.Part {
	if filters.partTypes == nil {
		return parts
	}
	selected := make([]part.Part, 0, len(parts))
	for _, p := range parts {
		if _, ok := filters.partTypes[p.Tag()]; ok {
			selected = append(selected, p)
		}
	}
	return selected
}

// messageBodyLines renders a message's filtered parts in order.
func messageBodyLines(msg session.Message, renderer *render.Renderer, filters viewFilters) []string {
	var lines []string
	for _, p := range selectParts(msg.Parts, filters) {
		rendered := renderer.Lines(p)
		if len(rendered) == 0 {
			continue
		}
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, rendered...)
	}
	return lines
}

type messageRing struct {
	data   []session.Message
	start  int
	length int
}

func newMessageRing(capacity int) *messageRing {
	if capacity <= 0 {
		return &messageRing{}
	}
	return &messageRing{data: make([]session.Message, capacity)}
}

func (r *messageRing) push(msg session.Message) {
	if len(r.data) == 0 {
		return
	}
	idx := (r.start + r.length) % len(r.data)
	r.data[idx] = msg
	if r.length < len(r.data) {
		r.length++
		return
	}
	r.start = (r.start + 1) % len(r.data)
}

func (r *messageRing) slice() []session.Message {
	if r.length == 0 {
		return nil
	}
	result := make([]session.Message, r.length)
	for i := 0; i < r.length; i++ {
		result[i] = r.data[(r.start+i)%len(r.data)]
	}
	return result
}

func determineWidth(out *os.File, wrap int) int {
	if wrap > 0 {
		return wrap
	}
	if out != nil {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if colsStr := os.Getenv("COLUMNS"); colsStr != "" {
		if v, err := strconv.Atoi(colsStr); err == nil && v > 0 {
			return v
		}
	}
	return 80
}

func pipeThroughPager(lines []string, colorEnabled bool) error {
	text := strings.Join(lines, "\n")
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	pagerCmd := os.Getenv("PAGER")
	var cmd *exec.Cmd
	if pagerCmd == "" {
		args := []string{"less"}
		if colorEnabled {
			args = append(args, "-R")
		}
		cmd = exec.Command(args[0], args[1:]...) // #nosec G204
	} else {
		cmd = exec.Command("sh", "-c", pagerCmd) // #nosec G204
	}

	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create pager pipe: %w", err)
	}
	go func() {
		defer stdin.Close()
		io.WriteString(stdin, text) //nolint:errcheck
	}()

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run pager: %w", err)
	}

	return nil
}

func writeLines(out io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func printMessage(out io.Writer, msg session.Message, index int, renderer *render.Renderer, filters viewFilters, useColor bool) {
	roleLabel := string(msg.Role)
	if roleLabel == "" {
		roleLabel = "message"
	}

	ts := "-"
	if !msg.Timestamp.IsZero() {
		ts = msg.Timestamp.Format(time.RFC3339)
	}
	headerPlain := fmt.Sprintf("[#%03d] %s | %s", index, roleLabel, ts)

	indexText := fmt.Sprintf("#%03d", index)
	roleText := roleLabel
	tsText := ts
	separator := "|"

	if useColor {
		indexText = colorize(true, ansiBoldWhite, indexText)
		roleText = colorize(true, roleColor(msg.Role), roleText)
		tsText = colorize(true, ansiTimestamp, tsText)
		separator = colorize(true, ansiSeparator, "|")
	}

	header := fmt.Sprintf("[%s] %s %s %s", indexText, roleText, separator, tsText)
	fmt.Fprintln(out, header)
	fmt.Fprintln(out, strings.Repeat("-", len(headerPlain)))

	lines := messageBodyLines(msg, renderer, filters)
	if len(lines) == 0 {
		prefix := "|"
		if useColor {
			prefix = colorize(true, ansiSeparator, "|")
		}
		fmt.Fprintf(out, "%s %s\n", prefix, "(no content)")
		return
	}
	linePrefix := "| "
	emptyPrefix := "|"
	if useColor {
		separatorColor := colorize(true, ansiSeparator, "|")
		linePrefix = separatorColor + " "
		emptyPrefix = separatorColor
	}
	for _, line := range lines {
		if line == "" {
			fmt.Fprintln(out, emptyPrefix)
			continue
		}
		fmt.Fprintf(out, "%s%s\n", linePrefix, line)
	}
}

const (
	ansiReset     = "\x1b[0m"
	ansiBoldWhite = "\x1b[1;97m"
	ansiTimestamp = "\x1b[38;5;245m"
	ansiSeparator = "\x1b[38;5;240m"
	ansiAssistant = "\x1b[38;5;44m"
	ansiUser      = "\x1b[38;5;220m"
	ansiTool      = "\x1b[38;5;207m"
)

func colorize(enabled bool, code string, text string) string {
	if !enabled {
		return text
	}
	return code + text + ansiReset
}

func roleColor(role session.Role) string {
	switch role {
	case session.RoleAssistant:
		return ansiAssistant
	case session.RoleUser:
		return ansiUser
	case session.RoleTool, session.RoleSystem:
		return ansiTool
	default:
		return ansiSeparator
	}
}

func resolveColorChoice(opts Options) bool {
	if opts.ForceColor {
		return true
	}
	if opts.ForceNoColor {
		return false
	}
	return shouldUseColorAuto(opts.Out)
}

func shouldUseColorAuto(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func copyFile(dst io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(dst, f)
	return err
}
