package session

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"chatview/internal/part"
)

// ErrSessionMetaNotFound is returned when a transcript lacks session_meta.
var ErrSessionMetaNotFound = errors.New("session_meta record not found")

// ReadSessionMeta loads metadata from the first session_meta record in path.
func ReadSessionMeta(path string) (*Meta, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session file: %w", err)
	}
	defer file.Close()

	scanner := newScanner(file)
	for scanner.Scan() {
		meta, ok := tryParseMeta(scanner.Bytes())
		if ok {
			meta.Path = path
			return meta, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	return nil, ErrSessionMetaNotFound
}

// FirstUserSummary returns the first user message text (trimmed to 160
// characters), the message count, and the last timestamp in the session.
func FirstUserSummary(path string) (summary string, messageCount int, lastTimestamp time.Time, err error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, time.Time{}, fmt.Errorf("open session file: %w", err)
	}
	defer file.Close()

	scanner := newScanner(file)
	for scanner.Scan() {
		msg, ok := tryParseMessage(scanner.Bytes())
		if !ok {
			continue
		}

		if !msg.Timestamp.IsZero() && msg.Timestamp.After(lastTimestamp) {
			lastTimestamp = msg.Timestamp
		}

		messageCount++
		if summary == "" && msg.Role == RoleUser {
			summary = buildSummaryText(msg.Parts)
		}
	}

	if err := scanner.Err(); err != nil {
		return summary, messageCount, lastTimestamp, fmt.Errorf("scan session: %w", err)
	}

	return summary, messageCount, lastTimestamp, nil
}

// IterateMessages walks the transcript and calls fn for each message.
// Records that fail to decode are skipped, not fatal.
func IterateMessages(path string, fn func(Message) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open session file: %w", err)
	}
	defer file.Close()

	scanner := newScanner(file)
	for scanner.Scan() {
		msg, ok := tryParseMessage(scanner.Bytes())
		if !ok {
			continue
		}
		if err := fn(msg); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan session: %w", err)
	}

	return nil
}

// summaryMaxRunes bounds the summary length, ellipsis included.
const summaryMaxRunes = 160

// buildSummaryText joins the leading text parts into a short description.
func buildSummaryText(parts []part.Part) string {
	var builder strings.Builder
	for _, p := range parts {
		text, ok := p.(part.Text)
		if !ok || text.Text == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteRune(' ')
		}
		builder.WriteString(strings.TrimSpace(text.Text))
		if builder.Len() >= summaryMaxRunes {
			break
		}
	}
	return clipSummaryText(builder.String())
}

func clipSummaryText(s string) string {
	runes := []rune(s)
	if len(runes) <= summaryMaxRunes {
		return s
	}
	return string(runes[:summaryMaxRunes-1]) + "…"
}

func newScanner(file *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(file)
	// Allow large payload lines such as inline image data.
	const maxCapacity = 8 * 1024 * 1024
	buf := make([]byte, 1024)
	scanner.Buffer(buf, maxCapacity)
	return scanner
}

type rawRecord struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Role      string          `json:"role"`
	Parts     json.RawMessage `json:"parts"`
	Payload   json.RawMessage `json:"payload"`
}

type metaPayload struct {
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	CWD        string `json:"cwd"`
	Originator string `json:"originator"`
	CLIVersion string `json:"cli_version"`
}

func tryParseMeta(raw []byte) (*Meta, bool) {
	var rec rawRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false
	}
	if RecordType(rec.Type) != RecordTypeSessionMeta {
		return nil, false
	}

	var payload metaPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		return nil, false
	}

	tsValue := payload.Timestamp
	if tsValue == "" {
		tsValue = rec.Timestamp
	}
	start, err := parseTimestamp(tsValue)
	if err != nil {
		return nil, false
	}

	return &Meta{
		ID:         payload.ID,
		CWD:        payload.CWD,
		Originator: payload.Originator,
		CLIVersion: payload.CLIVersion,
		StartedAt:  start,
	}, true
}

func tryParseMessage(raw []byte) (Message, bool) {
	var rec rawRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Message{}, false
	}
	if RecordType(rec.Type) != RecordTypeMessage {
		return Message{}, false
	}

	var ts time.Time
	if rec.Timestamp != "" {
		parsed, err := parseTimestamp(rec.Timestamp)
		if err != nil {
			return Message{}, false
		}
		ts = parsed
	}

	parts, err := part.DecodeList(rec.Parts)
	if err != nil {
		return Message{}, false
	}

	return Message{
		Timestamp: ts,
		Role:      Role(rec.Role),
		Parts:     parts,
		Raw:       string(raw),
	}, true
}

func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("missing timestamp")
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, value)
}
