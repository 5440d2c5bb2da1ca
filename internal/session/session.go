// Package session models chatview transcript files and parses their JSONL.
package session

import (
	"time"

	"chatview/internal/part"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// RecordType is the top-level "type" field in transcript JSONL records.
type RecordType string

const (
	RecordTypeSessionMeta RecordType = "session_meta"
	RecordTypeMessage     RecordType = "message"
)

// Meta is the session_meta record at the head of a transcript.
type Meta struct {
	ID         string
	Path       string
	CWD        string
	Originator string
	CLIVersion string
	StartedAt  time.Time
}

// Message is one chat message: a role plus an ordered list of parts.
type Message struct {
	Timestamp time.Time
	Role      Role
	Parts     []part.Part
	Raw       string
}

// Summary holds the lightweight listing fields for one session file.
type Summary struct {
	ID              string    `json:"session_id"`
	Path            string    `json:"path"`
	CWD             string    `json:"cwd"`
	StartedAt       time.Time `json:"started_at"`
	Summary         string    `json:"summary"`
	MessageCount    int       `json:"message_count"`
	DurationSeconds int       `json:"duration_seconds"`
}
