// Package style centralizes the lipgloss styles used by part views.
package style

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	Primary   = lipgloss.Color("#7C3AED") // violet
	Secondary = lipgloss.Color("#06B6D4") // cyan
	Success   = lipgloss.Color("#22C55E") // green
	Warning   = lipgloss.Color("#F59E0B") // amber
	Error     = lipgloss.Color("#EF4444") // red
	Muted     = lipgloss.Color("#6B7280") // gray
	Dim       = lipgloss.Color("#374151") // dark gray
)

// Part view styles.
var (
	Faint     = lipgloss.NewStyle().Foreground(Muted)
	ErrorText = lipgloss.NewStyle().Foreground(Error).Bold(true)

	// Reasoning bodies render dimmed and italic under their label.
	ReasoningLabel = lipgloss.NewStyle().Foreground(Warning).Bold(true)
	ReasoningBody  = lipgloss.NewStyle().Foreground(Muted).Italic(true)

	// Tool call line: ⏺ name(args)
	Indicator    = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	ToolName     = lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	ToolArg      = lipgloss.NewStyle().Foreground(Dim)
	ResultOK     = lipgloss.NewStyle().Foreground(Success)
	ResultFailed = lipgloss.NewStyle().Foreground(Error)

	// Connector (⎿) ties a tool result to its call.
	Connector = lipgloss.NewStyle().Foreground(Muted)

	// Image placeholder chip.
	ImageChip = lipgloss.NewStyle().Foreground(Secondary)

	// Unknown part tags.
	UnknownTag = lipgloss.NewStyle().Foreground(Dim)

	// Message roles in chat headers.
	UserLabel      = lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	AssistantLabel = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Timestamp      = lipgloss.NewStyle().Foreground(Muted)
)
