package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Semantic color palette.
var (
	colorPrimary    = lipgloss.Color("#00BFFF") // Cyan: ids and headings
	colorAccent     = lipgloss.Color("#FFD700") // Gold: warnings
	colorSuccess    = lipgloss.Color("#00E676") // Green: applied edits
	colorDanger     = lipgloss.Color("#FF5252") // Red: errors
	colorMuted      = lipgloss.Color("#636363") // Gray: de-emphasized
	colorMutedLight = lipgloss.Color("#8C8C8C") // Lighter gray: normal text
	colorWhite      = lipgloss.Color("#EEEEEE") // Off-white: primary text
)

// Status icons.
const (
	iconDone    = "✓"
	iconFailed  = "✗"
	iconNoop    = "·"
	iconWarn    = "⚠"
	iconAdded   = "+"
	iconRemoved = "-"
)

// styles groups the lipgloss styles bound to one output renderer, so colors
// are dropped automatically when the writer is not a terminal.
type styles struct {
	heading lipgloss.Style
	id      lipgloss.Style
	text    lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	danger  lipgloss.Style
	label   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Foreground(colorPrimary).Bold(true),
		id:      r.NewStyle().Foreground(colorPrimary),
		text:    r.NewStyle().Foreground(colorWhite),
		muted:   r.NewStyle().Foreground(colorMuted),
		success: r.NewStyle().Foreground(colorSuccess).Bold(true),
		warn:    r.NewStyle().Foreground(colorAccent).Bold(true),
		danger:  r.NewStyle().Foreground(colorDanger).Bold(true),
		label:   r.NewStyle().Foreground(colorMutedLight).Bold(true),
	}
}
