// Package render turns session events, history records, and listings into
// terminal output. Rendering is stateless: everything goes through a
// Console handle so tests can substitute an in-memory sink.
package render

import (
	"github.com/charmbracelet/lipgloss"
)

// Pine brand-ish palette. Semantic names only; commands never pick raw
// colors themselves.
var (
	colorUser      = lipgloss.Color("#2196F3") // Blue
	colorAssistant = lipgloss.Color("#8BC34A") // Lime Green
	colorWarning   = lipgloss.Color("#FFC107") // Yellow
	colorError     = lipgloss.Color("#e53935") // Red
	colorMuted     = lipgloss.Color("#808080")
)

var (
	styleUser      = lipgloss.NewStyle().Foreground(colorUser).Bold(true)
	styleAssistant = lipgloss.NewStyle().Foreground(colorAssistant).Bold(true)
	styleWarning   = lipgloss.NewStyle().Foreground(colorWarning)
	styleError     = lipgloss.NewStyle().Foreground(colorError)
	styleSuccess   = lipgloss.NewStyle().Foreground(colorAssistant)
	styleDim       = lipgloss.NewStyle().Foreground(colorMuted)
	styleBold      = lipgloss.NewStyle().Bold(true)
)
