// Package tui provides the shell window.
//
// The TUI uses Bubble Tea for the application framework and Lipgloss for styling.
// It displays:
// - The backend state, pid and uptime
// - The launch details (interpreter, script, launch ID)
// - Modal dialogs for launch failures
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/randomizedcoder/pyshell/internal/dialog"
	"github.com/randomizedcoder/pyshell/internal/supervisor"
)

// =============================================================================
// Color Palette
// =============================================================================

// Colors based on a modern dark theme
var (
	// Primary colors
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan

	// Status colors
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorWarning = lipgloss.Color("#F59E0B") // Amber
	colorError   = lipgloss.Color("#EF4444") // Red
	colorInfo    = lipgloss.Color("#3B82F6") // Blue

	// Neutral colors
	colorText      = lipgloss.Color("#E5E7EB") // Light gray
	colorTextMuted = lipgloss.Color("#9CA3AF") // Medium gray
	colorTextDim   = lipgloss.Color("#6B7280") // Dark gray
	colorBorder    = lipgloss.Color("#374151") // Border gray
)

// =============================================================================
// Base Styles
// =============================================================================

var (
	mutedStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	// Title styles
	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)
)

// =============================================================================
// Status Indicator Styles
// =============================================================================

var (
	statusOK = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	statusWarning = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	statusError = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	statusInfo = lipgloss.NewStyle().
			Foreground(colorInfo).
			Bold(true)
)

// =============================================================================
// Layout Styles
// =============================================================================

var (
	// Box/panel styles
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	// Header style
	headerStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorPrimary).
			Bold(true).
			Padding(0, 1).
			MarginBottom(1)

	// Section header style
	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(colorBorder)

	// Footer style
	footerStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			MarginTop(1)
)

// =============================================================================
// Value Styles
// =============================================================================

var (
	valueStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	valueBadStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Width(14)
)

// =============================================================================
// Dialog Styles
// =============================================================================

var (
	dialogBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(1, 2)

	dialogBodyStyle = lipgloss.NewStyle().
			Foreground(colorText)

	dialogButtonStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Background(colorPrimary).
				Bold(true).
				Padding(0, 2).
				MarginTop(1)
)

// =============================================================================
// Backend State Indicator
// =============================================================================

// StateStyle returns the style for a backend state.
func StateStyle(state supervisor.State) lipgloss.Style {
	switch state {
	case supervisor.StateRunning:
		return statusOK
	case supervisor.StateFailedToStart:
		return statusError
	case supervisor.StateExited, supervisor.StateTerminated:
		return statusWarning
	default:
		return statusInfo
	}
}

// StateLabel returns a styled label for a backend state.
func StateLabel(state supervisor.State) string {
	var text string
	switch state {
	case supervisor.StateNotStarted:
		text = "● Starting"
	case supervisor.StateRunning:
		text = "● Running"
	case supervisor.StateFailedToStart:
		text = "● Failed to start"
	case supervisor.StateExited:
		text = "● Exited"
	case supervisor.StateTerminated:
		text = "● Terminated"
	default:
		text = "● Unknown"
	}
	return StateStyle(state).Render(text)
}

// SeverityColor returns the border color for a dialog severity.
func SeverityColor(s dialog.Severity) lipgloss.Color {
	switch s {
	case dialog.SeverityError:
		return colorError
	case dialog.SeverityWarning:
		return colorWarning
	default:
		return colorInfo
	}
}

// =============================================================================
// Helper Functions
// =============================================================================

// RenderKeyValue renders a label-value pair.
func RenderKeyValue(label string, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Left,
		labelStyle.Render(label+":"),
		valueStyle.Render(value),
	)
}
