package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/randomizedcoder/pyshell/internal/dialog"
	"github.com/randomizedcoder/pyshell/internal/supervisor"
)

// =============================================================================
// Main View Rendering
// =============================================================================

// renderStatusView renders the backend status panel.
func (m Model) renderStatusView() string {
	sections := []string{
		m.renderHeader(),
		m.renderBackend(),
	}
	if m.showDetails {
		sections = append(sections, m.renderDetails())
	}
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderDialogView renders the first pending dialog centered in the window.
func (m Model) renderDialogView() string {
	box := renderDialog(m.dialogs[0].Message, m.dialogWidth())

	hint := ""
	if n := len(m.dialogs); n > 1 {
		hint = mutedStyle.Render(fmt.Sprintf("%d more", n-1))
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, box, hint),
	)
}

func (m Model) dialogWidth() int {
	w := m.width - 10
	if w > 72 {
		w = 72
	}
	if w < 30 {
		w = 30
	}
	return w
}

// =============================================================================
// Header
// =============================================================================

func (m Model) renderHeader() string {
	version := m.version
	if version == "" {
		version = "dev"
	}

	header := fmt.Sprintf(
		" pyshell %s │ %s │ Elapsed: %s ",
		version,
		StateLabel(m.status.State),
		formatDuration(m.Elapsed()),
	)

	return headerStyle.Width(m.width).Render(header)
}

// =============================================================================
// Backend Section
// =============================================================================

func (m Model) renderBackend() string {
	st := m.status

	rows := []string{
		RenderKeyValue("State", st.State.String()),
		RenderKeyValue("PID", formatPID(st.PID)),
	}

	switch st.State {
	case supervisor.StateRunning:
		rows = append(rows, RenderKeyValue("Uptime", formatDuration(st.Uptime())))
	case supervisor.StateExited:
		rows = append(rows, RenderKeyValue("Exit code", fmt.Sprintf("%d", st.ExitCode)))
	case supervisor.StateFailedToStart:
		if st.Err != nil {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Left,
				labelStyle.Render("Error:"),
				valueBadStyle.Render(truncate(st.Err.Error(), m.width-22)),
			))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{sectionHeaderStyle.Render("Backend")}, rows...)...,
	)

	return boxStyle.Width(m.width - 2).Render(content)
}

// =============================================================================
// Details Section
// =============================================================================

func (m Model) renderDetails() string {
	st := m.status
	maxValue := m.width - 22

	rows := []string{
		RenderKeyValue("Interpreter", dashIfEmpty(truncate(st.Interpreter, maxValue))),
		RenderKeyValue("Script", dashIfEmpty(truncate(st.Script, maxValue))),
		RenderKeyValue("Launch ID", shortID(st.LaunchID)),
		RenderKeyValue("Started", formatTimestamp(st.StartedAt)),
	}
	if m.metricsAddr != "" {
		rows = append(rows, RenderKeyValue("Metrics", "http://"+m.metricsAddr+"/metrics"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{sectionHeaderStyle.Render("Launch")}, rows...)...,
	)

	return boxStyle.Width(m.width - 2).Render(content)
}

// =============================================================================
// Footer
// =============================================================================

func (m Model) renderFooter() string {
	shortcuts := []string{
		"q: quit",
		"d: toggle details",
		"r: refresh",
	}

	left := dimStyle.Render(strings.Join(shortcuts, " │ "))
	right := dimStyle.Render("Updated " + formatTimestamp(m.lastUpdate))

	// Pad to fill width
	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return footerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Left,
			left,
			strings.Repeat(" ", padding),
			right,
		),
	)
}

// =============================================================================
// Dialog
// =============================================================================

// renderDialog renders a dialog box of the given outer width.
func renderDialog(msg dialog.Message, width int) string {
	color := SeverityColor(msg.Severity)
	inner := width - 6

	title := titleStyle.Foreground(color).Render(msg.Title)
	body := dialogBodyStyle.Width(inner).Render(msg.Body)
	button := dialogButtonStyle.Render("OK")

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		body,
		lipgloss.PlaceHorizontal(inner, lipgloss.Right, button),
	)

	return dialogBoxStyle.BorderForeground(color).Width(width - 2).Render(content)
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
