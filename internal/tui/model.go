package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/pyshell/internal/dialog"
	"github.com/randomizedcoder/pyshell/internal/supervisor"
)

// =============================================================================
// Messages
// =============================================================================

// TickMsg is sent periodically to update the display.
type TickMsg time.Time

// DialogMsg opens a modal dialog. Done is closed when the user dismisses it
// or the window quits.
type DialogMsg struct {
	Message dialog.Message
	Done    chan struct{}
}

// QuitMsg signals the TUI should exit.
type QuitMsg struct{}

// =============================================================================
// Model
// =============================================================================

// Model is the shell window: a backend status panel plus a queue of modal
// dialogs, the first of which is shown over the panel.
type Model struct {
	// Configuration
	version     string
	metricsAddr string

	// Current state
	status      supervisor.Status
	startTime   time.Time
	lastUpdate  time.Time
	showDetails bool

	// Pending modal dialogs; dialogs[0] is on screen
	dialogs []DialogMsg

	// Display options
	width  int
	height int

	source StatusSource

	quitting bool
}

// StatusSource provides the backend status.
type StatusSource interface {
	Status() supervisor.Status
}

// Config holds TUI configuration.
type Config struct {
	Version      string
	MetricsAddr  string
	StatusSource StatusSource
}

// New creates a new TUI model.
func New(cfg Config) Model {
	m := Model{
		version:     cfg.Version,
		metricsAddr: cfg.MetricsAddr,
		source:      cfg.StatusSource,
		startTime:   time.Now(),
		lastUpdate:  time.Now(),
		width:       80,
		height:      24,
	}
	if m.source != nil {
		m.status = m.source.Status()
	}
	return m
}

// =============================================================================
// Bubble Tea Interface
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	// tea.WithAltScreen() is passed when creating the program
	return tickCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.HasDialog() {
			return m.updateDialog(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m.quit()
		case "d":
			m.showDetails = !m.showDetails
			return m, nil
		case "r":
			m.refresh()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		m.refresh()
		return m, tickCmd()

	case DialogMsg:
		if m.quitting {
			closeDone(msg.Done)
			return m, nil
		}
		m.dialogs = append(m.dialogs, msg)
		m.refresh()
		return m, nil

	case QuitMsg:
		return m.quit()
	}

	return m, nil
}

// updateDialog handles keys while a modal is open. Only dismissal and the
// hard quit are accepted.
func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", " ":
		closeDone(m.dialogs[0].Done)
		m.dialogs = m.dialogs[1:]
		return m, nil
	case "ctrl+c":
		return m.quit()
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	for _, d := range m.dialogs {
		closeDone(d.Done)
	}
	m.dialogs = nil
	return m, tea.Quit
}

func (m *Model) refresh() {
	if m.source != nil {
		m.status = m.source.Status()
	}
	m.lastUpdate = time.Now()
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.HasDialog() {
		return m.renderDialogView()
	}
	return m.renderStatusView()
}

// =============================================================================
// Commands
// =============================================================================

// tickCmd returns a command that sends a tick after 500ms.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// =============================================================================
// Accessors
// =============================================================================

// Elapsed returns the time since the window opened.
func (m Model) Elapsed() time.Duration {
	return time.Since(m.startTime)
}

// BackendState returns the last observed backend state.
func (m Model) BackendState() supervisor.State {
	return m.status.State
}

// HasDialog reports whether a modal is open.
func (m Model) HasDialog() bool {
	return len(m.dialogs) > 0
}

// PendingDialogs returns the number of queued modals, including the one shown.
func (m Model) PendingDialogs() int {
	return len(m.dialogs)
}

// Quitting reports whether the window is closing.
func (m Model) Quitting() bool {
	return m.quitting
}

func closeDone(done chan struct{}) {
	if done == nil {
		return
	}
	select {
	case <-done:
	default:
		close(done)
	}
}

// =============================================================================
// Formatting Helpers (used by view.go)
// =============================================================================

// formatDuration formats a duration as HH:MM:SS.
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatPID renders a pid, or a dash when there is no process.
func formatPID(pid int) string {
	if pid <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d", pid)
}

// formatTimestamp renders a wall clock time, or a dash when unset.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("15:04:05")
}

// shortID returns the first block of a UUID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "-"
	}
	return id
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if max <= 3 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
