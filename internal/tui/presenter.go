package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/pyshell/internal/dialog"
)

// WindowPresenter shows dialogs as modals inside the running shell window.
type WindowPresenter struct {
	send     func(tea.Msg)
	finished <-chan struct{}
}

// NewWindowPresenter returns a presenter for program. finished must be
// closed once program.Run has returned.
func NewWindowPresenter(program *tea.Program, finished <-chan struct{}) *WindowPresenter {
	return &WindowPresenter{send: program.Send, finished: finished}
}

// Present queues msg as a modal and blocks until it is dismissed. It returns
// dialog.ErrUnavailable if the window has already closed.
func (p *WindowPresenter) Present(ctx context.Context, msg dialog.Message) error {
	select {
	case <-p.finished:
		return dialog.ErrUnavailable
	default:
	}

	done := make(chan struct{})
	p.send(DialogMsg{Message: msg, Done: done})

	select {
	case <-done:
		return nil
	case <-p.finished:
		return dialog.ErrUnavailable
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StandalonePresenter runs a one-dialog program on the terminal. It is used
// when no window is running.
type StandalonePresenter struct {
	Input  io.Reader
	Output io.Writer
}

func (p StandalonePresenter) Present(ctx context.Context, msg dialog.Message) error {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.Input != nil {
		opts = append(opts, tea.WithInput(p.Input))
	}
	if p.Output != nil {
		opts = append(opts, tea.WithOutput(p.Output))
	}

	final, err := tea.NewProgram(newDialogModel(msg), opts...).Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return dialog.ErrUnavailable
		}
		return fmt.Errorf("running dialog: %w", err)
	}
	if dm, ok := final.(dialogModel); ok && !dm.dismissed {
		return dialog.ErrUnavailable
	}
	return nil
}

// dialogModel is the model of a standalone dialog program.
type dialogModel struct {
	msg       dialog.Message
	width     int
	dismissed bool
}

func newDialogModel(msg dialog.Message) dialogModel {
	return dialogModel{msg: msg, width: 72}
}

func (m dialogModel) Init() tea.Cmd {
	return nil
}

func (m dialogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc", " ", "q", "ctrl+c":
			m.dismissed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width > 72 {
			m.width = 72
		}
		if m.width < 30 {
			m.width = 30
		}
	}
	return m, nil
}

func (m dialogModel) View() string {
	if m.dismissed {
		return ""
	}
	return renderDialog(m.msg, m.width) + "\n"
}
