package shell

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/pyshell/internal/dialog"
	"github.com/randomizedcoder/pyshell/internal/tui"
)

const notifyAppName = "pyshell"

// buildPresenter selects the dialog chain for -dialog. The log presenter
// always ends the chain so a failure is never silent.
func (s *Shell) buildPresenter(program *tea.Program, finished <-chan struct{}) dialog.Presenter {
	logPresenter := dialog.LogPresenter{Logger: s.logger}

	var window dialog.Presenter
	if program != nil {
		window = tui.NewWindowPresenter(program, finished)
	}

	var chain dialog.Fallback
	switch s.config.Dialog {
	case "log":
		return logPresenter
	case "tui":
		if window != nil {
			chain = append(chain, window)
		}
	case "notify":
		chain = append(chain, dialog.NewNotifyPresenter(notifyAppName))
	default:
		switch {
		case window != nil:
			chain = append(chain, window)
		case s.terminal:
			chain = append(chain, tui.StandalonePresenter{Input: s.stdin, Output: s.stdout})
		}
		chain = append(chain, dialog.NewNotifyPresenter(notifyAppName))
	}
	return append(chain, logPresenter)
}
