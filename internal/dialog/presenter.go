package dialog

import (
	"context"
	"errors"
	"log/slog"
)

// ErrUnavailable is returned by presenters that cannot show anything in the
// current environment.
var ErrUnavailable = errors.New("dialog presenter unavailable")

// Presenter shows a dialog. Present blocks until the user dismisses it or
// ctx is cancelled.
type Presenter interface {
	Present(ctx context.Context, msg Message) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx context.Context, msg Message) error

func (f PresenterFunc) Present(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// LogPresenter writes dialogs to the log. It never blocks.
type LogPresenter struct {
	Logger *slog.Logger
}

func (p LogPresenter) Present(_ context.Context, msg Message) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	level := slog.LevelInfo
	switch msg.Severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}

	logger.Log(context.Background(), level, "dialog",
		"title", msg.Title,
		"body", msg.Body,
		"severity", msg.Severity.String(),
	)
	return nil
}

// Fallback tries each presenter in order and stops at the first that
// succeeds. Cancellation of ctx stops the chain.
type Fallback []Presenter

func (f Fallback) Present(ctx context.Context, msg Message) error {
	var errs []error
	for _, p := range f {
		err := p.Present(ctx, msg)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return ErrUnavailable
	}
	return errors.Join(errs...)
}
