package dialog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomizedcoder/pyshell/internal/supervisor"
)

// =============================================================================
// Messages
// =============================================================================

func TestFromError_InterpreterNotFound(t *testing.T) {
	err := &supervisor.LaunchError{
		Kind:        supervisor.FailureInterpreterNotFound,
		Interpreter: "python",
		Err:         exec.ErrNotFound,
	}

	msg, ok := FromError(err)
	require.True(t, ok)
	assert.Equal(t, "Python not found", msg.Title)
	assert.Contains(t, msg.Body, "PYTHON_PATH")
	assert.Contains(t, msg.Body, `"python"`)
	assert.Equal(t, SeverityError, msg.Severity)
}

func TestFromError_SpawnFailed(t *testing.T) {
	cause := errors.New("fork/exec /usr/bin/python: permission denied")
	err := fmt.Errorf("launch: %w", &supervisor.LaunchError{
		Kind:        supervisor.FailureSpawnFailed,
		Interpreter: "python",
		Script:      "/opt/app/resources/server/main.py",
		Err:         cause,
	})

	msg, ok := FromError(err)
	require.True(t, ok)
	assert.Equal(t, "Backend failed to start", msg.Title)
	assert.Contains(t, msg.Body, "permission denied")
}

func TestFromError_Other(t *testing.T) {
	_, ok := FromError(errors.New("boom"))
	assert.False(t, ok)

	_, ok = FromError(nil)
	assert.False(t, ok)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(42).String())
}

// =============================================================================
// Presenters
// =============================================================================

func TestLogPresenter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	err := LogPresenter{Logger: logger}.Present(context.Background(), Message{
		Title:    "Python not found",
		Body:     "install it",
		Severity: SeverityError,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, `title="Python not found"`)
}

func TestFallback_FirstSuccessWins(t *testing.T) {
	var calls []string
	record := func(name string, err error) Presenter {
		return PresenterFunc(func(context.Context, Message) error {
			calls = append(calls, name)
			return err
		})
	}

	chain := Fallback{
		record("window", ErrUnavailable),
		record("notify", nil),
		record("log", nil),
	}
	require.NoError(t, chain.Present(context.Background(), Message{}))
	assert.Equal(t, []string{"window", "notify"}, calls)
}

func TestFallback_AllFail(t *testing.T) {
	errA := errors.New("a")
	chain := Fallback{
		PresenterFunc(func(context.Context, Message) error { return errA }),
		PresenterFunc(func(context.Context, Message) error { return ErrUnavailable }),
	}

	err := chain.Present(context.Background(), Message{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFallback_Empty(t *testing.T) {
	assert.ErrorIs(t, Fallback{}.Present(context.Background(), Message{}), ErrUnavailable)
}

func TestFallback_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	called := false

	chain := Fallback{
		PresenterFunc(func(ctx context.Context, _ Message) error {
			cancel()
			return ctx.Err()
		}),
		PresenterFunc(func(context.Context, Message) error {
			called = true
			return nil
		}),
	}

	err := chain.Present(ctx, Message{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called, "presenters after cancellation should not run")
}

// =============================================================================
// Desktop notifications
// =============================================================================

type fakeBus struct {
	mu        sync.Mutex
	notifyID  uint32
	notifyErr error
	closed    chan uint32
	urgency   byte
	summary   string
	dismissed []uint32
	busClosed bool
}

func newFakeBus() *fakeBus {
	return &fakeBus{notifyID: 7, closed: make(chan uint32, 1)}
}

func (b *fakeBus) Notify(_ context.Context, _, summary, _ string, urgency byte) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.summary = summary
	b.urgency = urgency
	return b.notifyID, b.notifyErr
}

func (b *fakeBus) WaitClosed(ctx context.Context, id uint32) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case got := <-b.closed:
			if got == id {
				return nil
			}
		}
	}
}

func (b *fakeBus) CloseNotification(id uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dismissed = append(b.dismissed, id)
	return nil
}

func (b *fakeBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.busClosed = true
	return nil
}

func TestNotifyPresenter_BlocksUntilClosed(t *testing.T) {
	bus := newFakeBus()
	p := &NotifyPresenter{AppName: "pyshell", dial: func() (notificationBus, error) { return bus, nil }}

	done := make(chan error, 1)
	go func() {
		done <- p.Present(context.Background(), Message{Title: "Python not found", Severity: SeverityError})
	}()

	select {
	case err := <-done:
		t.Fatalf("Present returned before the notification closed: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	bus.closed <- 7
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Present did not return after close")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()
	assert.Equal(t, urgencyCritical, bus.urgency)
	assert.Equal(t, "Python not found", bus.summary)
	assert.True(t, bus.busClosed)
}

func TestNotifyPresenter_CancelDismisses(t *testing.T) {
	bus := newFakeBus()
	p := &NotifyPresenter{dial: func() (notificationBus, error) { return bus, nil }}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Present(ctx, Message{Title: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	bus.mu.Lock()
	defer bus.mu.Unlock()
	assert.Equal(t, []uint32{7}, bus.dismissed)
}

func TestNotifyPresenter_Unavailable(t *testing.T) {
	p := &NotifyPresenter{dial: func() (notificationBus, error) {
		return nil, errors.New("no session bus")
	}}
	assert.ErrorIs(t, p.Present(context.Background(), Message{}), ErrUnavailable)

	bus := newFakeBus()
	bus.notifyErr = errors.New("service unknown")
	p = &NotifyPresenter{dial: func() (notificationBus, error) { return bus, nil }}
	assert.ErrorIs(t, p.Present(context.Background(), Message{}), ErrUnavailable)
}

func TestUrgencyFor(t *testing.T) {
	assert.Equal(t, urgencyCritical, urgencyFor(SeverityError))
	assert.Equal(t, urgencyNormal, urgencyFor(SeverityWarning))
	assert.Equal(t, urgencyLow, urgencyFor(SeverityInfo))
}
