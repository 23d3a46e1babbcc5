// Package shell runs the application lifecycle: it starts the backend in the
// background, keeps the window up until the user leaves, then kills the
// backend.
package shell

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/randomizedcoder/pyshell/internal/config"
	"github.com/randomizedcoder/pyshell/internal/dialog"
	"github.com/randomizedcoder/pyshell/internal/metrics"
	"github.com/randomizedcoder/pyshell/internal/process"
	"github.com/randomizedcoder/pyshell/internal/resource"
	"github.com/randomizedcoder/pyshell/internal/supervisor"
	"github.com/randomizedcoder/pyshell/internal/tui"
)

const (
	// launchWait bounds how long Run waits for the launch goroutine after
	// shutdown, so a child spawned late is still killed.
	launchWait = 2 * time.Second

	metricsShutdownTimeout = 5 * time.Second
)

// Shell coordinates the supervisor, the window, dialogs and metrics.
type Shell struct {
	config *config.Config
	logger *slog.Logger

	version   string
	spawner   process.Spawner
	lookPath  func(string) (string, error)
	presenter dialog.Presenter
	signals   []os.Signal

	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	terminal bool
	window   bool

	resolver   *resource.Resolver
	supervisor *supervisor.Supervisor
	metrics    *metrics.Collector

	// presentCtx is cancelled once the exit event arrives.
	presentCtx context.Context
}

// Option configures a Shell.
type Option func(*Shell)

// WithVersion sets the version shown in the window and the info metric.
func WithVersion(v string) Option {
	return func(s *Shell) { s.version = v }
}

// WithSpawner replaces the os/exec spawner.
func WithSpawner(sp process.Spawner) Option {
	return func(s *Shell) { s.spawner = sp }
}

// WithLookPath replaces the interpreter lookup.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(s *Shell) { s.lookPath = fn }
}

// WithPresenter replaces the presenter selected by -dialog.
func WithPresenter(p dialog.Presenter) Option {
	return func(s *Shell) { s.presenter = p }
}

// WithStdio sets the terminal streams.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(s *Shell) {
		s.stdin, s.stdout, s.stderr = stdin, stdout, stderr
	}
}

// WithTerminal overrides terminal detection.
func WithTerminal(terminal bool) Option {
	return func(s *Shell) { s.terminal = terminal }
}

// WithSignals sets the signals that end the shell. Defaults to SIGINT and
// SIGTERM; an empty list disables signal handling.
func WithSignals(sigs ...os.Signal) Option {
	return func(s *Shell) { s.signals = sigs }
}

// New creates a Shell. Nothing is started until Run.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Shell {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Shell{
		config:   cfg,
		logger:   logger,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		terminal: Terminal(),
		signals:  []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.window = cfg.TUIEnabled && s.terminal
	s.resolver = resource.NewResolver(cfg.ResourceDir)
	s.metrics = metrics.NewCollector(metrics.CollectorConfig{
		Version:     s.version,
		Interpreter: cfg.EffectiveInterpreter(),
		Script:      cfg.ScriptPath,
	})

	var execSpawner *process.ExecSpawner
	if s.spawner == nil {
		execSpawner = &process.ExecSpawner{}
		if !s.window {
			// Headless: the backend shares the shell's terminal
			execSpawner.Stdout = s.stdout
			execSpawner.Stderr = s.stderr
		}
		s.spawner = execSpawner
	}

	s.supervisor = supervisor.New(supervisor.Config{
		Interpreter:         cfg.Interpreter,
		InterpreterOverride: cfg.InterpreterOverride,
		ScriptPath:          cfg.ScriptPath,
		FallbackScript:      cfg.FallbackScript,
		Resolver:            s.resolver,
		Spawner:             s.spawner,
		LookPath:            s.lookPath,
		Logger:              logger,
		Callbacks: supervisor.Chain(
			s.metrics.Callbacks(),
			supervisor.Callbacks{OnFailure: s.onFailure},
		),
	})
	if execSpawner != nil {
		execSpawner.OnExit = s.supervisor.HandleExit
	}

	return s
}

// Run starts the shell and blocks until its exit event: the window closing,
// a signal, or ctx being cancelled. The backend is killed before Run returns.
func (s *Shell) Run(ctx context.Context) error {
	if len(s.signals) > 0 {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, s.signals...)
		defer stop()
	}

	presentCtx, cancelPresent := context.WithCancel(ctx)
	defer cancelPresent()
	s.presentCtx = presentCtx

	var metricsServer *metrics.Server
	if s.config.MetricsAddr != "" {
		metricsServer = metrics.NewServer(s.config.MetricsAddr, s.metrics.Gatherer(), s.logger)
		if err := metricsServer.Start(); err != nil {
			// The shell still starts; only the endpoint is missing
			s.logger.Warn("metrics_server_failed", "addr", s.config.MetricsAddr, "error", err)
			metricsServer = nil
		}
	}

	var (
		program  *tea.Program
		finished = make(chan struct{})
	)
	if s.window {
		program = tea.NewProgram(
			tui.New(tui.Config{
				Version:      s.version,
				MetricsAddr:  s.config.MetricsAddr,
				StatusSource: s.supervisor,
			}),
			tea.WithAltScreen(),
			tea.WithInput(s.stdin),
			tea.WithOutput(s.stdout),
		)
	} else if s.config.TUIEnabled {
		s.logger.Info("window_unavailable", "reason", "not a terminal")
	}

	if s.presenter == nil {
		s.presenter = s.buildPresenter(program, finished)
	}

	s.logger.Info("shell_started",
		"version", s.version,
		"window", s.window,
		"dialog", s.config.Dialog,
		"interpreter", s.config.EffectiveInterpreter(),
		"resource_root", s.resolver.Root,
		"metrics_addr", s.config.MetricsAddr,
	)

	launched := s.supervisor.Initiate()

	var runErr error
	if program != nil {
		go quitOnDone(ctx, program, finished)
		_, err := program.Run()
		close(finished)
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, tea.ErrInterrupted) {
			runErr = err
		}
		s.logger.Info("shell_exiting", "reason", exitReason(ctx, "window_closed"))
	} else {
		<-ctx.Done()
		s.logger.Info("shell_exiting", "reason", exitReason(ctx, "context_cancelled"))
	}

	cancelPresent()
	s.supervisor.Shutdown()

	select {
	case <-launched:
	case <-time.After(launchWait):
		s.logger.Warn("launch_still_running", "waited", launchWait.String())
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("metrics_server_shutdown_error", "error", err)
		}
	}

	return runErr
}

// onFailure shows the launch failure dialog. It runs on the launch goroutine.
func (s *Shell) onFailure(lerr *supervisor.LaunchError) {
	msg, ok := dialog.FromError(lerr)
	if !ok {
		return
	}

	ctx := s.presentCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.presenter.Present(ctx, msg); err != nil && ctx.Err() == nil {
		s.logger.Warn("dialog_failed", "title", msg.Title, "error", err)
	}
}

// quitOnDone asks the window to close once ctx is done, so pending dialogs
// are released and the terminal is restored.
func quitOnDone(ctx context.Context, program *tea.Program, finished <-chan struct{}) {
	select {
	case <-ctx.Done():
		program.Send(tui.QuitMsg{})
	case <-finished:
	}
}

// exitReason names what ended the shell.
func exitReason(ctx context.Context, fallback string) string {
	if ctx.Err() != nil {
		return "signal_or_cancel"
	}
	return fallback
}

// Supervisor returns the backend supervisor for external access.
func (s *Shell) Supervisor() *supervisor.Supervisor {
	return s.supervisor
}

// Metrics returns the metrics collector for external access.
func (s *Shell) Metrics() *metrics.Collector {
	return s.metrics
}

// Window reports whether Run shows the window.
func (s *Shell) Window() bool {
	return s.window
}

// Terminal reports whether stdin and stdout are both terminals.
func Terminal() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
