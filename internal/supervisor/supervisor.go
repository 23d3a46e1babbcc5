package supervisor

import (
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/randomizedcoder/pyshell/internal/process"
	"github.com/randomizedcoder/pyshell/internal/resource"
)

// ScriptResolver resolves the backend script under the resource root.
type ScriptResolver interface {
	ResolveOrFallback(rel, fallback string) (string, error)
}

// Callbacks contains optional callback functions for supervisor events.
// They are called without the supervisor's lock held.
type Callbacks struct {
	// OnStateChange is called when the backend state changes.
	OnStateChange func(oldState, newState State)

	// OnStart is called when the backend process has been spawned.
	OnStart func(pid int)

	// OnExit is called when the tracked process exits on its own.
	OnExit func(pid int, exitCode int)

	// OnFailure is called from the launch goroutine when the launch fails.
	// It may block; the launch sequence completes when it returns.
	OnFailure func(err *LaunchError)

	// OnTerminate is called after shutdown issued the kill.
	OnTerminate func(pid int)
}

// Config holds configuration for creating a new Supervisor.
type Config struct {
	// Interpreter is the default command name; InterpreterOverride wins
	// when non-empty (PYTHON_PATH).
	Interpreter         string
	InterpreterOverride string

	ScriptPath     string
	FallbackScript string

	Resolver ScriptResolver
	Spawner  process.Spawner

	// LookPath resolves the interpreter. Defaults to process.LookupInterpreter.
	LookPath func(name string) (string, error)

	Logger    *slog.Logger
	Callbacks Callbacks
}

// Status is a snapshot of the supervisor.
type Status struct {
	State       State
	PID         int
	LaunchID    string
	Interpreter string
	Script      string
	StartedAt   time.Time
	ExitCode    int
	Err         error
}

// Uptime returns how long the backend has been running, or 0.
func (st Status) Uptime() time.Duration {
	if st.State != StateRunning || st.StartedAt.IsZero() {
		return 0
	}
	return time.Since(st.StartedAt)
}

// Supervisor owns at most one backend process. The handle is written by the
// launch goroutine and read by Shutdown, both under mu.
type Supervisor struct {
	cfg       Config
	logger    *slog.Logger
	lookPath  func(string) (string, error)
	callbacks Callbacks

	mu       sync.Mutex
	proc     process.Process
	status   Status
	shutdown bool

	// early holds an exit reported before Launch stored the handle.
	early *exitRecord
}

type exitRecord struct {
	pid      int
	exitCode int
}

// New creates a new Supervisor with the given configuration.
func New(cfg Config) *Supervisor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lookPath := cfg.LookPath
	if lookPath == nil {
		lookPath = process.LookupInterpreter
	}
	if cfg.Resolver == nil {
		cfg.Resolver = resource.NewResolver("")
	}

	return &Supervisor{
		cfg:       cfg,
		logger:    logger,
		lookPath:  lookPath,
		callbacks: cfg.Callbacks,
		status:    Status{State: StateNotStarted},
	}
}

// Initiate runs the launch sequence on its own goroutine and returns
// immediately. The returned channel is closed once the sequence, including
// failure reporting, has finished.
func (s *Supervisor) Initiate() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Launch()
	}()
	return done
}

// Launch resolves the script and interpreter and spawns the backend.
// It returns a *LaunchError on failure. It never waits on the child.
func (s *Supervisor) Launch() error {
	launchID := uuid.NewString()
	logger := s.logger.With("launch_id", launchID)

	script, err := s.cfg.Resolver.ResolveOrFallback(s.cfg.ScriptPath, s.cfg.FallbackScript)
	if err != nil {
		logger.Warn("resource_resolution_failed",
			"script", s.cfg.ScriptPath,
			"fallback", script,
			"error", err,
		)
	}
	if !resource.Exists(script) {
		// The interpreter reports this itself once started
		logger.Warn("backend_script_missing", "script", script)
	}

	interpreter := process.Interpreter(s.cfg.InterpreterOverride, s.cfg.Interpreter)

	path, err := s.lookPath(interpreter)
	if err != nil {
		return s.fail(logger, launchID, &LaunchError{
			Kind:        FailureInterpreterNotFound,
			Interpreter: interpreter,
			Script:      script,
			Err:         err,
		})
	}

	cmd := process.Command{Interpreter: interpreter, Script: script}
	logger.Debug("backend_spawning", "command", cmd.String(), "interpreter_path", path)

	proc, err := s.cfg.Spawner.Spawn(cmd.Interpreter, cmd.Args()...)
	if err != nil {
		return s.fail(logger, launchID, &LaunchError{
			Kind:        FailureSpawnFailed,
			Interpreter: interpreter,
			Script:      script,
			Err:         err,
		})
	}

	pid := proc.Pid()

	s.mu.Lock()
	if s.shutdown {
		// Shutdown already ran; the shell is exiting
		_ = proc.Kill()
		old := s.setStatusLocked(Status{
			State:       StateTerminated,
			PID:         pid,
			LaunchID:    launchID,
			Interpreter: interpreter,
			Script:      script,
		})
		s.mu.Unlock()

		logger.Info("backend_killed_after_shutdown", "pid", pid)
		s.notifyStateChange(old, StateTerminated)
		if s.callbacks.OnTerminate != nil {
			s.callbacks.OnTerminate(pid)
		}
		return nil
	}
	if s.proc != nil {
		logger.Warn("backend_handle_replaced", "old_pid", s.proc.Pid(), "pid", pid)
	}
	s.proc = proc
	old := s.setStatusLocked(Status{
		State:       StateRunning,
		PID:         pid,
		LaunchID:    launchID,
		Interpreter: interpreter,
		Script:      script,
		StartedAt:   time.Now(),
	})
	early := s.early
	s.early = nil
	s.mu.Unlock()

	logger.Info("backend_started",
		"pid", pid,
		"interpreter", interpreter,
		"interpreter_path", path,
		"script", script,
	)

	s.notifyStateChange(old, StateRunning)
	if s.callbacks.OnStart != nil {
		s.callbacks.OnStart(pid)
	}
	if early != nil && early.pid == pid {
		s.HandleExit(early.pid, early.exitCode)
	}
	return nil
}

// fail records a launch failure and reports it.
func (s *Supervisor) fail(logger *slog.Logger, launchID string, lerr *LaunchError) error {
	s.mu.Lock()
	old := s.setStatusLocked(Status{
		State:       StateFailedToStart,
		LaunchID:    launchID,
		Interpreter: lerr.Interpreter,
		Script:      lerr.Script,
		Err:         lerr,
	})
	s.mu.Unlock()

	logger.Error("backend_launch_failed",
		"kind", lerr.Kind.String(),
		"interpreter", lerr.Interpreter,
		"script", lerr.Script,
		"error", lerr.Err,
	)

	s.notifyStateChange(old, StateFailedToStart)
	if s.callbacks.OnFailure != nil {
		s.callbacks.OnFailure(lerr)
	}
	return lerr
}

// HandleExit records that the process with pid exited. It is wired to the
// spawner's exit reaper. Exits of untracked processes are ignored.
func (s *Supervisor) HandleExit(pid int, exitCode int) {
	s.mu.Lock()
	if s.proc == nil || s.proc.Pid() != pid {
		if !s.shutdown {
			// The reaper can beat Launch to the lock
			s.early = &exitRecord{pid: pid, exitCode: exitCode}
		}
		s.mu.Unlock()
		return
	}
	if s.status.State != StateRunning {
		s.mu.Unlock()
		return
	}
	old := s.status.State
	s.status.State = StateExited
	s.status.ExitCode = exitCode
	uptime := time.Since(s.status.StartedAt)
	s.mu.Unlock()

	s.logger.Warn("backend_exited",
		"pid", pid,
		"exit_code", exitCode,
		"uptime", uptime.String(),
	)

	s.notifyStateChange(old, StateExited)
	if s.callbacks.OnExit != nil {
		s.callbacks.OnExit(pid, exitCode)
	}
}

// Shutdown force-terminates the tracked backend, if any. The kill result is
// ignored and Shutdown never waits for the process to exit. It reports
// whether a kill was issued; a backend that already exited is left in the
// exited state.
func (s *Supervisor) Shutdown() bool {
	s.mu.Lock()
	s.shutdown = true
	proc := s.proc
	if proc == nil {
		s.mu.Unlock()
		s.logger.Debug("backend_shutdown_noop")
		return false
	}
	if s.status.State == StateExited {
		s.mu.Unlock()
		s.logger.Debug("backend_shutdown_noop", "pid", proc.Pid(), "reason", "already_exited")
		return false
	}

	killErr := proc.Kill()
	if errors.Is(killErr, os.ErrProcessDone) {
		// Reaped before HandleExit recorded it; no signal was sent
		s.mu.Unlock()
		s.logger.Debug("backend_shutdown_noop", "pid", proc.Pid(), "reason", "already_exited")
		return false
	}
	old := s.status.State
	s.status.State = StateTerminated
	s.mu.Unlock()

	pid := proc.Pid()
	if killErr != nil {
		s.logger.Debug("backend_kill_ignored", "pid", pid, "error", killErr)
	}
	s.logger.Info("backend_terminated", "pid", pid)

	s.notifyStateChange(old, StateTerminated)
	if s.callbacks.OnTerminate != nil {
		s.callbacks.OnTerminate(pid)
	}
	return true
}

// Status returns a snapshot of the supervisor.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// State returns the current state of the backend.
func (s *Supervisor) State() State {
	return s.Status().State
}

// setStatusLocked replaces the status and returns the previous state.
func (s *Supervisor) setStatusLocked(st Status) State {
	old := s.status.State
	s.status = st
	return old
}

func (s *Supervisor) notifyStateChange(oldState, newState State) {
	if s.callbacks.OnStateChange != nil && oldState != newState {
		s.callbacks.OnStateChange(oldState, newState)
	}
}
