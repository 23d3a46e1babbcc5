package process

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"syscall"
)

// ExecSpawner starts processes with os/exec.
//
// Each child runs in its own process group so that a kill also reaches the
// workers it forks. A goroutine per child waits on it so that it is reaped
// when it exits; the caller is told through OnExit.
type ExecSpawner struct {
	// Stdout and Stderr receive the child's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	// Dir is the child's working directory. Empty inherits the shell's.
	Dir string

	// OnExit is called from the reaper goroutine once the child has exited.
	OnExit func(pid int, exitCode int)
}

// Spawn starts name with args. The child inherits the environment.
func (s *ExecSpawner) Spawn(name string, args ...string) (Process, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	cmd.Dir = s.Dir
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &execProcess{cmd: cmd}
	go p.reap(s.OnExit)
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	exited atomic.Bool
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

// Kill force-terminates the child's process group. Once the child has been
// reaped its pid may be reused, so no signal is sent.
func (p *execProcess) Kill() error {
	if p.exited.Load() {
		return os.ErrProcessDone
	}
	return killProcess(p.cmd.Process)
}

func (p *execProcess) reap(onExit func(pid, exitCode int)) {
	err := p.cmd.Wait()
	p.exited.Store(true)
	if onExit != nil {
		onExit(p.cmd.Process.Pid, ExitCode(err))
	}
}

// ExitCode extracts the exit code from a Wait() error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				// Signal exit: 128 + signal number
				return 128 + int(status.Signal())
			}
			return status.ExitStatus()
		}
		return exitErr.ExitCode()
	}

	// Unknown error, assume exit code 1
	return 1
}
