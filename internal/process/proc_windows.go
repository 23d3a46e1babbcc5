//go:build windows

package process

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup gives the child its own console process group so console
// control events aimed at the shell do not reach it.
func setProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.CreationFlags |= syscall.CREATE_NEW_PROCESS_GROUP
}

// killProcess terminates the process. Windows has no process-group kill in
// the standard library; TerminateProcess is what os.Process.Kill issues.
func killProcess(p *os.Process) error {
	return p.Kill()
}
