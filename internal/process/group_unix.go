//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// Attach places cmd in a new process group and makes context cancellation
// kill the whole group instead of the direct child only.
func Attach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		KillProcessGroup(cmd.Process.Pid)
		return nil
	}
}

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort; exec.Cmd.Wait still reaps the direct child.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
