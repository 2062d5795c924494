//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// configureDetached starts the worker in a new session (setsid) so it is
// detached from the controlling terminal and survives supervisor exit.
func configureDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

// terminate delivers SIGTERM to pid. Fire-and-forget: the supervisor never
// waits on the worker.
func terminate(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}
