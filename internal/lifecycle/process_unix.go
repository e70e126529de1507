//go:build !windows

package lifecycle

import (
	"fmt"
	"os/exec"
	"syscall"
)

// configureProcAttr runs control scripts in their own process group, so an
// interrupt delivered to the harness's terminal does not reach the server the
// script launches. The harness then still gets to run the stop script.
func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// SignalTerminator kills processes with SIGKILL.
type SignalTerminator struct{}

// Kill implements ProcessTerminator.
func (SignalTerminator) Kill(pid int) error {
	if err := syscall.Kill(pid, syscall.SIGKILL); err != nil {
		return fmt.Errorf("failed to send SIGKILL to %d: %w", pid, err)
	}
	return nil
}
