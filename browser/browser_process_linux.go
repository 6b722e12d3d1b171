//go:build linux

package browser

import (
	"os/exec"
	"syscall"
)

// killAfterParent makes the browser process die together with us.
func killAfterParent(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Pdeathsig = syscall.SIGKILL
}
