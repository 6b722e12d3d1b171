//go:build !linux

package browser

import "os/exec"

func killAfterParent(cmd *exec.Cmd) {}
