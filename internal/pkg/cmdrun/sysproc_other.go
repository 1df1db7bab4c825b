//go:build !linux

package cmdrun

import "os/exec"

// Pdeathsig is Linux-only; elsewhere children rely on context cancellation.
func setSysProcAttr(cmd *exec.Cmd) {}
