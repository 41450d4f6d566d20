//go:build windows

package runner

import "os/exec"

// setupProcessGroup is a no-op on Windows; cancellation falls back to killing
// the interpreter process only.
func setupProcessGroup(cmd *exec.Cmd) {}
