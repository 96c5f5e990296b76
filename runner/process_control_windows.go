//go:build windows
// +build windows

package runner

import "os/exec"

// Windows cannot deliver an interrupt to a child process, so it is killed.
func platformInterruptProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	return cmd.Process.Kill()
}
