//go:build !windows
// +build !windows

package runner

import (
	"os"
	"os/exec"
)

// platformInterruptProcess asks the child to stop the same way a terminal
// would, giving test runners a chance to flush their own state.
func platformInterruptProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	return cmd.Process.Signal(os.Interrupt)
}
