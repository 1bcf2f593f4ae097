//go:build !windows

package backend

import (
	"os"
	"syscall"
)

// interrupt asks the process to shut down cleanly.
func interrupt(proc *os.Process) error {
	if proc == nil {
		return nil
	}
	return proc.Signal(syscall.SIGTERM)
}
