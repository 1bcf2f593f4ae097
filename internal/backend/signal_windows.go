//go:build windows

package backend

import "os"

// interrupt kills the process; Windows has no portable SIGTERM.
func interrupt(proc *os.Process) error {
	if proc == nil {
		return nil
	}
	return proc.Kill()
}
