//go:build unix

package boot

import (
	"os"
	"syscall"
)

// Reexec replaces the running process with a fresh copy of itself, using the
// same arguments and environment. It only returns on failure.
func Reexec() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	return syscall.Exec(exe, os.Args, os.Environ())
}
