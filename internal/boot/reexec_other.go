//go:build !unix

package boot

import "errors"

// Reexec is not supported on this platform; re-entry fails instead of
// resetting.
func Reexec() error {
	return errors.New("boot: reexec not supported on this platform")
}
