// Package stdin reports whether the process was given input on stdin.
package stdin

import "os"

// IsReadable reports whether stdin is a pipe or a redirected file rather
// than a terminal or /dev/null. It is false when stdin cannot be stat'ed,
// which happens on Windows when nothing is attached.
func IsReadable() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice == 0
}
