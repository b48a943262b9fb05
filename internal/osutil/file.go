package osutil

import "os"

// FileExists reports whether filename can be stat'ed. Any error, not just
// fs.ErrNotExist, counts as the file being absent.
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
