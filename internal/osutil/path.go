package osutil

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/buildkite/interpolate"
)

// ExpandEnv expands $VAR and ${VAR} references in s against the process
// environment. Unlike os.ExpandEnv it understands defaults such as
// ${VAR:-fallback}, and $$ escapes a literal dollar.
func ExpandEnv(s string) (string, error) {
	return interpolate.Interpolate(interpolate.NewSliceEnv(os.Environ()), s)
}

// NormalizeFilePath expands environment variables and a leading ~ in path,
// and returns it as a clean absolute path. An empty path stays empty.
func NormalizeFilePath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	path, err := ExpandEnv(path)
	if err != nil {
		return "", err
	}
	if path, err = ExpandHome(path); err != nil {
		return "", err
	}
	return filepath.Abs(path)
}

// ExpandHome replaces a leading ~ with the user's home directory. Paths that
// don't start with ~ are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	if len(path) > 1 && path[1] != '/' && path[1] != '\\' {
		return "", errors.New("cannot expand user-specific home dir")
	}

	home, err := UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}

// UserHomeDir returns $HOME when it is set, on every platform, and otherwise
// falls back to os.UserHomeDir.
func UserHomeDir() (string, error) {
	if home, ok := os.LookupEnv("HOME"); ok && home != "" {
		return home, nil
	}
	return os.UserHomeDir()
}
