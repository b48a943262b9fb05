// Package version provides the loom version strings.
package version

import (
	_ "embed"
	"runtime"
	"strings"
)

// buildVersion can be set at compile time:
//
//	go build -ldflags "-X github.com/loomworks/loom/version.buildVersion=abc123" .

//go:embed VERSION
var baseVersion string
var buildVersion string

// Version is the release version, such as 0.4.0.
func Version() string {
	return strings.TrimSpace(baseVersion)
}

// BuildVersion identifies the build, or "x" for local builds.
func BuildVersion() string {
	if buildVersion == "" {
		return "x"
	}
	return buildVersion
}

// Full is the version shown by --version.
func Full() string {
	return Version() + "+" + BuildVersion() + " (" + runtime.GOOS + "/" + runtime.GOARCH + ")"
}
