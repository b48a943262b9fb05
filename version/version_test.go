package version

import (
	"regexp"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	t.Parallel()

	if !regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.]+)?$`).MatchString(Version()) {
		t.Errorf("Version() = %q, want a semantic version", Version())
	}
	if got := BuildVersion(); got != "x" {
		t.Errorf("BuildVersion() = %q, want %q", got, "x")
	}
	if got := Full(); !strings.HasPrefix(got, Version()+"+x (") {
		t.Errorf("Full() = %q, want prefix %q", got, Version()+"+x (")
	}
}
