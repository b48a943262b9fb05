package stdin_test

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/loomworks/loom/internal/stdin"
)

func TestMain(m *testing.M) {
	if os.Getenv("LOOM_STDIN_HELPER") == "1" {
		fmt.Printf("%v", stdin.IsReadable())
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func TestIsReadable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh redirection")
	}

	input := filepath.Join(t.TempDir(), "workflow.yml")
	if err := os.WriteFile(input, []byte("on: push\n"), 0o644); err != nil {
		t.Fatalf("os.WriteFile(%q) = %v", input, err)
	}

	tests := []struct {
		name  string
		shell string
		want  string
	}{
		{name: "no input", shell: os.Args[0], want: "false"},
		{name: "pipe", shell: "echo output | " + os.Args[0], want: "true"},
		{name: "redirected file", shell: os.Args[0] + " < " + input, want: "true"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cmd := exec.Command("/bin/sh", "-c", test.shell)
			cmd.Env = append(os.Environ(), "LOOM_STDIN_HELPER=1")

			output, err := cmd.CombinedOutput()
			if err != nil {
				t.Fatalf("running %q: %v (output %q)", test.shell, err, output)
			}
			if got := string(output); got != test.want {
				t.Errorf("stdin.IsReadable() = %q, want %q", got, test.want)
			}
		})
	}
}
