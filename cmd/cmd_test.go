package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/itsmostafa/liveline/internal/host"
)

func TestToCursorLine(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: host.LastLine},
		{in: -3, want: host.LastLine},
		{in: 1, want: 0},
		{in: 12, want: 11},
	}
	for _, tt := range tests {
		if got := toCursorLine(tt.in); got != tt.want {
			t.Errorf("toCursorLine(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func TestRunCommand(t *testing.T) {
	path := writeScript(t, "calc.js", "var a = 1;\nprint(a + 1)\nmissing\n")
	tmp := t.TempDir()

	out, err := execute(t, "run", path, "--interpreter", "goja", "--policy", "prefix", "--line", "2", "--temp-dir", tmp)
	if err != nil {
		t.Fatalf("run error: %v (output %q)", err, out)
	}
	if !strings.Contains(out, "print(a + 1)") || !strings.Contains(out, "# 2") {
		t.Errorf("output = %q", out)
	}

	out, err = execute(t, "run", path, "--interpreter", "goja", "--policy", "prefix", "--line", "0", "--temp-dir", tmp)
	if !errors.Is(err, errRunFailed) {
		t.Fatalf("run error = %v, want errRunFailed", err)
	}
	if !strings.Contains(out, "ReferenceError: missing is not defined") {
		t.Errorf("output = %q", out)
	}

	entries, _ := os.ReadDir(tmp)
	if len(entries) != 0 {
		t.Errorf("%d ephemeral units left behind", len(entries))
	}
}

func TestRunCommandBlankLine(t *testing.T) {
	path := writeScript(t, "blank.js", "print(1)\n\nprint(2)\n")

	out, err := execute(t, "run", path, "--interpreter", "goja", "--policy", "prefix", "--line", "2", "--temp-dir", t.TempDir())
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if !strings.Contains(out, "nothing to run") {
		t.Errorf("output = %q", out)
	}
}
