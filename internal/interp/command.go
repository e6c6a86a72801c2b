package interp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/itsmostafa/liveline/internal/reduce"
)

// DefaultInterpreter is launched when none is configured.
const DefaultInterpreter = "python3"

// knownExts maps interpreter basenames to the extension their scripts use.
var knownExts = map[string]string{
	"python":  ".py",
	"python3": ".py",
	"pypy3":   ".py",
	"node":    ".js",
	"deno":    ".js",
	"ruby":    ".rb",
	"lua":     ".lua",
	"bash":    ".sh",
	"sh":      ".sh",
	"perl":    ".pl",
	"php":     ".php",
}

// Command runs units with an external interpreter: `interpreter [args...] path`.
type Command struct {
	Interpreter string
	Args        []string
}

// NewCommand creates a Command backend. An empty interpreter means
// DefaultInterpreter.
func NewCommand(interpreter string, args []string) *Command {
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}
	return &Command{Interpreter: interpreter, Args: args}
}

// Name returns the interpreter name
func (c *Command) Name() string {
	return c.Interpreter
}

// Ext returns the extension conventionally used with the interpreter.
func (c *Command) Ext() string {
	base := strings.TrimSuffix(filepath.Base(c.Interpreter), ".exe")
	return knownExts[base]
}

// Exec launches the interpreter on path and waits for it to exit.
func (c *Command) Exec(ctx context.Context, path string) reduce.Raw {
	args := make([]string, 0, len(c.Args)+1)
	args = append(args, c.Args...)
	args = append(args, path)

	cmd := exec.CommandContext(ctx, c.Interpreter, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	raw := reduce.Raw{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return raw
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		raw.ExitCode = -1
		raw.Err = fmt.Errorf("%s: execution timed out", c.Interpreter)
		return raw
	case errors.Is(ctx.Err(), context.Canceled):
		raw.ExitCode = -1
		raw.Err = fmt.Errorf("%s: execution cancelled", c.Interpreter)
		return raw
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		raw.ExitCode = exitErr.ExitCode()
		raw.Err = fmt.Errorf("%s exited with error: %w", c.Interpreter, err)
		return raw
	}

	raw.ExitCode = -1
	raw.Err = fmt.Errorf("failed to start %s: %w", c.Interpreter, err)
	return raw
}
