package interp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"

	"github.com/itsmostafa/liveline/internal/reduce"
)

// GojaName selects the in-process JavaScript backend.
const GojaName = "goja"

// Goja executes JavaScript units in a fresh goja runtime per run.
// print() and console.log() write to the captured stdout; an uncaught
// exception becomes stderr with exit status 1.
type Goja struct{}

// Name returns the backend name
func (*Goja) Name() string { return GojaName }

// Ext returns ".js"
func (*Goja) Ext() string { return ".js" }

// Exec runs the unit at path.
func (*Goja) Exec(ctx context.Context, path string) reduce.Raw {
	src, err := os.ReadFile(path)
	if err != nil {
		return reduce.Raw{ExitCode: -1, Err: fmt.Errorf("failed to read unit: %w", err)}
	}

	vm := goja.New()

	// Interrupt the VM if the run is cancelled or times out
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt("execution timeout or cancelled")
		case <-done:
		}
	}()

	var stdout strings.Builder
	if err := setupConsole(vm, &stdout); err != nil {
		return reduce.Raw{ExitCode: -1, Err: fmt.Errorf("failed to setup environment: %w", err)}
	}

	raw := reduce.Raw{}
	_, err = vm.RunScript(filepath.Base(path), string(src))
	raw.Stdout = stdout.String()
	if err == nil {
		return raw
	}

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		raw.ExitCode = -1
		raw.Err = fmt.Errorf("execution interrupted: %v", interrupted.Value())
		return raw
	}

	raw.ExitCode = 1
	raw.Stderr = err.Error() + "\n"
	return raw
}

// setupConsole installs print and console.log.
func setupConsole(vm *goja.Runtime, out *strings.Builder) error {
	printFunc := func(call goja.FunctionCall) goja.Value {
		args := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			args[i] = arg.String()
		}
		out.WriteString(strings.Join(args, " "))
		out.WriteString("\n")
		return goja.Undefined()
	}
	if err := vm.Set("print", printFunc); err != nil {
		return fmt.Errorf("failed to set print: %w", err)
	}

	console := vm.NewObject()
	if err := console.Set("log", printFunc); err != nil {
		return fmt.Errorf("failed to set console.log: %w", err)
	}
	if err := vm.Set("console", console); err != nil {
		return fmt.Errorf("failed to set console: %w", err)
	}
	return nil
}
