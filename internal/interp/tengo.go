package interp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/itsmostafa/liveline/internal/reduce"
)

// TengoName selects the in-process Tengo backend.
const TengoName = "tengo"

// defaultMaxAllocs limits object allocations of a single Tengo run.
const defaultMaxAllocs = 1000000

// Tengo executes Tengo units with the standard library available and
// print/println builtins writing to the captured stdout.
type Tengo struct {
	// MaxAllocs caps allocations per run. Zero means the default limit.
	MaxAllocs int64
}

// Name returns the backend name
func (*Tengo) Name() string { return TengoName }

// Ext returns ".tengo"
func (*Tengo) Ext() string { return ".tengo" }

// Exec compiles and runs the unit at path.
func (t *Tengo) Exec(ctx context.Context, path string) reduce.Raw {
	src, err := os.ReadFile(path)
	if err != nil {
		return reduce.Raw{ExitCode: -1, Err: fmt.Errorf("failed to read unit: %w", err)}
	}

	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	maxAllocs := t.MaxAllocs
	if maxAllocs == 0 {
		maxAllocs = defaultMaxAllocs
	}
	script.SetMaxAllocs(maxAllocs)

	var stdout strings.Builder
	addPrintFunctions(script, &stdout)

	compiled, err := script.Compile()
	if err != nil {
		return reduce.Raw{ExitCode: 1, Stderr: err.Error() + "\n"}
	}

	raw := reduce.Raw{}
	err = compiled.RunContext(ctx)
	raw.Stdout = stdout.String()
	if err == nil {
		return raw
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		raw.ExitCode = -1
		raw.Err = fmt.Errorf("execution interrupted: %w", err)
		return raw
	}

	raw.ExitCode = 1
	raw.Stderr = err.Error() + "\n"
	return raw
}

// addPrintFunctions installs print (no newline) and println.
func addPrintFunctions(script *tengo.Script, out *strings.Builder) {
	write := func(args []tengo.Object) {
		for i, arg := range args {
			if i > 0 {
				out.WriteString(" ")
			}
			out.WriteString(objectToString(arg))
		}
	}

	_ = script.Add("println", &tengo.UserFunction{
		Name: "println",
		Value: func(args ...tengo.Object) (tengo.Object, error) {
			write(args)
			out.WriteString("\n")
			return tengo.UndefinedValue, nil
		},
	})

	_ = script.Add("print", &tengo.UserFunction{
		Name: "print",
		Value: func(args ...tengo.Object) (tengo.Object, error) {
			write(args)
			return tengo.UndefinedValue, nil
		},
	})
}

// objectToString converts a Tengo object to its display form
func objectToString(obj tengo.Object) string {
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return fmt.Sprintf("%d", v.Value)
	case *tengo.Float:
		return fmt.Sprintf("%g", v.Value)
	case *tengo.Bool:
		if !v.IsFalsy() {
			return "true"
		}
		return "false"
	case *tengo.Undefined:
		return "undefined"
	default:
		return obj.String()
	}
}
