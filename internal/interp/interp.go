// Package interp executes a code region in a fresh interpreter and captures
// its raw output.
//
// Every run writes the region to its own ephemeral unit, a uniquely named
// file in the configured directory, hands the path to a Backend and deletes
// the unit afterwards regardless of how the run ended.
package interp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/itsmostafa/liveline/internal/logging"
	"github.com/itsmostafa/liveline/internal/reduce"
)

// ErrUnit marks I/O faults on the ephemeral unit. Runs failing with ErrUnit
// produce no result.
var ErrUnit = errors.New("ephemeral unit")

// DefaultTimeout bounds a single run when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// unitPrefix starts every ephemeral unit filename.
const unitPrefix = "liveline-"

// Request is one execution of a code region.
type Request struct {
	// ID is the monotonically increasing request token.
	ID uint64
	// Source is the code to run.
	Source string
}

// Backend runs the program stored at path.
type Backend interface {
	// Name returns a human-readable name for this backend (e.g., "python3", "goja")
	Name() string

	// Ext returns the file extension the interpreter expects, including the dot.
	Ext() string

	// Exec runs the program at path as a whole and reports its output. Launch
	// faults are reported through Raw.Err rather than a separate error.
	Exec(ctx context.Context, path string) reduce.Raw
}

// Options configures a Runner.
type Options struct {
	// Dir holds the ephemeral units. Empty means os.TempDir().
	Dir string
	// Ext overrides the backend's file extension when non-empty.
	Ext string
	// Timeout bounds each run. Zero means DefaultTimeout, negative disables it.
	Timeout time.Duration
	// Logger receives debug entries for unit faults. Nil discards them.
	Logger *log.Logger
}

// Runner executes requests through a Backend.
type Runner struct {
	backend Backend
	dir     string
	ext     string
	timeout time.Duration
	logger  *log.Logger
}

// NewRunner creates a Runner for backend.
func NewRunner(backend Backend, opts Options) *Runner {
	if opts.Dir == "" {
		opts.Dir = os.TempDir()
	}
	if opts.Ext == "" {
		opts.Ext = backend.Ext()
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Runner{
		backend: backend,
		dir:     opts.Dir,
		ext:     opts.Ext,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
}

// Backend returns the backend the runner executes with.
func (r *Runner) Backend() Backend {
	return r.backend
}

// Run writes req to a fresh unit, executes it and removes the unit. The
// returned error is non-nil only for unit I/O faults and wraps ErrUnit;
// interpreter failures are part of the Raw result.
func (r *Runner) Run(ctx context.Context, req Request) (raw reduce.Raw, err error) {
	path, err := r.writeUnit(req)
	if err != nil {
		return reduce.Raw{}, err
	}

	defer func() {
		if p := recover(); p != nil {
			raw = reduce.Raw{ExitCode: -1, Err: fmt.Errorf("%s panicked: %v", r.backend.Name(), p)}
			err = nil
		}
	}()
	defer r.removeUnit(req.ID, path)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	return r.backend.Exec(ctx, path), nil
}

// UnitName returns the filename used for request id. The random suffix keeps
// overlapping runs of the same id apart.
func UnitName(id uint64, ext string) string {
	return fmt.Sprintf("%s%d-%s%s", unitPrefix, id, uuid.NewString()[:8], ext)
}

func (r *Runner) writeUnit(req Request) (string, error) {
	path := filepath.Join(r.dir, UnitName(req.ID, r.ext))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("%w: create: %w", ErrUnit, err)
	}

	if _, err := f.WriteString(req.Source); err != nil {
		f.Close()
		r.removeUnit(req.ID, path)
		return "", fmt.Errorf("%w: write %s: %w", ErrUnit, path, err)
	}
	if err := f.Close(); err != nil {
		r.removeUnit(req.ID, path)
		return "", fmt.Errorf("%w: close %s: %w", ErrUnit, path, err)
	}

	return path, nil
}

func (r *Runner) removeUnit(id uint64, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		r.logger.Debug("failed to remove ephemeral unit", "request", id, "path", path, "err", err)
	}
}

// NewBackend picks the backend for an interpreter name. "goja" and "tengo"
// run in-process; anything else is launched as an external command.
func NewBackend(interpreter string, args []string) Backend {
	switch interpreter {
	case GojaName:
		return &Goja{}
	case TengoName:
		return &Tengo{}
	default:
		return NewCommand(interpreter, args)
	}
}
