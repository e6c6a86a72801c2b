package host

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/itsmostafa/liveline/internal/engine"
	"github.com/itsmostafa/liveline/internal/logging"
	"github.com/itsmostafa/liveline/internal/region"
)

// LastLine asks Watch to put the cursor on the last non-blank line.
const LastLine = -1

// WatchOptions configures Watch.
type WatchOptions struct {
	// Path is the file to watch.
	Path string
	// Line is the zero-based cursor line, or LastLine.
	Line int
	Logger *log.Logger
}

// Watch turns every change of a file into an engine event until ctx is
// done. The parent directory is watched so editors that save by renaming
// a temporary file are seen too.
func Watch(ctx context.Context, sink Sink, opts WatchOptions) error {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	path, err := filepath.Abs(opts.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", opts.Path, err)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", opts.Path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	emit := func() {
		data, err := os.ReadFile(path)
		if err != nil {
			opts.Logger.Debug("failed to read watched file", "path", path, "err", err)
			return
		}
		snap := region.NewSnapshot(string(data))
		sink.Notify(engine.Event{View: path, Snapshot: snap, Cursor: cursorFor(snap, opts.Line)})
	}

	sink.Focus(path)
	emit()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				emit()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			opts.Logger.Warn("watch error", "err", err)
		}
	}
}

func cursorFor(snap region.Snapshot, line int) region.Cursor {
	if line == LastLine {
		line = snap.LastNonBlank()
		if line < 0 {
			line = 0
		}
	}
	return region.Cursor{Line: line}
}
