package host

import (
	"fmt"
	"io"
	"sync"

	"github.com/itsmostafa/liveline/internal/annotate"
)

// Terminal renders annotations as printed lines, each next to the code line
// it was computed for.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminal creates a Terminal writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// Render implements annotate.Renderer.
func (t *Terminal) Render(view string, d annotate.Decoration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := fmt.Fprintln(t.w, FormatAnnotation(d.Source, d))
	return err
}

// Clear implements annotate.Renderer. Printed lines cannot be taken back,
// so nothing is written.
func (t *Terminal) Clear(view string) error {
	return nil
}
