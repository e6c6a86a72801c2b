// Package annotate owns the single inline annotation shown in an editor view
// and its replace/clear transitions.
package annotate

import (
	"github.com/charmbracelet/log"

	"github.com/itsmostafa/liveline/internal/logging"
	"github.com/itsmostafa/liveline/internal/reduce"
)

// EndOfLine places a decoration after the last character of its line.
const EndOfLine = -1

// Decoration is what the host is asked to draw.
type Decoration struct {
	Line   int
	Column int
	Text   string
	Kind   reduce.Kind
	// Source is the annotated line as it read when the request was
	// dispatched.
	Source string
}

// Renderer is the host's decoration primitive.
type Renderer interface {
	// Render draws d in view, replacing whatever was drawn there before.
	Render(view string, d Decoration) error

	// Clear removes any decoration from view.
	Clear(view string) error
}

// Annotation is the logical annotation currently shown.
type Annotation struct {
	Line int
	Text string
	Kind reduce.Kind
}

// Target is where a result lands.
type Target struct {
	Line   int
	Source string
}

// Manager tracks the annotation of one view. It has two states: empty, and
// showing one Annotation. It is not safe for concurrent use.
type Manager struct {
	view     string
	renderer Renderer
	logger   *log.Logger

	latest  uint64
	current *Annotation
}

// NewManager creates an empty Manager drawing into view.
func NewManager(view string, renderer Renderer, logger *log.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{view: view, renderer: renderer, logger: logger}
}

// Current returns the annotation being shown, if any.
func (m *Manager) Current() (Annotation, bool) {
	if m.current == nil {
		return Annotation{}, false
	}
	return *m.current, true
}

// Latest returns the most recently dispatched request id.
func (m *Manager) Latest() uint64 {
	return m.latest
}

// Dispatch records id as the newest request. Results of older requests are
// discarded from now on.
func (m *Manager) Dispatch(id uint64) {
	if id > m.latest {
		m.latest = id
	}
}

// Apply shows res at the target line if id is the newest dispatched request.
// An empty result clears the view. It reports whether the result was
// accepted.
func (m *Manager) Apply(id uint64, at Target, res reduce.Result) bool {
	if id != m.latest {
		m.logger.Debug("discarding stale result", "view", m.view, "request", id, "latest", m.latest)
		return false
	}

	if res.Empty() {
		m.clear()
		return true
	}

	next := Annotation{Line: at.Line, Text: res.Text, Kind: res.Kind}
	if m.current != nil && *m.current == next {
		return true
	}

	// The previous decoration is revoked before the new one is drawn, so two
	// annotations are never visible together.
	m.clear()
	err := m.renderer.Render(m.view, Decoration{
		Line:   next.Line,
		Column: EndOfLine,
		Text:   next.Text,
		Kind:   next.Kind,
		Source: at.Source,
	})
	if err != nil {
		m.logger.Debug("failed to render annotation", "view", m.view, "err", err)
		return true
	}
	m.current = &next
	return true
}

// Clear removes the annotation on behalf of request id, which also
// supersedes every older outstanding request.
func (m *Manager) Clear(id uint64) {
	m.Dispatch(id)
	if id != m.latest {
		return
	}
	m.clear()
}

// Reset removes the annotation unconditionally.
func (m *Manager) Reset() {
	m.clear()
}

func (m *Manager) clear() {
	if m.current == nil {
		return
	}
	m.current = nil
	if err := m.renderer.Clear(m.view); err != nil {
		m.logger.Debug("failed to clear annotation", "view", m.view, "err", err)
	}
}
