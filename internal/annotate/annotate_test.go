package annotate

import (
	"errors"
	"testing"

	"github.com/itsmostafa/liveline/internal/reduce"
)

// screen mimics a host that keeps a list of drawn decorations per view.
type screen struct {
	drawn     map[string][]Decoration
	renders   int
	clears    int
	failDraws bool
}

func newScreen() *screen {
	return &screen{drawn: make(map[string][]Decoration)}
}

func (s *screen) Render(view string, d Decoration) error {
	if s.failDraws {
		return errors.New("draw failed")
	}
	s.renders++
	s.drawn[view] = append(s.drawn[view], d)
	return nil
}

func (s *screen) Clear(view string) error {
	s.clears++
	delete(s.drawn, view)
	return nil
}

func ok(text string) reduce.Result {
	return reduce.Result{Kind: reduce.Success, Text: text}
}

func TestApplyShowsAndReplaces(t *testing.T) {
	s := newScreen()
	m := NewManager("a.py", s, nil)

	m.Dispatch(1)
	if !m.Apply(1, Target{Line: 3}, ok("2")) {
		t.Fatal("Apply() rejected the current request")
	}
	m.Dispatch(2)
	m.Apply(2, Target{Line: 4}, reduce.Result{Kind: reduce.Failure, Text: "boom"})

	drawn := s.drawn["a.py"]
	if len(drawn) != 1 {
		t.Fatalf("%d decorations visible, want 1", len(drawn))
	}
	want := Decoration{Line: 4, Column: EndOfLine, Text: "boom", Kind: reduce.Failure}
	if drawn[0] != want {
		t.Errorf("decoration = %+v, want %+v", drawn[0], want)
	}
	cur, showing := m.Current()
	if !showing || cur.Text != "boom" || cur.Line != 4 {
		t.Errorf("Current() = %+v, %v", cur, showing)
	}
}

func TestApplyCarriesSource(t *testing.T) {
	s := newScreen()
	m := NewManager("a.py", s, nil)

	m.Dispatch(1)
	m.Apply(1, Target{Line: 2, Source: "print(x)"}, ok("1"))

	drawn := s.drawn["a.py"]
	if len(drawn) != 1 || drawn[0].Source != "print(x)" || drawn[0].Line != 2 {
		t.Errorf("decorations = %+v, want one at line 2 with its source", drawn)
	}
}

func TestApplySameResultTwice(t *testing.T) {
	s := newScreen()
	m := NewManager("a.py", s, nil)

	m.Dispatch(1)
	m.Apply(1, Target{Line: 0}, ok("2"))
	m.Apply(1, Target{Line: 0}, ok("2"))

	if got := len(s.drawn["a.py"]); got != 1 {
		t.Fatalf("%d decorations visible, want 1", got)
	}
	if s.renders != 1 {
		t.Errorf("renders = %d, want 1", s.renders)
	}
}

func TestApplyEmptyClears(t *testing.T) {
	s := newScreen()
	m := NewManager("a.py", s, nil)

	m.Dispatch(1)
	m.Apply(1, Target{Line: 0}, ok("2"))
	m.Dispatch(2)
	m.Apply(2, Target{Line: 0}, ok(""))

	if _, showing := m.Current(); showing {
		t.Error("Current() still showing after an empty result")
	}
	if len(s.drawn["a.py"]) != 0 {
		t.Error("decoration still visible after an empty result")
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	s := newScreen()
	m := NewManager("a.py", s, nil)

	m.Dispatch(1)
	m.Dispatch(2)
	m.Apply(2, Target{Line: 5}, ok("new"))

	if m.Apply(1, Target{Line: 4}, ok("old")) {
		t.Error("Apply() accepted a superseded request")
	}
	cur, _ := m.Current()
	if cur.Text != "new" {
		t.Errorf("Current() text = %q, want %q", cur.Text, "new")
	}
}

func TestClearSupersedesOutstanding(t *testing.T) {
	s := newScreen()
	m := NewManager("a.py", s, nil)

	m.Dispatch(1)
	m.Apply(1, Target{Line: 0}, ok("1"))
	m.Dispatch(2)
	m.Clear(3)

	if m.Apply(2, Target{Line: 0}, ok("late")) {
		t.Error("Apply() accepted a request older than the clear")
	}
	if len(s.drawn["a.py"]) != 0 {
		t.Error("decoration visible after clear")
	}
	if m.Latest() != 3 {
		t.Errorf("Latest() = %d, want 3", m.Latest())
	}
}

func TestClearOlderIdIgnored(t *testing.T) {
	s := newScreen()
	m := NewManager("a.py", s, nil)

	m.Dispatch(5)
	m.Apply(5, Target{Line: 0}, ok("shown"))
	m.Clear(4)

	if _, showing := m.Current(); !showing {
		t.Error("an outdated clear removed the annotation")
	}
}

func TestResetAndViewsIndependent(t *testing.T) {
	s := newScreen()
	a := NewManager("a.py", s, nil)
	b := NewManager("b.py", s, nil)

	a.Dispatch(1)
	a.Apply(1, Target{Line: 0}, ok("a"))
	b.Dispatch(1)
	b.Apply(1, Target{Line: 0}, ok("b"))
	a.Reset()

	if len(s.drawn["a.py"]) != 0 {
		t.Error("a.py still decorated after Reset")
	}
	if len(s.drawn["b.py"]) != 1 {
		t.Error("b.py lost its decoration")
	}
}

func TestRenderFailureLeavesEmpty(t *testing.T) {
	s := newScreen()
	s.failDraws = true
	m := NewManager("a.py", s, nil)

	m.Dispatch(1)
	m.Apply(1, Target{Line: 0}, ok("x"))

	if _, showing := m.Current(); showing {
		t.Error("Current() reports an annotation the host failed to draw")
	}
}
