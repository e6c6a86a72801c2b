// Package engine wires selection, debouncing, execution and annotation into
// the live feedback loop driven by editor events.
//
// All decisions happen on one goroutine owned by the Engine. Public methods
// post work to it; timer fires and interpreter completions are posted back
// to it as well, so engine state needs no locking. Only interpreter runs
// happen elsewhere, and their results are matched against the newest
// request of their view before anything is drawn.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/itsmostafa/liveline/internal/annotate"
	"github.com/itsmostafa/liveline/internal/debounce"
	"github.com/itsmostafa/liveline/internal/interp"
	"github.com/itsmostafa/liveline/internal/logging"
	"github.com/itsmostafa/liveline/internal/reduce"
	"github.com/itsmostafa/liveline/internal/region"
)

// Event is an edit or cursor movement reported by the host.
type Event struct {
	View     string
	Snapshot region.Snapshot
	Cursor   region.Cursor
}

// Executor runs one request. *interp.Runner implements it.
type Executor interface {
	Run(ctx context.Context, req interp.Request) (reduce.Raw, error)
}

// Options configures an Engine.
type Options struct {
	Selector region.Selector
	Executor Executor
	Renderer annotate.Renderer
	// Delay is the quiescence window. Zero means debounce.DefaultDelay.
	Delay time.Duration
	// Clock drives the debouncers. Nil means the wall clock.
	Clock  debounce.Clock
	Logger *log.Logger
}

// Engine is the live execution-and-annotation loop for any number of views.
type Engine struct {
	selector region.Selector
	executor Executor
	renderer annotate.Renderer
	delay    time.Duration
	clock    debounce.Clock
	logger   *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	inbox     chan func()
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	runs      sync.WaitGroup

	// Owned by the loop goroutine.
	views  map[string]*view
	active string
	lastID uint64
	closed bool
}

type view struct {
	debouncer *debounce.Debouncer
	manager   *annotate.Manager
	pending   Event
}

// New validates opts and starts the engine loop.
func New(opts Options) (*Engine, error) {
	if opts.Selector == nil {
		return nil, errors.New("engine: selector is required")
	}
	if opts.Executor == nil {
		return nil, errors.New("engine: executor is required")
	}
	if opts.Renderer == nil {
		return nil, errors.New("engine: renderer is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		selector: opts.Selector,
		executor: opts.Executor,
		renderer: opts.Renderer,
		delay:    opts.Delay,
		clock:    opts.Clock,
		logger:   opts.Logger,
		ctx:      ctx,
		cancel:   cancel,
		inbox:    make(chan func(), 64),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		views:    make(map[string]*view),
	}

	go e.loop()
	e.logger.Info("live execution active", "policy", e.selector.Name())
	return e, nil
}

// Notify reports an edit or cursor movement. The region around the cursor
// runs once the view has been quiet for the debounce delay.
func (e *Engine) Notify(ev Event) {
	e.post(func() { e.handle(ev) })
}

// Focus marks view as the active one. Fires scheduled for other views are
// skipped.
func (e *Engine) Focus(name string) {
	e.post(func() {
		if e.closed {
			return
		}
		e.active = name
	})
}

// Forget drops all state of view and clears its annotation.
func (e *Engine) Forget(name string) {
	e.post(func() {
		v, ok := e.views[name]
		if !ok {
			return
		}
		v.debouncer.Stop()
		v.manager.Reset()
		delete(e.views, name)
		if e.active == name {
			e.active = ""
		}
	})
}

// Current returns the annotation shown in view.
func (e *Engine) Current(name string) (annotate.Annotation, bool) {
	var (
		a  annotate.Annotation
		ok bool
	)
	e.call(func() {
		if v, exists := e.views[name]; exists {
			a, ok = v.manager.Current()
		}
	})
	return a, ok
}

// Close stops listening, clears every annotation and waits for in-flight
// runs so their ephemeral units are removed. Running interpreters are
// cancelled.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.call(func() {
			e.closed = true
			for _, v := range e.views {
				v.debouncer.Stop()
				v.manager.Reset()
			}
		})
		close(e.done)
		<-e.stopped
		e.cancel()
		e.runs.Wait()
		e.logger.Info("live execution deactivated")
	})
}

func (e *Engine) loop() {
	defer close(e.stopped)
	for {
		select {
		case fn := <-e.inbox:
			e.safely(fn)
		case <-e.done:
			return
		}
	}
}

func (e *Engine) safely(fn func()) {
	defer func() {
		if p := recover(); p != nil {
			e.logger.Error("engine step panicked", "panic", p)
		}
	}()
	fn()
}

// post queues fn on the loop. It reports false once the engine is closed.
func (e *Engine) post(fn func()) bool {
	select {
	case <-e.done:
		return false
	default:
	}
	select {
	case e.inbox <- fn:
		return true
	case <-e.done:
		return false
	}
}

// call runs fn on the loop and waits for it.
func (e *Engine) call(fn func()) {
	ran := make(chan struct{})
	if !e.post(func() { defer close(ran); fn() }) {
		return
	}
	select {
	case <-ran:
	case <-e.stopped:
	}
}

func (e *Engine) viewFor(name string) *view {
	v, ok := e.views[name]
	if !ok {
		v = &view{
			debouncer: debounce.New(e.delay, e.clock),
			manager:   annotate.NewManager(name, e.renderer, e.logger),
		}
		e.views[name] = v
	}
	return v
}

func (e *Engine) handle(ev Event) {
	if e.closed {
		return
	}
	v := e.viewFor(ev.View)
	e.active = ev.View
	v.pending = ev
	v.debouncer.Schedule(func(h debounce.Handle) {
		e.post(func() { e.fire(ev.View, h) })
	})
}

func (e *Engine) fire(name string, h debounce.Handle) {
	v, ok := e.views[name]
	if !ok || e.closed || !v.debouncer.Claim(h) {
		return
	}
	if e.active != name {
		e.logger.Debug("skipping fire for inactive view", "view", name, "active", e.active)
		return
	}
	e.dispatch(name, v)
}

func (e *Engine) dispatch(name string, v *view) {
	e.lastID++
	id := e.lastID
	ev := v.pending

	r, ok := e.selector.Select(ev.Snapshot, ev.Cursor)
	if !ok {
		v.manager.Clear(id)
		return
	}
	v.manager.Dispatch(id)
	at := annotate.Target{Line: r.Line, Source: ev.Snapshot.Line(r.Line)}

	e.runs.Add(1)
	go func() {
		defer e.runs.Done()
		raw, err := e.executor.Run(e.ctx, interp.Request{ID: id, Source: r.Text})
		e.post(func() { e.complete(name, id, at, raw, err) })
	}()
}

func (e *Engine) complete(name string, id uint64, at annotate.Target, raw reduce.Raw, err error) {
	v, ok := e.views[name]
	if !ok || e.closed {
		return
	}
	if err != nil {
		e.logger.Debug("execution produced no result", "view", name, "request", id, "err", err)
		v.manager.Apply(id, at, reduce.Result{})
		return
	}
	v.manager.Apply(id, at, reduce.Reduce(raw))
}
