// Package host connects the engine to the outside world: an editor speaking
// newline-delimited JSON, a watched file, or a terminal.
package host

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/itsmostafa/liveline/internal/annotate"
	"github.com/itsmostafa/liveline/internal/engine"
	"github.com/itsmostafa/liveline/internal/logging"
	"github.com/itsmostafa/liveline/internal/region"
)

// Message types exchanged with an editor.
const (
	TypeOpen     = "open"
	TypeChange   = "change"
	TypeCursor   = "cursor"
	TypeFocus    = "focus"
	TypeClose    = "close"
	TypeAnnotate = "annotate"
	TypeClear    = "clear"
)

// maxMessageSize bounds one inbound line, which carries a whole document.
const maxMessageSize = 16 * 1024 * 1024

// Message is one line of the stream protocol in either direction.
type Message struct {
	Type   string `json:"type"`
	View   string `json:"view"`
	Text   string `json:"text,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Kind   string `json:"kind,omitempty"`
}

// Sink receives host events. *engine.Engine implements it.
type Sink interface {
	Notify(ev engine.Event)
	Focus(view string)
	Forget(view string)
}

// Serve reads messages from r until EOF or ctx is done and forwards them to
// sink. Malformed lines are logged and skipped.
func Serve(ctx context.Context, r io.Reader, sink Sink, logger *log.Logger) error {
	if logger == nil {
		logger = logging.Discard()
	}

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxMessageSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			logger.Warn("skipping malformed message", "err", err)
			continue
		}
		if err := dispatch(msg, sink); err != nil {
			logger.Warn("skipping message", "type", msg.Type, "err", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read messages: %w", err)
	}
	return nil
}

func dispatch(msg Message, sink Sink) error {
	if msg.View == "" {
		return fmt.Errorf("missing view")
	}

	switch msg.Type {
	case TypeOpen, TypeChange, TypeCursor:
		sink.Notify(engine.Event{
			View:     msg.View,
			Snapshot: region.NewSnapshot(msg.Text),
			Cursor:   region.Cursor{Line: msg.Line, Column: msg.Column},
		})
	case TypeFocus:
		sink.Focus(msg.View)
	case TypeClose:
		sink.Forget(msg.View)
	default:
		return fmt.Errorf("unknown message type: %q", msg.Type)
	}
	return nil
}

// StreamRenderer writes annotate and clear messages as JSON lines.
type StreamRenderer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewStreamRenderer creates a StreamRenderer writing to w.
func NewStreamRenderer(w io.Writer) *StreamRenderer {
	return &StreamRenderer{enc: json.NewEncoder(w)}
}

// Render implements annotate.Renderer.
func (s *StreamRenderer) Render(view string, d annotate.Decoration) error {
	return s.write(Message{
		Type:   TypeAnnotate,
		View:   view,
		Text:   d.Text,
		Line:   d.Line,
		Column: d.Column,
		Kind:   d.Kind.String(),
	})
}

// Clear implements annotate.Renderer.
func (s *StreamRenderer) Clear(view string) error {
	return s.write(Message{Type: TypeClear, View: view})
}

func (s *StreamRenderer) write(msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(msg); err != nil {
		return fmt.Errorf("failed to write %s message: %w", msg.Type, err)
	}
	return nil
}
