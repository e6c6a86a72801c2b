// Package region selects the slice of a document that should be executed
// for a given cursor position.
package region

import (
	"fmt"
	"regexp"
	"strings"
)

// Snapshot is an immutable view of a document's lines at the moment an
// event fired.
type Snapshot struct {
	lines []string
}

// NewSnapshot splits text into lines. Both "\n" and "\r\n" line endings are
// accepted.
func NewSnapshot(text string) Snapshot {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return Snapshot{lines: strings.Split(text, "\n")}
}

// SnapshotOf copies lines into a new Snapshot.
func SnapshotOf(lines []string) Snapshot {
	cp := make([]string, len(lines))
	copy(cp, lines)
	return Snapshot{lines: cp}
}

// LineCount returns the number of lines in the snapshot.
func (s Snapshot) LineCount() int {
	return len(s.lines)
}

// Line returns the text of line i, or "" when i is out of range.
func (s Snapshot) Line(i int) string {
	if i < 0 || i >= len(s.lines) {
		return ""
	}
	return s.lines[i]
}

// Text joins the snapshot back into a single string.
func (s Snapshot) Text() string {
	return strings.Join(s.lines, "\n")
}

// Blank reports whether the whole document is whitespace.
func (s Snapshot) Blank() bool {
	for _, l := range s.lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}

// LastNonBlank returns the index of the last line with content, or -1.
func (s Snapshot) LastNonBlank() int {
	for i := len(s.lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(s.lines[i]) != "" {
			return i
		}
	}
	return -1
}

// Cursor is a zero-based (line, column) position in a Snapshot.
type Cursor struct {
	Line   int
	Column int
}

// Valid reports whether the cursor line lies within the snapshot.
func (c Cursor) Valid(s Snapshot) bool {
	return c.Line >= 0 && c.Line < s.LineCount()
}

// Region is a self-contained piece of code selected for execution together
// with the line its result belongs to.
type Region struct {
	Text string
	Line int
}

// Selector derives the code region to run for a cursor position.
type Selector interface {
	// Name identifies the policy in configuration and logs.
	Name() string

	// Select returns the region to execute, or false when nothing should run.
	Select(doc Snapshot, cursor Cursor) (Region, bool)
}

// Policy names accepted by New.
const (
	PolicyBlock  = "block"
	PolicyPrefix = "prefix"
)

// DefaultHeader matches a Python function definition header.
const DefaultHeader = `^\s*def\s+\w+\s*\(.*\)\s*:`

// New builds the selector named by policy. header is only used by the block
// policy; an empty header means DefaultHeader.
func New(policy, header string) (Selector, error) {
	switch policy {
	case PolicyPrefix:
		return Prefix{}, nil
	case PolicyBlock, "":
		return NewBlock(header)
	default:
		return nil, fmt.Errorf("unknown selection policy: %q (valid options: block, prefix)", policy)
	}
}

// Prefix selects every line from the top of the document through the
// cursor line.
type Prefix struct{}

// Name returns the policy name
func (Prefix) Name() string { return PolicyPrefix }

// Select implements Selector.
func (Prefix) Select(doc Snapshot, cursor Cursor) (Region, bool) {
	if !runnable(doc, cursor) {
		return Region{}, false
	}

	text := strings.Join(doc.lines[:cursor.Line+1], "\n")
	if strings.TrimSpace(text) == "" {
		return Region{}, false
	}
	return Region{Text: text + "\n", Line: cursor.Line}, true
}

// Block selects the code accumulated since the most recent function header
// above the cursor. Lines are trimmed, so only flat function bodies survive
// intact and outer-scope definitions are not visible to the executed code.
type Block struct {
	header *regexp.Regexp
}

// NewBlock compiles header into a Block selector.
func NewBlock(header string) (*Block, error) {
	if header == "" {
		header = DefaultHeader
	}
	re, err := regexp.Compile(header)
	if err != nil {
		return nil, fmt.Errorf("invalid header pattern %q: %w", header, err)
	}
	return &Block{header: re}, nil
}

// Name returns the policy name
func (b *Block) Name() string { return PolicyBlock }

// Select implements Selector.
func (b *Block) Select(doc Snapshot, cursor Cursor) (Region, bool) {
	if !runnable(doc, cursor) {
		return Region{}, false
	}

	var acc []string
	for i := 0; i <= cursor.Line; i++ {
		line := doc.lines[i]
		if b.header.MatchString(line) {
			acc = acc[:0]
			continue
		}
		acc = append(acc, strings.TrimSpace(line))
	}

	text := strings.Join(acc, "\n")
	if strings.TrimSpace(text) == "" {
		return Region{}, false
	}
	return Region{Text: text + "\n", Line: cursor.Line}, true
}

func runnable(doc Snapshot, cursor Cursor) bool {
	if !cursor.Valid(doc) || doc.Blank() {
		return false
	}
	return strings.TrimSpace(doc.lines[cursor.Line]) != ""
}
