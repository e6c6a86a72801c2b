package region

import (
	"strings"
	"testing"
)

func TestNewSnapshot(t *testing.T) {
	s := NewSnapshot("a = 1\r\nprint(a)\n")
	if s.LineCount() != 3 {
		t.Fatalf("LineCount() = %d, want 3", s.LineCount())
	}
	if s.Line(1) != "print(a)" {
		t.Errorf("Line(1) = %q, want %q", s.Line(1), "print(a)")
	}
	if s.Line(7) != "" {
		t.Errorf("Line(7) = %q, want empty", s.Line(7))
	}
	if got := s.LastNonBlank(); got != 1 {
		t.Errorf("LastNonBlank() = %d, want 1", got)
	}
}

func TestSnapshotOfCopies(t *testing.T) {
	lines := []string{"x = 1"}
	s := SnapshotOf(lines)
	lines[0] = "changed"
	if s.Line(0) != "x = 1" {
		t.Errorf("snapshot was mutated through the source slice: %q", s.Line(0))
	}
}

func TestBlockSelect(t *testing.T) {
	sel, err := NewBlock("")
	if err != nil {
		t.Fatalf("NewBlock() error: %v", err)
	}

	tests := []struct {
		name   string
		lines  []string
		line   int
		want   string
		wantOK bool
	}{
		{
			name:   "enclosing function body only",
			lines:  []string{"import os", "z = 3", "def f():", "  x = 1", "  y = 2"},
			line:   4,
			want:   "x = 1\ny = 2\n",
			wantOK: true,
		},
		{
			name:   "latest header wins",
			lines:  []string{"def f():", "  a = 1", "def g(x, y):", "  b = 2"},
			line:   3,
			want:   "b = 2\n",
			wantOK: true,
		},
		{
			name:   "no header keeps everything trimmed",
			lines:  []string{"a = 1", "    print(a)"},
			line:   1,
			want:   "a = 1\nprint(a)\n",
			wantOK: true,
		},
		{
			name:   "lines after cursor ignored",
			lines:  []string{"a = 1", "print(a)", "boom("},
			line:   1,
			want:   "a = 1\nprint(a)\n",
			wantOK: true,
		},
		{
			name:   "blank cursor line",
			lines:  []string{"a = 1", "   "},
			line:   1,
			wantOK: false,
		},
		{
			name:   "cursor on header",
			lines:  []string{"def f():"},
			line:   0,
			wantOK: false,
		},
		{
			name:   "cursor out of range",
			lines:  []string{"a = 1"},
			line:   4,
			wantOK: false,
		},
		{
			name:   "negative cursor",
			lines:  []string{"a = 1"},
			line:   -1,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := sel.Select(SnapshotOf(tt.lines), Cursor{Line: tt.line})
			if ok != tt.wantOK {
				t.Fatalf("Select() ok = %v, want %v (region %q)", ok, tt.wantOK, got.Text)
			}
			if !ok {
				return
			}
			if got.Text != tt.want {
				t.Errorf("Select() text = %q, want %q", got.Text, tt.want)
			}
			if got.Line != tt.line {
				t.Errorf("Select() line = %d, want %d", got.Line, tt.line)
			}
		})
	}
}

func TestPrefixSelect(t *testing.T) {
	doc := NewSnapshot("def f():\n    return 1\n\nprint(f())\nlater()")

	got, ok := Prefix{}.Select(doc, Cursor{Line: 3})
	if !ok {
		t.Fatal("Select() returned no region")
	}
	want := "def f():\n    return 1\n\nprint(f())\n"
	if got.Text != want {
		t.Errorf("Select() = %q, want %q", got.Text, want)
	}

	if _, ok := (Prefix{}).Select(doc, Cursor{Line: 2}); ok {
		t.Error("Select() on a blank line should not produce a region")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		policy  string
		header  string
		want    string
		wantErr bool
	}{
		{policy: "", want: PolicyBlock},
		{policy: PolicyBlock, header: `^\s*function\s+\w+`, want: PolicyBlock},
		{policy: PolicyPrefix, want: PolicyPrefix},
		{policy: "whole-document", wantErr: true},
		{policy: PolicyBlock, header: "(", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.policy+tt.header, func(t *testing.T) {
			sel, err := New(tt.policy, tt.header)
			if tt.wantErr {
				if err == nil {
					t.Fatal("New() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}
			if sel.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", sel.Name(), tt.want)
			}
		})
	}
}

func TestCustomHeader(t *testing.T) {
	sel, err := NewBlock(`^\s*function\s+\w+\s*\(.*\)\s*\{`)
	if err != nil {
		t.Fatalf("NewBlock() error: %v", err)
	}
	doc := SnapshotOf([]string{"var top = 1;", "function f(a) {", "  var x = a + 1;", "  print(x);"})
	got, ok := sel.Select(doc, Cursor{Line: 3})
	if !ok {
		t.Fatal("Select() returned no region")
	}
	if strings.Contains(got.Text, "top") {
		t.Errorf("Select() leaked outer scope: %q", got.Text)
	}
}
