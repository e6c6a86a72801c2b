// Package reduce turns raw interpreter output into the single line shown
// next to the edited code.
package reduce

import (
	"regexp"
	"strings"
)

// Kind tags a Result as success or failure.
type Kind int

const (
	Success Kind = iota
	Failure
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	if k == Failure {
		return "failure"
	}
	return "success"
}

// Raw is the unprocessed outcome of one interpreter invocation.
type Raw struct {
	Stdout   string
	Stderr   string
	ExitCode int
	// Err is the process error, if any: a launch fault, a timeout or a
	// non-zero exit.
	Err error
}

// Failed reports whether the invocation must be treated as a failure.
// Any stderr output counts, even when stdout carries partial results.
func (r Raw) Failed() bool {
	return r.Err != nil || r.ExitCode != 0 || strings.TrimSpace(r.Stderr) != ""
}

// Result is the display outcome of one execution.
type Result struct {
	Kind Kind
	Text string
}

// Empty reports whether there is nothing to show.
func (r Result) Empty() bool {
	return r.Text == ""
}

// simplifiers rewrite the primary message of a failure into one clean
// sentence.
var simplifiers = []*regexp.Regexp{
	regexp.MustCompile(`NameError: name '[^']+' is not defined`),
	regexp.MustCompile(`ReferenceError: [\w$]+ is not defined`),
}

// tengoError matches the head of a tengo diagnostic, which is followed by
// its "at" location lines.
var tengoError = regexp.MustCompile(`^(?:Compile|Runtime) Error: [^\n]+`)

// Reduce extracts the display line from raw output. It never panics;
// missing output yields an empty Result.
func Reduce(raw Raw) Result {
	if !raw.Failed() {
		return Result{Kind: Success, Text: LastLine(raw.Stdout)}
	}

	text := raw.Stderr
	if strings.TrimSpace(text) == "" && raw.Err != nil {
		text = raw.Err.Error()
	}
	if m := tengoError.FindString(strings.TrimSpace(text)); m != "" {
		return Result{Kind: Failure, Text: strings.TrimSpace(m)}
	}

	msg := LastLine(text)
	for _, re := range simplifiers {
		if m := re.FindString(msg); m != "" {
			return Result{Kind: Failure, Text: m}
		}
	}
	return Result{Kind: Failure, Text: msg}
}

// LastLine returns the last line of s that is not blank, trimmed.
func LastLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
