package host

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/itsmostafa/liveline/internal/annotate"
	"github.com/itsmostafa/liveline/internal/reduce"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	// dimStyle for muted metadata text and line numbers
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// annotationStyle for successful output, greyed out like an inline hint
	annotationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	// errorStyle for failed runs
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// headerBoxStyle for the watch header
	headerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)
)

// HeaderInfo describes a watch session.
type HeaderInfo struct {
	File        string
	Interpreter string
	Policy      string
	Delay       time.Duration
}

// FormatHeader renders the watch header with configuration info
func FormatHeader(w io.Writer, info HeaderInfo) {
	content := fmt.Sprintf("%s %s\n%s %s  %s %s  %s %s",
		dimStyle.Render("Watching:"), titleStyle.Render(info.File),
		dimStyle.Render("Interpreter:"), info.Interpreter,
		dimStyle.Render("Policy:"), info.Policy,
		dimStyle.Render("Delay:"), info.Delay,
	)
	fmt.Fprintln(w, headerBoxStyle.Render(content))
}

// AnnotationText returns the inline form of an annotation, " # text".
func AnnotationText(text string) string {
	return " # " + strings.TrimSpace(text)
}

// FormatAnnotation renders a source line followed by its annotation.
// Line numbers are shown 1-based.
func FormatAnnotation(code string, d annotate.Decoration) string {
	style := annotationStyle
	if d.Kind == reduce.Failure {
		style = errorStyle
	}
	gutter := dimStyle.Render(fmt.Sprintf("%4d │", d.Line+1))
	return fmt.Sprintf("%s %s%s", gutter, code, style.Render(AnnotationText(d.Text)))
}
