package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/liveline/internal/annotate"
	"github.com/itsmostafa/liveline/internal/host"
	"github.com/itsmostafa/liveline/internal/interp"
	"github.com/itsmostafa/liveline/internal/reduce"
	"github.com/itsmostafa/liveline/internal/region"
)

// errRunFailed is returned when the evaluated region fails.
var errRunFailed = errors.New("execution failed")

var runLine int

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Evaluate the region ending at one line once",
	Long:  `Select the region ending at --line (default: the last non-blank line), run it and print the annotated line.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		selector, err := cfg.Selector()
		if err != nil {
			return err
		}

		doc := region.NewSnapshot(string(data))
		cursor := region.Cursor{Line: toCursorLine(runLine)}
		if cursor.Line == host.LastLine {
			cursor.Line = max(doc.LastNonBlank(), 0)
		}

		r, ok := selector.Select(doc, cursor)
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "nothing to run on this line")
			return nil
		}

		raw, err := cfg.Runner(logger).Run(cmd.Context(), interp.Request{ID: 1, Source: r.Text})
		if err != nil {
			return err
		}

		res := reduce.Reduce(raw)
		if !res.Empty() {
			fmt.Fprintln(cmd.OutOrStdout(), host.FormatAnnotation(doc.Line(r.Line), annotate.Decoration{
				Line:   r.Line,
				Column: annotate.EndOfLine,
				Text:   res.Text,
				Kind:   res.Kind,
			}))
		}
		if res.Kind == reduce.Failure {
			return errRunFailed
		}
		return nil
	},
}

func init() {
	runCmd.Flags().IntVarP(&runLine, "line", "l", 0, "1-based line to evaluate (0 = last non-blank line)")
	rootCmd.AddCommand(runCmd)
}
