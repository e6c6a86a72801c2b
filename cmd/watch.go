package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/liveline/internal/engine"
	"github.com/itsmostafa/liveline/internal/host"
)

var watchLine int

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Re-run a file on every save and print the annotated line",
	Long: `Watch FILE and, every time it is written, run the region ending at --line
(default: the last non-blank line) and print that line with its result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		selector, err := cfg.Selector()
		if err != nil {
			return err
		}

		runner := cfg.Runner(logger)
		eng, err := engine.New(engine.Options{
			Selector: selector,
			Executor: runner,
			Renderer: host.NewTerminal(cmd.OutOrStdout()),
			Delay:    cfg.Delay,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		defer eng.Close()

		host.FormatHeader(cmd.OutOrStdout(), host.HeaderInfo{
			File:        args[0],
			Interpreter: runner.Backend().Name(),
			Policy:      selector.Name(),
			Delay:       cfg.Delay,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return host.Watch(ctx, eng, host.WatchOptions{
			Path:   args[0],
			Line:   toCursorLine(watchLine),
			Logger: logger,
		})
	},
}

func init() {
	watchCmd.Flags().IntVarP(&watchLine, "line", "l", 0, "1-based line to annotate (0 = last non-blank line)")
	rootCmd.AddCommand(watchCmd)
}

// toCursorLine converts a 1-based flag value to a zero-based cursor line.
func toCursorLine(line int) int {
	if line <= 0 {
		return host.LastLine
	}
	return line - 1
}
