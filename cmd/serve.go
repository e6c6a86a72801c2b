package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/liveline/internal/engine"
	"github.com/itsmostafa/liveline/internal/host"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve an editor over newline-delimited JSON on stdin/stdout",
	Long: `Read editor events from stdin and write annotations to stdout, one JSON
object per line.

Inbound:  {"type":"open|change|cursor","view":ID,"text":DOC,"line":N,"column":N}
          {"type":"focus|close","view":ID}
Outbound: {"type":"annotate","view":ID,"line":N,"column":-1,"text":S,"kind":"success|failure"}
          {"type":"clear","view":ID}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		selector, err := cfg.Selector()
		if err != nil {
			return err
		}

		eng, err := engine.New(engine.Options{
			Selector: selector,
			Executor: cfg.Runner(logger),
			Renderer: host.NewStreamRenderer(cmd.OutOrStdout()),
			Delay:    cfg.Delay,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		defer eng.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return host.Serve(ctx, cmd.InOrStdin(), eng, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
