package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/itsmostafa/liveline/internal/config"
	"github.com/itsmostafa/liveline/internal/debounce"
	"github.com/itsmostafa/liveline/internal/interp"
	"github.com/itsmostafa/liveline/internal/logging"
	"github.com/itsmostafa/liveline/internal/region"
	"github.com/itsmostafa/liveline/internal/version"
)

var configFile string

// Resolved in PersistentPreRunE for every subcommand
var (
	cfg    config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "liveline",
	Short: "Live inline execution feedback for scripts being edited",
	Long: `liveline runs the code around your cursor in a fresh interpreter every time
you pause typing, and shows the last line of output (or the error) next to the
line you are editing.

Editors drive it through "liveline serve"; "liveline watch" follows a file on
disk and "liveline run" evaluates a single line once.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile, cmd.Flags())
		if err != nil {
			return err
		}
		logger, err = logging.New(os.Stderr, cfg.LogLevel)
		return err
	},
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.String() + "\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default: .liveline.yaml in the working or home directory)")
	flags.String(config.KeyInterpreter, interp.DefaultInterpreter, "Interpreter command, or goja/tengo for in-process runs")
	flags.StringSlice(config.KeyArgs, nil, "Extra interpreter arguments placed before the script path")
	flags.String(config.KeyExt, "", "Script file extension (default: derived from the interpreter)")
	flags.Duration(config.KeyDelay, debounce.DefaultDelay, "Quiet period after the last edit before running")
	flags.Duration(config.KeyTimeout, interp.DefaultTimeout, "Maximum run time per execution (0 = unlimited)")
	flags.String(config.KeyPolicy, region.PolicyBlock, "Region policy (block, prefix)")
	flags.String(config.KeyHeader, "", "Function header pattern for the block policy")
	flags.String(config.KeyTempDir, "", "Directory for ephemeral scripts (default: system temp dir)")
	flags.String(config.KeyLogLevel, "info", "Log level (debug, info, warn, error)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
