// Package config loads liveline settings from defaults, an optional
// .liveline.yaml file, LIVELINE_* environment variables and command flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/itsmostafa/liveline/internal/debounce"
	"github.com/itsmostafa/liveline/internal/interp"
	"github.com/itsmostafa/liveline/internal/region"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// EnvPrefix prefixes environment overrides, e.g. LIVELINE_INTERPRETER.
const EnvPrefix = "LIVELINE"

// Keys shared by flags, environment variables and the config file.
const (
	KeyInterpreter = "interpreter"
	KeyArgs        = "args"
	KeyExt         = "ext"
	KeyDelay       = "delay"
	KeyTimeout     = "timeout"
	KeyPolicy      = "policy"
	KeyHeader      = "header"
	KeyTempDir     = "temp-dir"
	KeyLogLevel    = "log-level"
)

// headers maps a unit extension to the function header pattern the block
// policy uses when none is configured. Unknown extensions fall back to
// region.DefaultHeader.
var headers = map[string]string{
	".py":    region.DefaultHeader,
	".js":    `^\s*(?:async\s+)?function\s*\*?\s*[\w$]+\s*\(.*\)\s*\{\s*$`,
	".tengo": `^\s*\w+\s*:?=\s*func\s*\(.*\)\s*\{\s*$`,
	".rb":    `^\s*def\s+[\w.]+[?!=]?(?:\s*\(.*\))?\s*$`,
	".lua":   `^\s*(?:local\s+)?function\s+[\w.:]+\s*\(.*\)\s*$`,
	".sh":    `^\s*(?:function\s+[\w-]+(?:\s*\(\))?|[\w-]+\s*\(\))\s*\{?\s*$`,
	".pl":    `^\s*sub\s+\w+\s*\{?\s*$`,
	".php":   `^\s*(?:(?:public|private|protected|static)\s+)*function\s+\w+\s*\(.*\)\s*\{?\s*$`,
}

// Config holds the resolved settings.
type Config struct {
	// Interpreter is the command to run, or "goja"/"tengo" for in-process runs
	Interpreter string
	// Args are passed to the interpreter before the unit path
	Args []string
	// Ext overrides the unit file extension
	Ext string
	// Delay is the debounce quiescence window
	Delay time.Duration
	// Timeout bounds one interpreter run; zero disables the limit
	Timeout time.Duration
	// Policy selects the region policy: block or prefix
	Policy string
	// Header overrides the block policy's function header pattern
	Header string
	// TempDir holds ephemeral units
	TempDir string
	// LogLevel is one of debug, info, warn, error
	LogLevel string
}

// Default returns a Config with the built-in defaults.
func Default() Config {
	return Config{
		Interpreter: interp.DefaultInterpreter,
		Delay:       debounce.DefaultDelay,
		Timeout:     interp.DefaultTimeout,
		Policy:      region.PolicyBlock,
		LogLevel:    "info",
	}
}

// Load resolves the configuration. file names an explicit config file; when
// empty, .liveline.yaml is looked up in the working directory and then the
// home directory, and its absence is not an error. flags may be nil.
func Load(file string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault(KeyInterpreter, def.Interpreter)
	v.SetDefault(KeyArgs, []string{})
	v.SetDefault(KeyExt, "")
	v.SetDefault(KeyDelay, def.Delay)
	v.SetDefault(KeyTimeout, def.Timeout)
	v.SetDefault(KeyPolicy, def.Policy)
	v.SetDefault(KeyHeader, "")
	v.SetDefault(KeyTempDir, "")
	v.SetDefault(KeyLogLevel, def.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".liveline")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	cfg := Config{
		Interpreter: v.GetString(KeyInterpreter),
		Args:        v.GetStringSlice(KeyArgs),
		Ext:         v.GetString(KeyExt),
		Delay:       v.GetDuration(KeyDelay),
		Timeout:     v.GetDuration(KeyTimeout),
		Policy:      v.GetString(KeyPolicy),
		Header:      v.GetString(KeyHeader),
		TempDir:     v.GetString(KeyTempDir),
		LogLevel:    v.GetString(KeyLogLevel),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Interpreter) == "" {
		return fmt.Errorf("%w: interpreter must not be empty", ErrInvalid)
	}
	if c.Delay <= 0 {
		return fmt.Errorf("%w: delay must be positive, got %s", ErrInvalid, c.Delay)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative, got %s", ErrInvalid, c.Timeout)
	}
	if _, err := c.Selector(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	if c.TempDir != "" {
		info, err := os.Stat(c.TempDir)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("%w: temp dir %q is not a directory", ErrInvalid, c.TempDir)
		}
	}
	return nil
}

// HeaderPattern returns the function header pattern for the block policy:
// the configured one, else the one matching the unit extension of the
// interpreter.
func (c Config) HeaderPattern() string {
	if c.Header != "" {
		return c.Header
	}
	ext := c.Ext
	if ext == "" {
		ext = interp.NewBackend(c.Interpreter, c.Args).Ext()
	}
	if h, ok := headers[ext]; ok {
		return h
	}
	return region.DefaultHeader
}

// Selector builds the configured region selector.
func (c Config) Selector() (region.Selector, error) {
	return region.New(c.Policy, c.HeaderPattern())
}

// Runner builds the interpreter runner.
func (c Config) Runner(logger *log.Logger) *interp.Runner {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = -1
	}
	return interp.NewRunner(interp.NewBackend(c.Interpreter, c.Args), interp.Options{
		Dir:     c.TempDir,
		Ext:     c.Ext,
		Timeout: timeout,
		Logger:  logger,
	})
}
