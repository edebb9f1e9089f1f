// Package main is the scriptsense command line: batch diagnostics,
// completion queries, catalog listing and workspace tab management.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/scriptsense/internal/config"
	"github.com/dshills/scriptsense/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

// errFindings makes the process exit with status 1 without printing an
// extra message.
var errFindings = errors.New("errors found")

var rootCmd = &cobra.Command{
	Use:           "scriptsense",
	Short:         "Lua script diagnostics, completion and workspace tools",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		mode, err := cmd.Root().PersistentFlags().GetString("color")
		if err != nil {
			return fmt.Errorf("failed to get color flag: %w", err)
		}
		return setColorMode(mode, os.Stdout)
	},
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s)", version, commit)

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(tabsCmd)

	rootCmd.PersistentFlags().String("config", config.FileName, "path to configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("workspace", "", "workspace id")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// loadConfig resolves the file, environment and flag layers.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()

	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return config.Config{}, err
	}

	if level, _ := flags.GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if ws, _ := flags.GetString("workspace"); ws != "" {
		cfg.Persistence.Workspace = ws
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *logging.Logger {
	return logging.New(logging.Config{
		Level:  cfg.LogLevel(),
		Output: os.Stderr,
		Prefix: "scriptsense",
	})
}

func setColorMode(mode string, out *os.File) error {
	switch mode {
	case "auto":
		color.NoColor = !isTerminal(out) || os.Getenv("NO_COLOR") != ""
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("unknown color mode %q", mode)
	}
	return nil
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
