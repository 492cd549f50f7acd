package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/slidedeck/internal/api"
	"github.com/jackzampolin/slidedeck/internal/config"
	"github.com/jackzampolin/slidedeck/internal/home"
	"github.com/jackzampolin/slidedeck/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "slidedeck",
	Short: "Assemble PowerPoint decks from a template and a content description",
	Long: `Slidedeck turns a JSON content description into a PPTX deck built on the
layouts of an existing PowerPoint template.

It can also ask an LLM to write the content description:
  - outline: a per-slide plan naming a layout for each slide
  - generate: outline, detailed slide content and assembly in one run

Each slide's text goes into layout placeholders by idx, and tables are
placed over the placeholder they name.`,
	Version:      version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.slidedeck/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "slidedeck home directory (default: ~/.slidedeck)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "log at debug level",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}

// getHome resolves the home directory from --home.
func getHome() (*home.Dir, error) {
	return home.New(homeDir)
}

// loadConfig reads --config, or config.yaml from the working directory or
// the home directory.
func loadConfig(h *home.Dir) (*config.Manager, error) {
	return config.NewManager(cfgFile, h.Path())
}

// newLogger returns the CLI logger. Commands log to stderr so that stdout
// carries only structured output.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// templatePath returns flag when set, otherwise the configured default
// template in the masters directory.
func templatePath(h *home.Dir, cfg *config.Config, flag string) string {
	if flag != "" {
		return flag
	}
	return h.MasterPath(cfg.Defaults.Template)
}

// manualPath returns flag when set, otherwise the configured default manual.
func manualPath(h *home.Dir, cfg *config.Config, flag string) string {
	if flag != "" {
		return flag
	}
	return h.MasterPath(cfg.Defaults.Manual)
}
