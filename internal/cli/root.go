// Package cli implements the storefront command line: an interactive
// browser over the product API, a scenario runner, journal traces, facet
// validation and a local mock API.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	// Config is resolved before any subcommand runs.
	Config config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the storefront CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront - reactive catalog browser",
		Long: `A reactive storefront over a json-server style product API.

Search, facet filters, pagination and the cart all drive one canonical
product query; every event and query is journaled to SQLite.

Configuration is read from storefront.yaml (working directory or
$HOME/.config/storefront), then STOREFRONT_* environment variables,
then flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), opts.Verbose))
			gin.SetMode(gin.ReleaseMode)

			cfg, err := config.Load(opts.ConfigFile, cmd.Flags())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			opts.Config = cfg
			if cfg.File != "" {
				slog.Debug("config loaded", "file", cfg.File)
			}
			return nil
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: storefront.yaml)")
	cmd.PersistentFlags().String("api-url", config.DefaultAPIURL, "product API base URL")
	cmd.PersistentFlags().String("journal", config.DefaultJournal, "SQLite journal path (empty disables)")

	cmd.AddCommand(NewBrowseCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewFacetsCommand(opts))
	cmd.AddCommand(NewMockAPICommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// newLogger writes text logs to w: debug and up when verbose, warnings
// otherwise so interactive output stays readable.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
