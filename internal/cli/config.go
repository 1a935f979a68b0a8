package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/config"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "show",
		Short:         "Print the resolved configuration",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			f := newFormatter(rootOpts, cmd)
			if f.IsJSON() {
				return f.Success(cfg)
			}
			w := cmd.OutOrStdout()
			file := cfg.File
			if file == "" {
				file = "(none)"
			}
			fmt.Fprintf(w, "file:          %s\n", file)
			fmt.Fprintf(w, "api_url:       %s\n", cfg.APIURL)
			fmt.Fprintf(w, "page_size:     %d\n", cfg.PageSize)
			fmt.Fprintf(w, "fetch_timeout: %s\n", cfg.FetchTimeout)
			fmt.Fprintf(w, "journal:       %s\n", cfg.Journal)
			fmt.Fprintf(w, "facets_dir:    %s\n", cfg.FacetsDir)
			fmt.Fprintf(w, "mock_addr:     %s\n", cfg.MockAddr)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:           "init [path]",
		Short:         "Write a commented storefront.yaml with every default",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "storefront.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return NewExitError(ExitCommandError, fmt.Sprintf("%s already exists (use --force)", path))
			}
			if err := os.WriteFile(path, []byte(config.DefaultYAML), 0o644); err != nil {
				return WrapExitError(ExitCommandError, "failed to write config", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}
