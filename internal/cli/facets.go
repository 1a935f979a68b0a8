package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/facets"
	"github.com/roach88/storefront/internal/filter"
)

// ValidationResult holds facet validation results.
type ValidationResult struct {
	Valid  bool                      `json:"valid"`
	Facets []facets.Facet            `json:"facets,omitempty"`
	Errors []facets.ValidationError `json:"errors,omitempty"`
}

// NewFacetsCommand creates the facets command group.
func NewFacetsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facets",
		Short: "Inspect sidebar facet declarations",
	}
	cmd.PersistentFlags().String("facets", "", "directory of CUE facet declarations (default: built-in)")

	cmd.AddCommand(&cobra.Command{
		Use:   "validate [dir]",
		Short: "Validate facet declarations",
		Long: `Compile the CUE facet declarations and check them for semantic errors:
unknown kinds, list facets without options or source, empty ranges and
out-of-bounds precision.

Exit codes:
  0 - All facets valid
  1 - Validation errors
  2 - Command error

Examples:
  storefront facets validate
  storefront facets validate ./facets --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := rootOpts.Config.FacetsDir
			if len(args) == 1 {
				dir = args[0]
			}
			return runValidateFacets(rootOpts, dir, cmd)
		},
	})

	return cmd
}

func runValidateFacets(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	source := dir
	if source == "" {
		source = "built-in facets"
	}
	formatter.VerboseLog("Validating %s", source)

	fs, err := loadFacets(dir)
	if err != nil {
		var cErr *facets.CompileError
		if errors.As(err, &cErr) {
			return outputValidationErrors(formatter, []facets.ValidationError{{
				Facet:   cErr.Field,
				Code:    facets.ErrCodeGeneric,
				Message: cErr.Error(),
			}})
		}
		_ = formatter.Error(ErrCodeFacets, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load facets", err)
	}

	if errs := facets.Validate(fs); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	if formatter.IsJSON() {
		return formatter.Success(ValidationResult{Valid: true, Facets: fs})
	}
	w := formatter.Writer
	fmt.Fprintf(w, "✓ %d facet(s) valid\n", len(fs))
	printFacets(w, fs)
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, errs []facets.ValidationError) error {
	if formatter.IsJSON() {
		if err := formatter.Encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    ErrCodeFacets,
				Message: fmt.Sprintf("%d validation error(s)", len(errs)),
			},
		}); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		fmt.Fprintf(w, "✗ %d validation error(s)\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}
	return NewExitError(ExitFailure, "facet validation failed")
}

// printFacets lists facets in declaration order.
func printFacets(w io.Writer, fs []facets.Facet) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tLABEL\tDOMAIN")
	for _, f := range fs {
		var domain string
		switch f.Kind {
		case facets.KindList:
			if f.Source != "" {
				domain = "source:" + f.Source
			} else {
				domain = fmt.Sprintf("%d option(s)", len(f.Options))
			}
		case facets.KindRange:
			domain = filter.FormatBound(f.Min, f.Precision) + ".." + filter.FormatBound(f.Max, f.Precision)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Name, f.Kind, f.Label, domain)
	}
	tw.Flush()
}
