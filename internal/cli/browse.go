package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/backend"
	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/facets"
	"github.com/roach88/storefront/internal/filter"
	"github.com/roach88/storefront/internal/journal"
	"github.com/roach88/storefront/internal/render"
	"github.com/roach88/storefront/internal/storefront"
)

// BrowseOptions holds flags for the browse command.
type BrowseOptions struct {
	*RootOptions
}

const browseHelp = `Commands:
  search <text>              type into the search box (empty clears it)
  check <facet> <option>     check a list option
  uncheck <facet> <option>   uncheck a list option
  range <facet> <from> <to>  move and release a range slider
  reset                      reset every filter
  page <n>                   select page n (1-based)
  next | prev                move one page
  add <id>                   add a displayed product to the cart
  inc <id> | dec <id>        change a cart line quantity
  cart                       open the cart panel
  close                      close the cart panel
  click <target>             click inside the open cart panel
  set <name> [value]         write _page or q directly (no name re-queries)
  filters                    show the sidebar
  state                      print the controller snapshot
  help                       show this help
  quit                       leave`

// NewBrowseCommand creates the browse command.
func NewBrowseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BrowseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog interactively",
		Long: `Browse the product API from the terminal.

Reads one command per line from stdin; each command is one user gesture
(search, filter, page, cart). The product grid, pagination and cart are
redrawn whenever a query resolves.

Examples:
  storefront browse
  storefront browse --api-url http://localhost:3000 --page-size 6
  echo "check brand Acme" | storefront browse --journal ""`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(opts, cmd)
		},
	}

	cmd.Flags().Int("page-size", 9, "products per page")
	cmd.Flags().Duration("fetch-timeout", storefront.DefaultFetchTimeout, "per-query timeout")
	cmd.Flags().String("facets", "", "directory of CUE facet declarations (default: built-in)")

	return cmd
}

func runBrowse(opts *BrowseOptions, cmd *cobra.Command) error {
	cfg := opts.Config

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := backend.New(cfg.APIURL)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid API URL", err)
	}

	decls, err := loadFacets(cfg.FacetsDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load facets", err)
	}

	bootCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	sidebar, err := filter.Bootstrap(bootCtx, decls, client)
	cancel()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load facet options", err)
	}

	out := cmd.OutOrStdout()
	view := render.NewText(out)

	copts := []storefront.Option{
		storefront.WithView(view),
		storefront.WithSidebar(sidebar),
		storefront.WithPageSize(cfg.PageSize),
		storefront.WithFetchTimeout(cfg.FetchTimeout),
		storefront.WithAPIURL(client.BaseURL()),
		storefront.WithLogger(slog.Default()),
	}
	if cfg.Journal != "" {
		jr, err := journal.Open(cfg.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if err := jr.Close(); err != nil {
				slog.Error("error closing journal", "error", err)
			}
		}()
		copts = append(copts, storefront.WithRecorder(jr))
	}

	ctrl := storefront.New(client, copts...)
	defer ctrl.Stop()

	sh := &shell{ctrl: ctrl, view: view, out: out}
	if err := sh.drain(ctx); err != nil {
		return WrapExitError(ExitFailure, "initial load", err)
	}
	fmt.Fprintf(out, "session %s (type 'help' for commands)\n", ctrl.Session())

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		quit, err := sh.exec(ctx, scanner.Text())
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return WrapExitError(ExitFailure, "browse", err)
		}
		if quit {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitCommandError, "read input", err)
	}
	return nil
}

// loadFacets compiles the facet declarations in dir, or the built-in ones
// when dir is empty.
func loadFacets(dir string) ([]facets.Facet, error) {
	if dir == "" {
		return facets.Default()
	}
	return facets.LoadDir(dir)
}

// shell turns command lines into controller events.
type shell struct {
	ctrl *storefront.Controller
	view *render.Text
	out  io.Writer
}

// exec runs one command line. It returns true when the user quits. Usage
// mistakes and rejected gestures are printed, not returned.
func (s *shell) exec(ctx context.Context, line string) (bool, error) {
	verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	var ev storefront.Event
	switch verb {
	case "":
		return false, nil
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(s.out, browseHelp)
		return false, nil
	case "filters":
		s.view.RenderSidebar(s.ctrl.Sidebar())
		return false, nil
	case "state":
		enc := json.NewEncoder(s.out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return false, enc.Encode(s.ctrl.Snapshot())
	case "search":
		ev = storefront.Search{Text: rest}
	case "check", "uncheck":
		facet, option, ok := strings.Cut(rest, " ")
		if !ok || strings.TrimSpace(option) == "" {
			return false, s.usage("%s <facet> <option>", verb)
		}
		ev = storefront.Toggle{Facet: facet, Option: strings.TrimSpace(option), Checked: verb == "check"}
	case "range":
		if len(args) != 3 {
			return false, s.usage("range <facet> <from> <to>")
		}
		from, err1 := strconv.ParseFloat(args[1], 64)
		to, err2 := strconv.ParseFloat(args[2], 64)
		if err1 != nil || err2 != nil || math.IsNaN(from) || math.IsNaN(to) || math.IsInf(from, 0) || math.IsInf(to, 0) {
			return false, s.usage("range bounds must be finite numbers")
		}
		ev = storefront.SelectRange{Facet: args[0], From: from, To: to}
	case "reset":
		ev = storefront.ResetFilters{}
	case "page":
		n, err := oneInt(args)
		if err != nil {
			return false, s.usage("page <n>")
		}
		ev = storefront.SelectPage{Index: n - 1}
	case "next":
		ev = storefront.NextPage{}
	case "prev":
		ev = storefront.PrevPage{}
	case "add":
		if len(args) != 1 {
			return false, s.usage("add <id>")
		}
		ev = storefront.AddToCart{ProductID: args[0]}
	case "inc", "dec":
		if len(args) != 1 {
			return false, s.usage("%s <id>", verb)
		}
		op := cart.OpIncrement
		if verb == "dec" {
			op = cart.OpDecrement
		}
		ev = storefront.CartControl{ProductID: args[0], Op: op}
	case "cart":
		ev = storefront.OpenCart{}
	case "close":
		ev = storefront.ClickCart{Target: cart.TargetCloseButton}
	case "click":
		if len(args) != 1 {
			return false, s.usage("click <close-button|overlay|content|line-control>")
		}
		ev = storefront.ClickCart{Target: cart.Target(args[0])}
	case "set":
		ev = setEvent(args)
	default:
		fmt.Fprintf(s.out, "unknown command %q (try 'help')\n", verb)
		return false, nil
	}

	before := s.ctrl.LastError()
	s.ctrl.Enqueue(ev)
	if err := s.drain(ctx); err != nil {
		return false, err
	}
	if err := s.ctrl.LastError(); err != nil && err != before {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
	return false, nil
}

func (s *shell) drain(ctx context.Context) error {
	return s.ctrl.Drain(ctx)
}

func (s *shell) usage(format string, args ...any) error {
	fmt.Fprintf(s.out, "usage: "+format+"\n", args...)
	return nil
}

func oneInt(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("want one argument")
	}
	return strconv.Atoi(args[0])
}

// setEvent builds a direct state write; the value is the rest of the line.
// A bare name carries no value.
func setEvent(args []string) storefront.Set {
	switch len(args) {
	case 0:
		return storefront.Set{}
	case 1:
		return storefront.Set{Name: args[0]}
	}
	return storefront.Set{Name: args[0], Value: strings.Join(args[1:], " ")}
}
