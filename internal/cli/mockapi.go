package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/mockapi"
)

const shutdownTimeout = 5 * time.Second

// MockAPIOptions holds flags for the mockapi command.
type MockAPIOptions struct {
	*RootOptions
	Catalog string
	Latency time.Duration
}

// NewMockAPICommand creates the mockapi command.
func NewMockAPICommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MockAPIOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "mockapi",
		Short: "Serve a local json-server compatible product API",
		Long: `Serve a product catalog with json-server semantics:

  GET /products    _page, _limit, q, field equality, <field>_gte/_lte
  GET /categories  distinct categories
  GET /brands      distinct brands

The total match count is returned in the X-Total-Count header.

Examples:
  storefront mockapi
  storefront mockapi --addr :4000 --catalog ./catalog.yaml --latency 300ms`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMockAPI(opts, cmd)
		},
	}

	cmd.Flags().String("addr", "localhost:3000", "listen address")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "YAML catalog file (default: built-in)")
	cmd.Flags().DurationVar(&opts.Latency, "latency", 0, "artificial delay per request")

	return cmd
}

func runMockAPI(opts *MockAPIOptions, cmd *cobra.Command) error {
	store := mockapi.Default()
	if opts.Catalog != "" {
		data, err := os.ReadFile(opts.Catalog)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read catalog", err)
		}
		if store, err = mockapi.Load(data); err != nil {
			return WrapExitError(ExitCommandError, "invalid catalog", err)
		}
	}

	if opts.Verbose {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := mockapi.NewServer(store,
		mockapi.WithLogger(slog.Default()),
		mockapi.WithLatency(opts.Latency),
	)

	ln, err := net.Listen("tcp", opts.Config.MockAddr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d products on http://%s\n", store.Len(), ln.Addr())
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")
	if err := serveHTTP(ctx, ln, srv.Handler(), cmd.ErrOrStderr()); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	slog.Info("mock API stopped gracefully")
	return nil
}

// serveHTTP serves h on ln until ctx ends, then shuts down gracefully.
func serveHTTP(ctx context.Context, ln net.Listener, h http.Handler, errLog io.Writer) error {
	server := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(slog.NewTextHandler(errLog, nil), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
