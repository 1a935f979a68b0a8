package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"time"

	"github.com/roach88/storefront/internal/backend"
	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/facets"
	"github.com/roach88/storefront/internal/filter"
	"github.com/roach88/storefront/internal/journal"
	"github.com/roach88/storefront/internal/mockapi"
	"github.com/roach88/storefront/internal/storefront"
	"github.com/roach88/storefront/internal/testutil"
)

// DefaultTimeout bounds a whole scenario run.
const DefaultTimeout = 30 * time.Second

// Harness runs one scenario against a real controller, the mock backend and
// an in-memory journal.
type Harness struct {
	journal    *journal.Store
	controller *storefront.Controller
	logger     *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory journal against its own mock
// backend. Fetches run inline and the controller is drained after every
// step, so traces are deterministic.
func Run(scenario *Scenario) (*Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	return RunContext(ctx, scenario, nil)
}

// RunContext is Run with a caller context and an optional view that receives
// every render call.
func RunContext(ctx context.Context, scenario *Scenario, view storefront.View) (*Result, error) {
	store, err := loadCatalog(scenario.Catalog)
	if err != nil {
		return nil, err
	}
	decls, err := loadFacets(scenario.Facets)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	srv := httptest.NewServer(mockapi.NewServer(store, mockapi.WithLogger(logger)).Handler())
	defer srv.Close()

	client, err := backend.New(srv.URL, backend.WithHTTPClient(srv.Client()))
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}

	jr, err := journal.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer jr.Close()

	sidebar, err := filter.Bootstrap(ctx, decls, client, filter.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("bootstrap sidebar: %w", err)
	}

	opts := []storefront.Option{
		storefront.WithRecorder(jr),
		storefront.WithSidebar(sidebar),
		storefront.WithPageSize(scenario.PageSize),
		storefront.WithLauncher(storefront.Inline),
		storefront.WithSessionGenerator(testutil.NewFixedSessionGenerator(scenario.Session)),
		storefront.WithLogger(logger),
	}
	if view != nil {
		opts = append(opts, storefront.WithView(view))
	}

	h := &Harness{
		journal:    jr,
		controller: storefront.New(client, opts...),
		logger:     logger,
	}
	defer h.controller.Stop()

	result := NewResult()
	if err := h.controller.Drain(ctx); err != nil {
		return nil, fmt.Errorf("initial load: %w", err)
	}
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	entries, err := jr.Timeline(ctx, h.controller.Session())
	if err != nil {
		return nil, fmt.Errorf("read timeline: %w", err)
	}
	if result.Trace, err = TraceFromTimeline(entries); err != nil {
		return nil, err
	}
	result.Final = h.controller.Snapshot()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// executeSteps applies each gesture and drains the controller before the
// next one. Step failures are recorded on the result; only harness failures
// are returned.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		ev, err := stepEvent(step)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		before := h.controller.LastError()
		if !h.controller.Enqueue(ev) {
			return fmt.Errorf("step %d: %w", i, storefront.ErrStopped)
		}
		if err := h.controller.Drain(ctx); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		after := h.controller.LastError()
		fresh := after != nil && after != before
		switch {
		case step.ExpectError != "" && !fresh:
			result.AddError(fmt.Sprintf("step %d (%s): expected error %s, got none", i, step.Do, step.ExpectError))
		case step.ExpectError != "" && errorCode(after) != step.ExpectError:
			result.AddError(fmt.Sprintf("step %d (%s): expected error %s, got %v", i, step.Do, step.ExpectError, after))
		case step.ExpectError == "" && fresh:
			result.AddError(fmt.Sprintf("step %d (%s): unexpected error: %v", i, step.Do, after))
		}

		h.logger.Info("step completed", "step", i, "do", step.Do, "seq", h.controller.Snapshot().Seq)
	}
	return nil
}

func errorCode(err error) string {
	var e *storefront.Error
	if errors.As(err, &e) {
		return string(e.Code)
	}
	return ""
}

// stepEvent maps a scenario step to a controller event.
func stepEvent(st Step) (storefront.Event, error) {
	switch st.Do {
	case DoSearch:
		return storefront.Search{Text: st.Text}, nil
	case DoToggle:
		checked := true
		if st.Checked != nil {
			checked = *st.Checked
		}
		return storefront.Toggle{Facet: st.Facet, Option: st.Option, Checked: checked}, nil
	case DoRange:
		return storefront.SelectRange{Facet: st.Facet, From: *st.From, To: *st.To}, nil
	case DoDrag:
		return storefront.Drag{Facet: st.Facet, From: *st.From, To: *st.To}, nil
	case DoCommit:
		return storefront.Commit{Facet: st.Facet}, nil
	case DoReset:
		return storefront.ResetFilters{}, nil
	case DoPage:
		return storefront.SelectPage{Index: *st.Index}, nil
	case DoNext:
		return storefront.NextPage{}, nil
	case DoPrev:
		return storefront.PrevPage{}, nil
	case DoAdd:
		return storefront.AddToCart{ProductID: st.Product}, nil
	case DoInc:
		return storefront.CartControl{ProductID: st.Product, Op: cart.OpIncrement}, nil
	case DoDec:
		return storefront.CartControl{ProductID: st.Product, Op: cart.OpDecrement}, nil
	case DoOpen:
		return storefront.OpenCart{}, nil
	case DoClick:
		return storefront.ClickCart{Target: cart.Target(st.Target)}, nil
	case DoUpdate:
		return storefront.Set{Name: st.Field, Value: st.Value}, nil
	case DoLoad:
		return storefront.Load{}, nil
	default:
		return nil, fmt.Errorf("unknown step %q", st.Do)
	}
}

func loadCatalog(path string) (*mockapi.Store, error) {
	if path == "" {
		return mockapi.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	s, err := mockapi.Load(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return s, nil
}

func loadFacets(path string) ([]facets.Facet, error) {
	if path == "" {
		return facets.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read facets: %w", err)
	}
	return facets.Parse(data, path)
}
