package filter

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/storefront/internal/event"
	"github.com/roach88/storefront/internal/facets"
)

// OptionSource supplies the option labels of a list facet, keyed by the
// facet's declared source (categories, brands).
type OptionSource interface {
	Options(ctx context.Context, source string) ([]string, error)
}

// Sidebar aggregates the fragments of its child widgets into one ordered
// ActiveSet and re-publishes the whole set on every mutation.
type Sidebar struct {
	active ActiveSet
	lists  map[string]*ListWidget
	ranges map[string]*RangeWidget
	order  []string
	logger *slog.Logger

	// Changed carries the full fragment sequence after every mutation.
	Changed *event.Emitter[Fragments]
	// ResetDone fires after ResetFilters; Changed does not.
	ResetDone *event.Emitter[struct{}]
}

// SidebarOption configures a Sidebar.
type SidebarOption func(*Sidebar)

// WithLogger sets the sidebar's logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) SidebarOption {
	return func(s *Sidebar) { s.SetLogger(l) }
}

// NewSidebar creates an empty sidebar.
func NewSidebar(opts ...SidebarOption) *Sidebar {
	s := &Sidebar{
		lists:     make(map[string]*ListWidget),
		ranges:    make(map[string]*RangeWidget),
		logger:    slog.Default(),
		Changed:   event.New[Fragments](event.FiltersChanged),
		ResetDone: event.New[struct{}](event.FiltersReset),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetLogger replaces the logger. A nil logger is ignored.
func (s *Sidebar) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// AddList attaches a list widget and subscribes to its changes.
func (s *Sidebar) AddList(w *ListWidget) {
	s.lists[w.Name()] = w
	s.order = append(s.order, w.Name())
	w.Changed.Subscribe(func(c Change) {
		if err := s.SetFilter(c); err != nil {
			s.logger.Warn("filter change rejected", "filter", w.Name(), "error", err)
		}
	})
}

// AddRange attaches a range widget. Its range-selected events become
// filter changes; a selection spanning the full range is inactive.
func (s *Sidebar) AddRange(w *RangeWidget) {
	s.ranges[w.Name()] = w
	s.order = append(s.order, w.Name())
	w.Selected.Subscribe(func(sel RangeSelection) {
		c := Change{
			Fragment: RangeFilter{
				Name:      sel.FilterName,
				From:      sel.Value.From,
				To:        sel.Value.To,
				Precision: w.Precision(),
			},
			Active: !w.IsFull(sel.Value),
		}
		if err := s.SetFilter(c); err != nil {
			s.logger.Warn("range selection rejected", "filter", w.Name(), "error", err)
		}
	})
}

// SetFilter applies one filter change.
//
// List fragments are added when active and removed when inactive. Range
// fragments replace any fragment of the same name and are appended whatever
// their active flag. A fragment with an empty token is refused.
func (s *Sidebar) SetFilter(c Change) error {
	if c.Fragment == nil || c.Fragment.Token() == "" {
		return ErrMalformedFragment
	}

	switch f := c.Fragment.(type) {
	case ListFilter:
		var changed bool
		if c.Active {
			changed = s.active.Add(f)
		} else {
			changed = s.active.Remove(f)
		}
		if !changed {
			s.logger.Debug("filter already in requested state", "token", f.Token(), "active", c.Active)
		}
	case RangeFilter:
		s.active.Replace(f)
	default:
		return fmt.Errorf("%w: unsupported fragment %T", ErrMalformedFragment, c.Fragment)
	}

	s.Changed.Emit(s.active.Fragments())
	return nil
}

// ResetFilters resets every child widget, clears the active set and emits
// filters-reset.
func (s *Sidebar) ResetFilters() {
	for _, w := range s.lists {
		w.Reset()
	}
	for _, w := range s.ranges {
		w.Reset()
	}
	s.active.Clear()
	s.ResetDone.Emit(struct{}{})
}

// Active returns a copy of the active fragments.
func (s *Sidebar) Active() Fragments { return s.active.Fragments() }

// List returns the list widget for a facet name.
func (s *Sidebar) List(name string) (*ListWidget, bool) {
	w, ok := s.lists[name]
	return w, ok
}

// Range returns the range widget for a facet name.
func (s *Sidebar) Range(name string) (*RangeWidget, bool) {
	w, ok := s.ranges[name]
	return w, ok
}

// Order returns the facet names in render order.
func (s *Sidebar) Order() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Bootstrap builds a sidebar from facet declarations. Option lists of list
// facets that name a source are fetched concurrently. Widgets are attached in
// declaration order; a list facet with no options is left out.
func Bootstrap(ctx context.Context, fs []facets.Facet, src OptionSource, opts ...SidebarOption) (*Sidebar, error) {
	options := make([][]string, len(fs))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range fs {
		i, f := i, f
		if f.Kind != facets.KindList {
			continue
		}
		if f.Source == "" {
			options[i] = f.Options
			continue
		}
		if src == nil {
			return nil, fmt.Errorf("facet %s: source %q needs an option source", f.Name, f.Source)
		}
		g.Go(func() error {
			labels, err := src.Options(gctx, f.Source)
			if err != nil {
				return fmt.Errorf("facet %s: fetch %s: %w", f.Name, f.Source, err)
			}
			options[i] = labels
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := NewSidebar(opts...)
	for i, f := range fs {
		switch f.Kind {
		case facets.KindList:
			w := NewListWidget(f.Name, options[i])
			if len(w.Options()) == 0 {
				s.logger.Info("skipping empty facet", "facet", f.Name)
				continue
			}
			s.AddList(w)
		case facets.KindRange:
			s.AddRange(NewRangeWidget(f.Name, f.Min, f.Max, f.Precision))
		default:
			return nil, fmt.Errorf("facet %s: unknown kind %q", f.Name, f.Kind)
		}
	}

	s.logger.Debug("sidebar ready", "facets", s.order)
	return s, nil
}
