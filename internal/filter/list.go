package filter

import (
	"errors"
	"fmt"

	"github.com/roach88/storefront/internal/event"
)

// ErrUnknownOption is returned when toggling a label the widget does not offer.
var ErrUnknownOption = errors.New("unknown filter option")

// ListWidget is a checkbox list facet (category, brand).
//
// Every toggle that changes the checked state emits filter-changed.
// Reset clears the selection without notifying anyone.
type ListWidget struct {
	name     string
	options  []string
	selected map[string]bool // keyed by normalized value

	Changed *event.Emitter[Change]
}

// NewListWidget creates a list widget for the given facet name and labels.
// Labels that normalize to the same token are kept once.
func NewListWidget(name string, labels []string) *ListWidget {
	w := &ListWidget{
		name:     name,
		selected: make(map[string]bool),
		Changed:  event.New[Change](event.FilterChanged),
	}
	seen := make(map[string]bool, len(labels))
	for _, label := range labels {
		v := SnakeCase(label)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		w.options = append(w.options, label)
	}
	return w
}

// Name returns the facet name.
func (w *ListWidget) Name() string { return w.name }

// Options returns the offered labels in display order.
func (w *ListWidget) Options() []string {
	out := make([]string, len(w.options))
	copy(out, w.options)
	return out
}

// Toggle sets the checked state of an option, matched by label or by its
// normalized token value. A toggle to the current state is a no-op.
func (w *ListWidget) Toggle(label string, checked bool) error {
	option, ok := w.lookup(label)
	if !ok {
		return fmt.Errorf("%s %q: %w", w.name, label, ErrUnknownOption)
	}

	v := SnakeCase(option)
	if w.selected[v] == checked {
		return nil
	}
	if checked {
		w.selected[v] = true
	} else {
		delete(w.selected, v)
	}

	w.Changed.Emit(Change{
		Fragment: ListFilter{Name: w.name, Value: option},
		Active:   checked,
	})
	return nil
}

// Selected returns the checked labels in display order.
func (w *ListWidget) Selected() []string {
	var out []string
	for _, option := range w.options {
		if w.selected[SnakeCase(option)] {
			out = append(out, option)
		}
	}
	return out
}

// Reset unchecks every option silently.
func (w *ListWidget) Reset() {
	w.selected = make(map[string]bool)
}

func (w *ListWidget) lookup(label string) (string, bool) {
	v := SnakeCase(label)
	for _, option := range w.options {
		if option == label || SnakeCase(option) == v {
			return option, true
		}
	}
	return "", false
}
