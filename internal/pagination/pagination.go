// Package pagination implements the page selector widget.
//
// The widget keeps a 0-based active index; the canonical query is 1-based.
// It never queries the backend itself: the controller feeds it the total page
// count and reacts to its page-changed events.
package pagination

import (
	"github.com/roach88/storefront/internal/event"
)

// Widget is the pagination control.
type Widget struct {
	active int
	total  int

	// Changed carries the 0-based index of a newly selected page.
	Changed *event.Emitter[int]
}

// New creates a widget with no pages.
func New() *Widget {
	return &Widget{Changed: event.New[int](event.PageChanged)}
}

// ActivePageIndex returns the 0-based active page.
func (w *Widget) ActivePageIndex() int { return w.active }

// TotalPages returns the number of pages.
func (w *Widget) TotalPages() int { return w.total }

// Disabled reports whether navigation is impossible. A widget with zero pages
// renders a single disabled indicator.
func (w *Widget) Disabled() bool { return w.total == 0 }

// Update replaces the total page count. When the active index falls outside
// the new range it is clamped to the last valid index and Update returns true.
// No event is emitted.
func (w *Widget) Update(totalPages int) (clamped bool) {
	if totalPages < 0 {
		totalPages = 0
	}
	w.total = totalPages

	last := totalPages - 1
	if last < 0 {
		last = 0
	}
	if w.active > last {
		w.active = last
		return true
	}
	return false
}

// SetActive moves the active index without emitting, for syncing the widget
// to the canonical page. Out-of-range indexes are clamped.
func (w *Widget) SetActive(index int) {
	if index < 0 {
		index = 0
	}
	if w.total > 0 && index > w.total-1 {
		index = w.total - 1
	}
	w.active = index
}

// Select navigates to index and emits page-changed. Selecting the active page,
// an index out of range, or any page of an empty widget does nothing.
// Returns true when an event was emitted.
func (w *Widget) Select(index int) bool {
	if w.total == 0 || index < 0 || index >= w.total || index == w.active {
		return false
	}
	w.active = index
	w.Changed.Emit(index)
	return true
}

// Next selects the following page.
func (w *Widget) Next() bool { return w.Select(w.active + 1) }

// Prev selects the preceding page.
func (w *Widget) Prev() bool { return w.Select(w.active - 1) }
