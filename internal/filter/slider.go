package filter

import (
	"errors"
	"math"

	"github.com/roach88/storefront/internal/event"
)

// ErrNonFiniteBound is returned by Drag for NaN or infinite bounds.
var ErrNonFiniteBound = errors.New("range bound is not a finite number")

// RangeWidget is a dual-range slider facet (price, rating).
//
// Drag only moves the in-progress selection. Commit settles the gesture and
// emits range-selected, so intermediate drag frames never reach the query.
// A commit is suppressed when it equals the last committed value, and when the
// slider was never committed and still spans the full range.
type RangeWidget struct {
	name      string
	full      Bounds
	precision int

	current      Bounds
	committed    Bounds
	hasCommitted bool

	Selected *event.Emitter[RangeSelection]
}

// NewRangeWidget creates a slider over [min, max]. Bounds are swapped if given
// in the wrong order.
func NewRangeWidget(name string, min, max float64, precision int) *RangeWidget {
	if min > max {
		min, max = max, min
	}
	full := Bounds{From: Round(min, precision), To: Round(max, precision)}
	return &RangeWidget{
		name:      name,
		full:      full,
		precision: precision,
		current:   full,
		committed: full,
		Selected:  event.New[RangeSelection](event.RangeSelected),
	}
}

// Name returns the facet name.
func (w *RangeWidget) Name() string { return w.name }

// Precision returns the number of decimal digits kept on each bound.
func (w *RangeWidget) Precision() int { return w.precision }

// Full returns the unconstrained range.
func (w *RangeWidget) Full() Bounds { return w.full }

// Value returns the in-progress selection.
func (w *RangeWidget) Value() Bounds { return w.current }

// IsFull reports whether b spans the whole range (no constraint).
func (w *RangeWidget) IsFull(b Bounds) bool { return b == w.full }

// Drag moves the in-progress selection. Values are clamped to the full range,
// ordered and rounded to the widget precision. No event is emitted.
func (w *RangeWidget) Drag(from, to float64) error {
	if !finite(from) || !finite(to) {
		return ErrNonFiniteBound
	}
	if from > to {
		from, to = to, from
	}
	w.current = Bounds{
		From: Round(clamp(from, w.full.From, w.full.To), w.precision),
		To:   Round(clamp(to, w.full.From, w.full.To), w.precision),
	}
	return nil
}

// Commit settles the current drag. Returns true when range-selected was emitted.
func (w *RangeWidget) Commit() bool {
	v := w.current
	if !w.hasCommitted && w.IsFull(v) {
		return false
	}
	if w.hasCommitted && v == w.committed {
		return false
	}

	w.committed = v
	w.hasCommitted = true
	w.Selected.Emit(RangeSelection{FilterName: w.name, Value: v})
	return true
}

// Select is a drag immediately followed by a commit.
func (w *RangeWidget) Select(from, to float64) bool {
	if w.Drag(from, to) != nil {
		return false
	}
	return w.Commit()
}

// Reset restores the full range silently.
func (w *RangeWidget) Reset() {
	w.current = w.full
	w.committed = w.full
	w.hasCommitted = false
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
