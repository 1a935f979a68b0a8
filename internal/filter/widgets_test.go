package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListWidgetToggle(t *testing.T) {
	w := NewListWidget("category", []string{"Beauty", "Home Decoration", "beauty", ""})
	assert.Equal(t, []string{"Beauty", "Home Decoration"}, w.Options())

	var got []Change
	w.Changed.Subscribe(func(c Change) { got = append(got, c) })

	require.NoError(t, w.Toggle("home_decoration", true))
	require.NoError(t, w.Toggle("Home Decoration", true), "re-check is a no-op")
	require.Len(t, got, 1)
	assert.Equal(t, "category=home_decoration", got[0].Fragment.Token())
	assert.True(t, got[0].Active)
	assert.Equal(t, []string{"Home Decoration"}, w.Selected())

	require.NoError(t, w.Toggle("Home Decoration", false))
	require.Len(t, got, 2)
	assert.False(t, got[1].Active)
	assert.Empty(t, w.Selected())
}

func TestListWidgetUnknownOption(t *testing.T) {
	w := NewListWidget("brand", []string{"Apple"})
	err := w.Toggle("Samsung", true)
	require.ErrorIs(t, err, ErrUnknownOption)
}

func TestListWidgetResetIsSilent(t *testing.T) {
	w := NewListWidget("brand", []string{"Apple", "Samsung"})
	require.NoError(t, w.Toggle("Apple", true))

	calls := 0
	w.Changed.Subscribe(func(Change) { calls++ })
	w.Reset()

	assert.Empty(t, w.Selected())
	assert.Zero(t, calls)
}

func TestRangeWidgetCommit(t *testing.T) {
	w := NewRangeWidget("price", 0, 85000, 0)

	var got []RangeSelection
	w.Selected.Subscribe(func(s RangeSelection) { got = append(got, s) })

	assert.False(t, w.Commit(), "unmoved default is a no-op")

	w.Drag(100, 200)
	w.Drag(150, 300.6)
	assert.Empty(t, got, "drag frames never emit")

	assert.True(t, w.Commit())
	require.Len(t, got, 1)
	assert.Equal(t, RangeSelection{FilterName: "price", Value: Bounds{From: 150, To: 301}}, got[0])

	assert.False(t, w.Commit(), "same value twice")

	assert.True(t, w.Select(0, 85000), "back to full range after a commit")
	assert.Len(t, got, 2)
}

func TestRangeWidgetClampsAndOrders(t *testing.T) {
	w := NewRangeWidget("rating", 5, 0, 2)
	assert.Equal(t, Bounds{From: 0, To: 5}, w.Full())

	w.Drag(7, 3.14159)
	assert.Equal(t, Bounds{From: 3.14, To: 5}, w.Value())

	w.Drag(-1, -2)
	assert.Equal(t, Bounds{From: 0, To: 0}, w.Value())
}

func TestRangeWidgetRejectsNonFinite(t *testing.T) {
	w := NewRangeWidget("price", 0, 100, 0)
	require.NoError(t, w.Drag(10, 20))

	require.ErrorIs(t, w.Drag(math.NaN(), 50), ErrNonFiniteBound)
	require.ErrorIs(t, w.Drag(5, math.Inf(1)), ErrNonFiniteBound)
	assert.Equal(t, Bounds{From: 10, To: 20}, w.Value(), "rejected drags leave the selection")

	var got []RangeSelection
	w.Selected.Subscribe(func(s RangeSelection) { got = append(got, s) })
	assert.False(t, w.Select(math.NaN(), math.NaN()))
	assert.Empty(t, got)
}

func TestRangeWidgetReset(t *testing.T) {
	w := NewRangeWidget("price", 0, 100, 0)
	require.True(t, w.Select(10, 20))

	calls := 0
	w.Selected.Subscribe(func(RangeSelection) { calls++ })
	w.Reset()

	assert.Equal(t, w.Full(), w.Value())
	assert.Zero(t, calls)
	assert.False(t, w.Commit(), "reset slider is unmoved again")
}

func TestSearchBox(t *testing.T) {
	b := NewSearchBox()

	var got []string
	b.Changed.Subscribe(func(s string) { got = append(got, s) })

	b.Input("  phone ")
	b.Input("phone")
	b.Input("")
	assert.Equal(t, []string{"phone", ""}, got)

	b.Input("laptop")
	b.Reset()
	assert.Empty(t, b.Value())
	assert.Len(t, got, 3)
}
