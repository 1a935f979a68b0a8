package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/storefront"
)

func sampleResult() *Result {
	r := NewResult()
	r.Trace = []TraceEvent{
		{Seq: 1, Type: TypeQuery, Query: "_page=1&_limit=9", Status: "applied"},
		{Seq: 2, Type: TypeEvent, Name: "filter-changed", Payload: map[string]any{
			"filterName": "brand", "filter": "brand=acme", "isActive": true,
		}},
		{Seq: 3, Type: TypeEvent, Name: "filters-changed", Payload: []any{"brand=acme"}},
		{Seq: 4, Type: TypeQuery, Query: "_page=1&_limit=9&brand=acme", Status: "stale"},
		{Seq: 5, Type: TypeEvent, Name: "page-changed", Payload: float64(1)},
		{Seq: 6, Type: TypeQuery, Query: "_page=2&_limit=9&brand=acme", Status: "applied"},
	}
	qty := 2
	r.Final = storefront.Snapshot{
		Page:         2,
		Filters:      []string{"brand=acme"},
		Products:     []string{"p1"},
		CartQuantity: &qty,
	}
	return r
}

func TestAssertTraceContains(t *testing.T) {
	r := sampleResult()

	assert.NoError(t, assertTraceContains(r.Trace, Assertion{Event: "filter-changed"}))
	assert.NoError(t, assertTraceContains(r.Trace, Assertion{
		Event:   "filter-changed",
		Payload: map[string]any{"isActive": true},
	}), "objects match as subsets")
	assert.NoError(t, assertTraceContains(r.Trace, Assertion{Event: "page-changed", Payload: 1}),
		"YAML ints match JSON numbers")

	err := assertTraceContains(r.Trace, Assertion{Event: "filters-changed", Payload: []any{"brand=globex"}})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertTraceContains, ae.Type)
	assert.Contains(t, ae.Error(), "[3] filters-changed")
	assert.Contains(t, ae.Error(), "[4] query _page=1&_limit=9&brand=acme (stale)")
}

func TestAssertTraceOrder(t *testing.T) {
	r := sampleResult()

	assert.NoError(t, assertTraceOrder(r.Trace, Assertion{Events: []string{"filter-changed", "page-changed"}}))

	err := assertTraceOrder(r.Trace, Assertion{Events: []string{"page-changed", "filter-changed"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "should be before")

	err = assertTraceOrder(r.Trace, Assertion{Events: []string{"filters-reset"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing event: filters-reset")
}

func TestAssertTraceCount(t *testing.T) {
	r := sampleResult()

	assert.NoError(t, assertTraceCount(r.Trace, Assertion{Event: "page-changed", Count: 1}))
	assert.NoError(t, assertTraceCount(r.Trace, Assertion{Event: "add-to-cart", Count: 0}))
	assert.Error(t, assertTraceCount(r.Trace, Assertion{Event: "page-changed", Count: 2}))
}

func TestAssertQueryCount(t *testing.T) {
	r := sampleResult()

	assert.NoError(t, assertQueryCount(r.Trace, Assertion{Count: 3}))
	assert.NoError(t, assertQueryCount(r.Trace, Assertion{Status: "applied", Count: 2}))
	assert.NoError(t, assertQueryCount(r.Trace, Assertion{Status: "stale", Count: 1}))

	err := assertQueryCount(r.Trace, Assertion{Status: "failed", Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0 failed queries")
}

func TestAssertFinalState(t *testing.T) {
	r := sampleResult()

	assert.NoError(t, assertFinalState(r, Assertion{Expect: map[string]any{
		"page":          2,
		"filters":       []any{"brand=acme"},
		"cart_quantity": 2,
	}}))
	assert.NoError(t, assertFinalState(NewResult(), Assertion{Expect: map[string]any{
		"cart_quantity": nil,
	}}), "empty cart has no quantity")

	err := assertFinalState(r, Assertion{Expect: map[string]any{"page": 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "page" = 2`)

	err = assertFinalState(r, Assertion{Expect: map[string]any{"colour": "red"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `snapshot has no field "colour"`)
}

func TestEvaluateAssertions(t *testing.T) {
	r := sampleResult()

	errs := EvaluateAssertions(r, []Assertion{
		{Type: AssertTraceCount, Event: "page-changed", Count: 1},
		{Type: AssertQueryCount, Count: 7},
		{Type: "bogus"},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "query_count")
	assert.Contains(t, errs[1], `unknown assertion type "bogus"`)
}
