// Package filter implements the facet widgets (checkbox list, dual-range
// slider, search box) and the sidebar aggregator that folds their changes
// into one ordered set of active filter fragments.
//
// Fragments are kept as structured variants (ListFilter, RangeFilter) and are
// only turned into query tokens at the wire boundary:
//
//	brand=apple                      list fragment
//	price_gte=100&price_lte=500      range fragment
//
// INVARIANTS (ActiveSet):
//   - at most one RangeFilter per filter name (keyed lookup, never substring)
//   - ListFilters are unique per (name, normalized value)
//   - insertion order is preserved
//   - fragments with an empty token are never stored
package filter
