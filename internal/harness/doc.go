// Package harness runs storefront scenarios end to end.
//
// A scenario drives a real controller through user gestures. The controller
// is wired to the gin mock backend (behind httptest), a sidebar bootstrapped
// from the facet declarations and an in-memory journal. The journaled
// timeline becomes the trace that assertions and golden files check.
//
// # Scenario Format
//
//	name: brand_filter
//	description: "Checking a brand narrows the list and resets the page"
//	page_size: 9                # optional
//	catalog: catalog.yaml       # optional, relative to the scenario file
//	facets: facets.cue          # optional
//	steps:
//	  - do: page
//	    index: 1
//	  - do: toggle
//	    facet: brand
//	    option: Acme
//	  - do: dec
//	    product: p1
//	    expect_error: PRECONDITION
//	assertions:
//	  - type: trace_contains
//	    event: filters-changed
//	    payload: ["brand=acme"]
//	  - type: trace_order
//	    events: [page-changed, filter-changed, filters-changed]
//	  - type: trace_count
//	    event: page-changed
//	    count: 1
//	  - type: query_count
//	    status: applied
//	    count: 3
//	  - type: final_state
//	    expect: { page: 1, total_pages: 1 }
//
// # Deterministic Testing
//
// Fetches run inline on the loop and the controller is drained after every
// step, so each query resolves before the next gesture. The session id is
// fixed ("test-session" unless the scenario names one) and the in-memory
// journal is isolated per run. Traces are therefore identical across runs
// and can be compared against golden files with RunWithGolden.
package harness
