// Package facets loads the declarative description of the sidebar facets
// from CUE.
//
// A facet file declares a top-level "facet" struct; field order is the
// sidebar render order:
//
//	facet: {
//	    price:    {kind: "range", label: "Price", min: 0, max: 85000}
//	    category: {kind: "list", label: "Category", source: "categories"}
//	}
//
// List facets take their options either inline (options) or from a backend
// endpoint (source). Range facets need min and max and may set precision.
// The storefront ships a default declaration (default.cue) matching the
// original catalog: price, category, brand, rating.
package facets
