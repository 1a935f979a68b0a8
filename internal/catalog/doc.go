// Package catalog defines the product and result-page types shared by the
// storefront components.
//
// Prices are whole currency units (int64) so cart totals stay exact. Ratings
// are floats because the rating facet filters on fractional bounds.
package catalog
