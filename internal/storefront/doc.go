// Package storefront implements the query coordinator: the controller that
// owns the canonical query state and the cart, listens to every component's
// events and turns them into backend queries and renders.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// All state (query state, cart, widgets) is mutated on one goroutine, the one
// running Run or Drain. User gestures arrive as Events through Enqueue, which
// is safe from any goroutine. Widgets emit their typed events synchronously
// inside that goroutine, so handlers never race.
//
// Fetches:
// A product query runs on its own goroutine and re-enters the loop as a
// resolution event. Each query is stamped from the logical Clock. Issuing a
// query cancels the previous in-flight one, and a resolution whose seq is not
// the latest issued is discarded as stale. Refresh flags of superseded
// queries carry over to the query that replaces them.
//
// Fan-out:
//   - product list: refreshed by every query
//   - pagination total: refreshed by filter, search and initial-load queries
//   - cart: re-rendered after every cart transition, never queries
//
// Failure:
// A failed fetch leaves the last rendered products and pagination in place.
// Nothing retries; the next user gesture issues a fresh query.
package storefront
