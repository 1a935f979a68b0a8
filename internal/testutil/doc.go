// Package testutil holds deterministic fakes shared by storefront tests and
// the scenario harness: a fixed session generator, fetchers whose timing the
// test controls, and a view that records every render call.
package testutil
