// Package mockapi is a small json-server compatible product backend.
//
// It serves an embedded sample catalog (or any YAML catalog passed to Load)
// so the storefront can be driven end to end without the real service. The
// CLI exposes it as `storefront mockapi`, and the scenario harness runs it
// behind an httptest server.
package mockapi
