package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/roach88/storefront/internal/catalog"
)

// FetcherFunc adapts a function to the controller's Fetcher interface.
type FetcherFunc func(ctx context.Context, rawQuery string) (catalog.ResultPage, error)

// FetchProducts calls f.
func (f FetcherFunc) FetchProducts(ctx context.Context, rawQuery string) (catalog.ResultPage, error) {
	return f(ctx, rawQuery)
}

// Call is one fetch held by a GatedFetcher.
type Call struct {
	Query string
	Ctx   context.Context
	reply chan callResult
}

type callResult struct {
	page catalog.ResultPage
	err  error
}

// Respond releases the call with a result. Only the first response counts.
func (c *Call) Respond(page catalog.ResultPage, err error) {
	select {
	case c.reply <- callResult{page: page, err: err}:
	default:
	}
}

// GatedFetcher holds every fetch until the test responds to it, so tests
// decide the order in which responses arrive.
type GatedFetcher struct {
	// IgnoreCancel keeps a call waiting for its response even after its
	// context is cancelled, like a server that answers anyway.
	IgnoreCancel bool

	mu      sync.Mutex
	queries []string
	arrived chan *Call
}

// NewGatedFetcher creates a gated fetcher.
func NewGatedFetcher() *GatedFetcher {
	return &GatedFetcher{arrived: make(chan *Call, 64)}
}

// FetchProducts blocks until the call is responded to.
func (f *GatedFetcher) FetchProducts(ctx context.Context, rawQuery string) (catalog.ResultPage, error) {
	call := &Call{Query: rawQuery, Ctx: ctx, reply: make(chan callResult, 1)}

	f.mu.Lock()
	f.queries = append(f.queries, rawQuery)
	f.mu.Unlock()
	f.arrived <- call

	if f.IgnoreCancel {
		r := <-call.reply
		return r.page, r.err
	}
	select {
	case r := <-call.reply:
		return r.page, r.err
	case <-ctx.Done():
		return catalog.ResultPage{}, ctx.Err()
	}
}

// Next returns the next arrived call, waiting up to timeout.
func (f *GatedFetcher) Next(timeout time.Duration) (*Call, error) {
	select {
	case c := <-f.arrived:
		return c, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("no fetch arrived within %s", timeout)
	}
}

// Queries returns every query received so far.
func (f *GatedFetcher) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}
