package storefront

import (
	"context"
	"sync"

	"github.com/roach88/storefront/internal/journal"
)

// memRecorder is an in-memory Recorder for tests that need resolution
// statuses without a database.
type memRecorder struct {
	mu       sync.Mutex
	events   []journal.EventRecord
	queries  map[int64]journal.QueryRecord
	sessions []journal.Session
}

func newMemRecorder() *memRecorder {
	return &memRecorder{queries: make(map[int64]journal.QueryRecord)}
}

func (r *memRecorder) StartSession(_ context.Context, s journal.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, s)
	return nil
}

func (r *memRecorder) RecordEvent(_ context.Context, ev journal.EventRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *memRecorder) RecordQuery(_ context.Context, q journal.QueryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q.Status = journal.StatusPending
	r.queries[q.Seq] = q
	return nil
}

func (r *memRecorder) ResolveQuery(_ context.Context, res journal.Resolution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := r.queries[res.Seq]
	q.Status = res.Status
	q.TotalCount = res.TotalCount
	r.queries[res.Seq] = q
	return nil
}

func (r *memRecorder) statuses() map[int64]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int64]string, len(r.queries))
	for seq, q := range r.queries {
		out[seq] = q.Status
	}
	return out
}
