package harness

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/storefront/internal/journal"
	"github.com/roach88/storefront/internal/storefront"
)

// Trace entry types.
const (
	TypeEvent = "event"
	TypeQuery = "query"
)

// TraceEvent is one journaled entry: an emitted wire event or an issued
// query with its resolution.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Type string `json:"type"`

	// Event fields.
	Name    string `json:"name,omitempty"`
	Payload any    `json:"payload,omitempty"`

	// Query fields.
	Query        string `json:"query,omitempty"`
	Reason       string `json:"reason,omitempty"`
	RefreshPages bool   `json:"refresh_pages,omitempty"`
	Status       string `json:"status,omitempty"`
	TotalCount   int    `json:"total_count,omitempty"`
	Items        int    `json:"items,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step and assertion succeeded.
	Pass bool `json:"pass"`

	// Trace is the session timeline in seq order.
	Trace []TraceEvent `json:"trace"`

	// Final is the controller state after the last step.
	Final storefront.Snapshot `json:"final"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// TraceFromTimeline converts journal entries. Payloads are decoded so the
// trace re-encodes without HTML escaping.
func TraceFromTimeline(entries []journal.Entry) ([]TraceEvent, error) {
	trace := make([]TraceEvent, 0, len(entries))
	for _, e := range entries {
		switch {
		case e.Event != nil:
			te := TraceEvent{Seq: e.Seq, Type: TypeEvent, Name: e.Event.Name}
			if len(e.Event.Payload) > 0 {
				if err := json.Unmarshal(e.Event.Payload, &te.Payload); err != nil {
					return nil, fmt.Errorf("event %d payload: %w", e.Seq, err)
				}
			}
			trace = append(trace, te)
		case e.Query != nil:
			q := e.Query
			trace = append(trace, TraceEvent{
				Seq:          e.Seq,
				Type:         TypeQuery,
				Query:        q.Query,
				Reason:       q.Reason,
				RefreshPages: q.RefreshPages,
				Status:       q.Status,
				TotalCount:   q.TotalCount,
				Items:        q.Items,
				Error:        q.Error,
			})
		}
	}
	return trace, nil
}
