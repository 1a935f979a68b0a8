package journal

import "encoding/json"

// Query statuses.
const (
	StatusPending = "pending"
	StatusApplied = "applied"
	StatusStale   = "stale"
	StatusFailed  = "failed"
)

// Session describes one controller lifetime.
type Session struct {
	ID       string `json:"id"`
	APIURL   string `json:"api_url"`
	PageSize int    `json:"page_size"`
}

// EventRecord is one emitted wire event.
type EventRecord struct {
	Session string          `json:"session"`
	Seq     int64           `json:"seq"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

// QueryRecord is one issued product query.
type QueryRecord struct {
	Session      string `json:"session"`
	Seq          int64  `json:"seq"`
	Query        string `json:"query"`
	Reason       string `json:"reason"`
	RefreshPages bool   `json:"refresh_pages"`
	Status       string `json:"status"`
	TotalCount   int    `json:"total_count"`
	Items        int    `json:"items"`
	Error        string `json:"error,omitempty"`
	TraceID      string `json:"trace_id,omitempty"`
}

// Resolution is the outcome of a query.
type Resolution struct {
	Session    string
	Seq        int64
	Status     string
	TotalCount int
	Items      int
	Error      string
}

// Entry is one line of a merged session timeline: exactly one of Event and
// Query is set.
type Entry struct {
	Seq   int64        `json:"seq"`
	Event *EventRecord `json:"event,omitempty"`
	Query *QueryRecord `json:"query,omitempty"`
}
