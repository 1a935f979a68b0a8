package journal

import (
	"context"
	"fmt"
)

// StartSession registers a session. Registering the same id twice is a no-op.
func (s *Store) StartSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, api_url, page_size)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sess.ID, sess.APIURL, sess.PageSize)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	return nil
}

// RecordEvent appends an emitted event. Duplicate (session, seq) pairs are
// ignored.
func (s *Store) RecordEvent(ctx context.Context, ev EventRecord) error {
	payload := string(ev.Payload)
	if payload == "" {
		payload = "null"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (session_id, seq, name, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, ev.Session, ev.Seq, ev.Name, payload)
	if err != nil {
		return fmt.Errorf("record event %s: %w", ev.Name, err)
	}
	return nil
}

// RecordQuery appends an issued query with status pending.
func (s *Store) RecordQuery(ctx context.Context, q QueryRecord) error {
	status := q.Status
	if status == "" {
		status = StatusPending
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO queries
		(session_id, seq, query, reason, refresh_pages, status, trace_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, q.Session, q.Seq, q.Query, q.Reason, q.RefreshPages, status, q.TraceID)
	if err != nil {
		return fmt.Errorf("record query %d: %w", q.Seq, err)
	}
	return nil
}

// ResolveQuery stores the outcome of a query. A query resolves once; later
// resolutions for the same seq are ignored.
func (s *Store) ResolveQuery(ctx context.Context, r Resolution) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE queries
		SET status = ?, total_count = ?, items = ?, error = ?
		WHERE session_id = ? AND seq = ? AND status = ?
	`, r.Status, r.TotalCount, r.Items, r.Error, r.Session, r.Seq, StatusPending)
	if err != nil {
		return fmt.Errorf("resolve query %d: %w", r.Seq, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("resolve query %d: no pending query in session %s", r.Seq, r.Session)
	}
	return nil
}
