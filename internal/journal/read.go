package journal

import (
	"context"
	"encoding/json"
	"fmt"
)

// Sessions lists every recorded session.
// Returns an empty slice (not nil) when there are none.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, api_url, page_size FROM sessions
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.APIURL, &sess.PageSize); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// LatestSession returns the most recently started session id, or "" when the
// journal is empty.
func (s *Store) LatestSession(ctx context.Context) (string, error) {
	sessions, err := s.Sessions(ctx)
	if err != nil {
		return "", err
	}
	if len(sessions) == 0 {
		return "", nil
	}
	return sessions[len(sessions)-1].ID, nil
}

// ReadEvents returns the events of a session ordered by seq.
func (s *Store) ReadEvents(ctx context.Context, session string) ([]EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, name, payload FROM events
		WHERE session_id = ?
		ORDER BY seq ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []EventRecord{}
	for rows.Next() {
		ev := EventRecord{Session: session}
		var payload string
		if err := rows.Scan(&ev.Seq, &ev.Name, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Payload = json.RawMessage(payload)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// ReadQueries returns the queries of a session ordered by seq.
func (s *Store) ReadQueries(ctx context.Context, session string) ([]QueryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, query, reason, refresh_pages, status,
		       total_count, items, error, trace_id
		FROM queries
		WHERE session_id = ?
		ORDER BY seq ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query queries: %w", err)
	}
	defer rows.Close()

	queries := []QueryRecord{}
	for rows.Next() {
		q := QueryRecord{Session: session}
		if err := rows.Scan(&q.Seq, &q.Query, &q.Reason, &q.RefreshPages,
			&q.Status, &q.TotalCount, &q.Items, &q.Error, &q.TraceID); err != nil {
			return nil, fmt.Errorf("scan query: %w", err)
		}
		queries = append(queries, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queries: %w", err)
	}
	return queries, nil
}

// Timeline merges the events and queries of a session into one seq-ordered
// sequence.
func (s *Store) Timeline(ctx context.Context, session string) ([]Entry, error) {
	events, err := s.ReadEvents(ctx, session)
	if err != nil {
		return nil, err
	}
	queries, err := s.ReadQueries(ctx, session)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(events)+len(queries))
	i, j := 0, 0
	for i < len(events) || j < len(queries) {
		if j >= len(queries) || (i < len(events) && events[i].Seq < queries[j].Seq) {
			entries = append(entries, Entry{Seq: events[i].Seq, Event: &events[i]})
			i++
			continue
		}
		entries = append(entries, Entry{Seq: queries[j].Seq, Query: &queries[j]})
		j++
	}
	return entries, nil
}
