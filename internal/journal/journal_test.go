package journal

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func startSession(t *testing.T, s *Store, id string) {
	t.Helper()
	if err := s.StartSession(context.Background(), Session{ID: id, APIURL: "http://localhost:3000", PageSize: 9}); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("journal file was not created")
	}

	v, err := s.schemaVersion()
	if err != nil {
		t.Fatalf("schemaVersion() failed: %v", err)
	}
	if v != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", v, currentSchemaVersion)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		if i == 0 {
			startSession(t, s, "s1")
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	sessions, err := s.Sessions(context.Background())
	if err != nil {
		t.Fatalf("Sessions() failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "s1" {
		t.Errorf("sessions = %+v, want [s1]", sessions)
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer s.Close()

	startSession(t, s, "mem")
	sessions, err := s.Sessions(context.Background())
	if err != nil {
		t.Fatalf("Sessions() failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("got %d sessions, want 1", len(sessions))
	}
}

func TestRecordEvent_ForeignKey(t *testing.T) {
	s := createTestStore(t)
	err := s.RecordEvent(context.Background(), EventRecord{Session: "missing", Seq: 1, Name: "page-changed"})
	if err == nil {
		t.Fatal("expected foreign key violation for unknown session")
	}
}

func TestRecordEvent_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	startSession(t, s, "s1")

	ev := EventRecord{Session: "s1", Seq: 1, Name: "page-changed", Payload: json.RawMessage(`2`)}
	for i := 0; i < 2; i++ {
		if err := s.RecordEvent(ctx, ev); err != nil {
			t.Fatalf("RecordEvent() failed: %v", err)
		}
	}

	events, err := s.ReadEvents(ctx, "s1")
	if err != nil {
		t.Fatalf("ReadEvents() failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if string(events[0].Payload) != "2" {
		t.Errorf("payload = %s, want 2", events[0].Payload)
	}
}

func TestQueryLifecycle(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	startSession(t, s, "s1")

	q := QueryRecord{Session: "s1", Seq: 4, Query: "_page=1&_limit=9", Reason: "filters-changed", RefreshPages: true}
	if err := s.RecordQuery(ctx, q); err != nil {
		t.Fatalf("RecordQuery() failed: %v", err)
	}

	if err := s.ResolveQuery(ctx, Resolution{Session: "s1", Seq: 4, Status: StatusApplied, TotalCount: 30, Items: 9}); err != nil {
		t.Fatalf("ResolveQuery() failed: %v", err)
	}
	if err := s.ResolveQuery(ctx, Resolution{Session: "s1", Seq: 4, Status: StatusStale}); err == nil {
		t.Error("second resolution should fail")
	}

	queries, err := s.ReadQueries(ctx, "s1")
	if err != nil {
		t.Fatalf("ReadQueries() failed: %v", err)
	}
	if len(queries) != 1 {
		t.Fatalf("got %d queries, want 1", len(queries))
	}
	got := queries[0]
	if got.Status != StatusApplied || got.TotalCount != 30 || got.Items != 9 {
		t.Errorf("query = %+v", got)
	}
	if !got.RefreshPages {
		t.Errorf("refresh flag lost: %+v", got)
	}
}

func TestReads_EmptySlices(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	sessions, err := s.Sessions(ctx)
	if err != nil || sessions == nil {
		t.Errorf("Sessions() = %v, %v; want empty slice", sessions, err)
	}
	events, err := s.ReadEvents(ctx, "none")
	if err != nil || events == nil {
		t.Errorf("ReadEvents() = %v, %v; want empty slice", events, err)
	}
	queries, err := s.ReadQueries(ctx, "none")
	if err != nil || queries == nil {
		t.Errorf("ReadQueries() = %v, %v; want empty slice", queries, err)
	}
	latest, err := s.LatestSession(ctx)
	if err != nil || latest != "" {
		t.Errorf("LatestSession() = %q, %v; want empty", latest, err)
	}
}

func TestTimeline_MergesBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	startSession(t, s, "s1")
	startSession(t, s, "s2")

	mustEvent := func(seq int64, name string) {
		t.Helper()
		if err := s.RecordEvent(ctx, EventRecord{Session: "s1", Seq: seq, Name: name}); err != nil {
			t.Fatalf("RecordEvent(%d) failed: %v", seq, err)
		}
	}
	mustQuery := func(seq int64) {
		t.Helper()
		if err := s.RecordQuery(ctx, QueryRecord{Session: "s1", Seq: seq, Query: "_page=1"}); err != nil {
			t.Fatalf("RecordQuery(%d) failed: %v", seq, err)
		}
	}

	mustQuery(1)
	mustEvent(2, "search-changed")
	mustQuery(3)
	mustEvent(5, "page-changed")
	mustQuery(6)

	entries, err := s.Timeline(ctx, "s1")
	if err != nil {
		t.Fatalf("Timeline() failed: %v", err)
	}

	var seqs []int64
	for _, e := range entries {
		seqs = append(seqs, e.Seq)
		if (e.Event == nil) == (e.Query == nil) {
			t.Errorf("entry %d must carry exactly one record", e.Seq)
		}
	}
	want := []int64{1, 2, 3, 5, 6}
	if len(seqs) != len(want) {
		t.Fatalf("seqs = %v, want %v", seqs, want)
	}
	for i := range want {
		if seqs[i] != want[i] {
			t.Fatalf("seqs = %v, want %v", seqs, want)
		}
	}

	latest, err := s.LatestSession(ctx)
	if err != nil {
		t.Fatalf("LatestSession() failed: %v", err)
	}
	if latest != "s2" {
		t.Errorf("LatestSession() = %q, want s2", latest)
	}
}
