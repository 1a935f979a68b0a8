package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/event"
	"github.com/roach88/storefront/internal/harness"
	"github.com/roach88/storefront/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Session string // default: latest session
	Event   string // optional - only events with this name
	List    bool
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Session  journal.Session      `json:"session"`
	Timeline []harness.TraceEvent `json:"timeline"`
	Stats    TraceStats           `json:"stats"`
}

// TraceStats summarizes a session.
type TraceStats struct {
	Events  int `json:"events"`
	Queries int `json:"queries"`
	Applied int `json:"applied"`
	Stale   int `json:"stale"`
	Failed  int `json:"failed"`
	Pending int `json:"pending"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the journaled timeline of a session",
		Long: `Show the events and product queries of a browse session in seq order.

Each user gesture appears as the wire events it emitted, followed by the
query it caused and how that query resolved (applied, stale, failed).

Examples:
  storefront trace
  storefront trace --journal ./storefront.db --session 0192...
  storefront trace --event filters-changed
  storefront trace --list --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (default: latest)")
	cmd.Flags().StringVar(&opts.Event, "event", "", "only show events with this name")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list recorded sessions")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	if opts.Event != "" && !event.Name(opts.Event).Valid() {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown event %q", opts.Event))
	}

	path := opts.Config.Journal
	if path == "" {
		return NewExitError(ExitCommandError, "no journal configured (use --journal)")
	}
	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, "journal not found", err)
	}
	jr, err := journal.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer jr.Close()

	sessions, err := jr.Sessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read sessions", err)
	}
	if opts.List {
		return outputSessions(opts, cmd, sessions)
	}

	sess, ok := pickSession(sessions, opts.Session)
	if !ok {
		if opts.Session == "" {
			return NewExitError(ExitFailure, "journal has no sessions")
		}
		return NewExitError(ExitFailure, fmt.Sprintf("session not found: %s", opts.Session))
	}

	entries, err := jr.Timeline(ctx, sess.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read timeline", err)
	}
	timeline, err := harness.TraceFromTimeline(entries)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to decode timeline", err)
	}

	result := TraceResult{
		Session:  sess,
		Timeline: filterTimeline(timeline, opts.Event),
		Stats:    traceStats(timeline),
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
		return f.Encode(CLIResponse{Status: "ok", Data: result, Session: sess.ID})
	}
	return outputTraceText(cmd.OutOrStdout(), result)
}

// pickSession returns the session with the given id, or the latest one when
// id is empty.
func pickSession(sessions []journal.Session, id string) (journal.Session, bool) {
	if id == "" {
		if len(sessions) == 0 {
			return journal.Session{}, false
		}
		return sessions[len(sessions)-1], true
	}
	for _, s := range sessions {
		if s.ID == id {
			return s, true
		}
	}
	return journal.Session{}, false
}

// filterTimeline keeps only events named name. Queries are dropped too, so
// the output lists just the matching emissions.
func filterTimeline(trace []harness.TraceEvent, name string) []harness.TraceEvent {
	if name == "" {
		return trace
	}
	out := []harness.TraceEvent{}
	for _, ev := range trace {
		if ev.Type == harness.TypeEvent && ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

func traceStats(trace []harness.TraceEvent) TraceStats {
	var s TraceStats
	for _, ev := range trace {
		if ev.Type == harness.TypeEvent {
			s.Events++
			continue
		}
		s.Queries++
		switch ev.Status {
		case journal.StatusApplied:
			s.Applied++
		case journal.StatusStale:
			s.Stale++
		case journal.StatusFailed:
			s.Failed++
		case journal.StatusPending:
			s.Pending++
		}
	}
	return s
}

func outputSessions(opts *TraceOptions, cmd *cobra.Command, sessions []journal.Session) error {
	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		f := &OutputFormatter{Format: "json", Writer: w}
		return f.Encode(CLIResponse{Status: "ok", Data: sessions})
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(w, "%s  %s  page size %d\n", s.ID, s.APIURL, s.PageSize)
	}
	return nil
}

func outputTraceText(w io.Writer, result TraceResult) error {
	fmt.Fprintf(w, "Trace for session: %s\n", result.Session.ID)
	fmt.Fprintf(w, "API: %s (page size %d)\n", result.Session.APIURL, result.Session.PageSize)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no entries)")
	}
	for _, ev := range result.Timeline {
		formatTimelineEntry(w, ev)
	}
	fmt.Fprintln(w)

	s := result.Stats
	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Events:  %d\n", s.Events)
	fmt.Fprintf(w, "  Queries: %d (applied %d, stale %d, failed %d, pending %d)\n",
		s.Queries, s.Applied, s.Stale, s.Failed, s.Pending)
	return nil
}

func formatTimelineEntry(w io.Writer, ev harness.TraceEvent) {
	switch ev.Type {
	case harness.TypeEvent:
		if ev.Payload == nil {
			fmt.Fprintf(w, "  [%d] EVT %s\n", ev.Seq, ev.Name)
			return
		}
		fmt.Fprintf(w, "  [%d] EVT %s %s\n", ev.Seq, ev.Name, formatPayload(ev.Payload))
	case harness.TypeQuery:
		fmt.Fprintf(w, "  [%d] QRY %s (%s, %s", ev.Seq, ev.Query, ev.Reason, ev.Status)
		switch ev.Status {
		case journal.StatusApplied:
			fmt.Fprintf(w, ", %d of %d", ev.Items, ev.TotalCount)
		case journal.StatusFailed:
			fmt.Fprintf(w, ": %s", ev.Error)
		}
		fmt.Fprintln(w, ")")
	}
}

// formatPayload renders a decoded payload as compact JSON; object keys come
// out sorted.
func formatPayload(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
