// Package journal provides SQLite-backed storage for storefront session
// timelines.
//
// A session is one controller lifetime. Within a session the journal keeps:
//   - events: every wire event emitted by a component, with its JSON payload
//   - queries: every product query issued, and how it resolved
//     (applied, stale, failed)
//
// Both tables are keyed by (session, seq), where seq comes from the
// controller's logical clock. Reads are ordered by seq, never by wall time,
// so a timeline reads back in the order the controller processed it.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads while the controller writes
//   - synchronous=NORMAL
//   - 5-second busy timeout
//   - foreign keys on
//   - a single open connection
package journal
