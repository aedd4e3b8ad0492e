// Package journal provides SQLite-backed durable storage of store activity.
//
// A journal is an append-only log of sessions. Each session holds one entry
// per reduced action: the action's rendering, the state the reducer left
// behind as canonical JSON, and the content hash of that state.
//
// # Ordering
//
// Entries are ordered by the store's logical sequence number, never by wall
// time. All queries use ORDER BY seq ASC, id ASC COLLATE BINARY so that
// results are identical across replays.
//
// # Idempotency
//
// Entry IDs are content-addressed (see snapshot.EntryID) and writes use
// ON CONFLICT DO NOTHING, so recording the same entry twice is harmless.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package journal
