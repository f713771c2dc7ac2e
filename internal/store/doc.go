// Package store persists snapshots in SQLite.
//
// The database holds three tables:
//   - snapshot: the current snapshot as JSON, a single row
//   - revisions: one row per save, with collection counts
//   - backups: point-in-time copies with a SHA-256 checksum
//
// A save is one transaction: either the snapshot row and its revision row are
// both written or neither is.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
