// Package repositories implements SQLite persistence for the playback history.
//
// [PlayRepository] handles CRUD operations for history entries with atomic
// sequence generation for human-readable ordering. Soft deletes via
// deleted_at timestamps exclude removed records from queries by default.
//
// Sequence numbers provide stable, human-readable ordering (e.g., play #42)
// independent of UUIDs and creation timestamps. The [NextSequence] function
// atomically increments per-table sequence counters in dedicated sequence
// tables.
package repositories
