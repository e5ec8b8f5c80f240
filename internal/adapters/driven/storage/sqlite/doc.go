// Package sqlite provides SQLite-backed implementations of the driven storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A single database connection serves:
//
//   - VectorStore: the course catalog and course content collections
//   - HistoryStore: per-session conversation history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Similarity
//
// Vectors are stored as little-endian float32 blobs. Queries load the matching
// rows of a collection and rank them by cosine similarity in Go, which is fast
// enough for the few thousand chunks a course catalogue produces.
//
// # Data Location
//
// By default, the database is stored at ~/.coursemate/data/coursemate.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
