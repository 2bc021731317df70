// Package sqlite provides the SQLite-backed retrieval cache.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements driven.CacheStore
// over a single database file holding five tables:
//
//   - seqdata: Input sequences and their query terms
//   - nt_uid_acc: Remote nucleotide UIDs and resolved accessions
//   - seq_nt: Links between inputs and UIDs
//   - gb_headers: Summary metadata per accession
//   - gb_full: Raw full records per accession
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Initialize runs every down migration and re-applies the up migrations,
// discarding all cached state.
//
// # Data Location
//
// The caller chooses the database path; the CLI uses
// <cachedir>/ncfpcache_<stem>.sqlite3.
//
// # Thread Safety
//
// Each operation runs as its own statement or transaction, so operations may
// be called in any order and after a restart. The store assumes a single
// writing process.
package sqlite
