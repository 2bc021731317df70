// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CacheStore: Resumable retrieval bookkeeping (SQLite)
//   - RemoteLookup: NCBI nucleotide search, summary and record fetch
//   - RecordParser: Parses cached full records into structured form
//   - SequenceReader / SequenceWriter: FASTA input and output
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunObserver: Run metrics (Prometheus textfile)
//   - ProgressReporter: Per-stage progress display
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
