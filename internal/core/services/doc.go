// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The retrieval pipeline fills the cache stage by stage, the extractor
// pairs inputs with coding sequences from cached records, and the runner
// sequences both over an input collection.
//
// Services are pure Go with no CGO.
package services
