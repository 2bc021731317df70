// Package driving defines the ports the CLI calls into: the retrieval
// pipeline, the CDS extractor, the end-to-end runner and settings.
//
// Implementations live in internal/core/services.
package driving
