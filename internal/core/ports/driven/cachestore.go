package driven

import (
	"context"

	"github.com/custodia-labs/ncfp/internal/core/domain"
)

// CacheStore is the durable record of retrieval progress.
// Every pipeline stage discovers its remaining work through the List*
// queries, so a restart against the same store resumes where it left off.
//
// All failures are reported as *domain.StoreError; duplicate keys wrap
// domain.ErrAlreadyExists and unknown keys wrap domain.ErrNotFound.
type CacheStore interface {
	// Initialize discards all contents and recreates the schema.
	Initialize(ctx context.Context) error

	// AddInputSequence registers an input sequence. Rejects duplicates.
	AddInputSequence(ctx context.Context, accession, aaQuery, ntQuery string) error

	// HasSequence reports whether the input accession is registered.
	HasSequence(ctx context.Context, accession string) (bool, error)

	// HasQuery reports whether the input has any query term.
	HasQuery(ctx context.Context, accession string) (bool, error)

	// HasNtQuery reports whether the input has a nucleotide query term.
	HasNtQuery(ctx context.Context, accession string) (bool, error)

	// GetNtQuery returns the nucleotide query term, or ErrNotFound.
	GetNtQuery(ctx context.Context, accession string) (string, error)

	// GetAAQuery returns the protein query term, or ErrNotFound.
	GetAAQuery(ctx context.Context, accession string) (string, error)

	// UpdateNtQuery fills in the nucleotide query term for an input.
	UpdateNtQuery(ctx context.Context, accession, ntQuery string) error

	// ListInputSequences returns all registered inputs in insertion order.
	ListInputSequences(ctx context.Context) ([]domain.SeqData, error)

	// HasRemoteID reports whether at least one UID is linked to the input.
	HasRemoteID(ctx context.Context, accession string) (bool, error)

	// AddRemoteIDs links UIDs to an input, creating UID rows as needed.
	// Returns the UIDs newly linked; existing links are not duplicated.
	AddRemoteIDs(ctx context.Context, accession string, uids []string) ([]string, error)

	// ListAllRemoteIDs returns every known UID.
	ListAllRemoteIDs(ctx context.Context) ([]string, error)

	// ListRemoteIDsMissingAccession returns UIDs whose accession is unresolved.
	ListRemoteIDsMissingAccession(ctx context.Context) ([]string, error)

	// ListAccessionsMissingHeader returns UIDs whose resolved accession has no header.
	ListAccessionsMissingHeader(ctx context.Context) ([]domain.RemoteID, error)

	// UpdateRemoteIDAccession sets the accession for a known UID.
	UpdateRemoteIDAccession(ctx context.Context, uid, accession string) error

	// AddHeader stores header metadata. Rejects duplicates.
	AddHeader(ctx context.Context, header domain.Header) error

	// GetHeader returns the header for a nucleotide accession.
	GetHeader(ctx context.Context, accession string) (*domain.Header, error)

	// ListCandidates returns the UIDs linked to an input in link order,
	// with their accession and header length where known.
	ListCandidates(ctx context.Context, accession string) ([]domain.Candidate, error)

	// AddRecord stores the raw text of a full nucleotide record. Rejects duplicates.
	AddRecord(ctx context.Context, accession, text string) error

	// HasRecord reports whether a full record is stored for a nucleotide accession.
	HasRecord(ctx context.Context, accession string) (bool, error)

	// ListSequencesMissingRecord returns inputs with linked UIDs but no
	// stored full record among their resolved accessions.
	ListSequencesMissingRecord(ctx context.Context) ([]string, error)

	// FindRecordsForAccession returns every stored full record linked to an input.
	FindRecordsForAccession(ctx context.Context, accession string) ([]domain.StoredRecord, error)

	// Stats summarises contents and outstanding work.
	Stats(ctx context.Context) (*domain.CacheStats, error)

	// Close releases the underlying storage.
	Close() error
}
