package driving

import (
	"context"

	"github.com/custodia-labs/ncfp/internal/core/domain"
)

// RetrievalPipeline resolves input sequences to cached full nucleotide records.
// Each stage reads its work queue from the cache, so stages may be re-run
// after a failure without repeating completed remote calls.
type RetrievalPipeline interface {
	// ResolveQueries fills in nucleotide query terms for inputs lacking one.
	ResolveQueries(ctx context.Context) (domain.StageReport, error)

	// ResolveRemoteIDs links nucleotide UIDs to inputs with a query term.
	ResolveRemoteIDs(ctx context.Context) (domain.StageReport, error)

	// ResolveAccessions resolves the canonical accession of each UID.
	ResolveAccessions(ctx context.Context) (domain.StageReport, error)

	// FetchHeaders stores summary metadata for each resolved accession.
	FetchHeaders(ctx context.Context) (domain.StageReport, error)

	// FetchRecords stores the shortest complete full record for each input.
	FetchRecords(ctx context.Context) (domain.StageReport, error)

	// RunAll runs every stage in order, stopping at the first fatal error.
	RunAll(ctx context.Context) ([]domain.StageReport, error)
}

// CDSExtractor pairs input proteins with their coding sequences.
type CDSExtractor interface {
	// Extract locates, extracts and verifies the CDS for one input.
	// Per-record failures are reported in the result, not as errors.
	Extract(ctx context.Context, record domain.SequenceRecord) (domain.MatchResult, error)
}

// RunOptions configures one end-to-end run.
type RunOptions struct {
	// InputPath is a FASTA file, or "-" for standard input.
	InputPath string

	// OutDir receives the paired output files.
	OutDir string

	// FileStem prefixes the output file names.
	FileStem string

	// SkippedFile names the file receiving inputs with no query term.
	SkippedFile string
}

// Runner drives a complete run: registration, retrieval, extraction, output.
type Runner interface {
	Run(ctx context.Context, opts RunOptions) (*domain.RunReport, error)
}
