package driven

import (
	"context"

	"github.com/custodia-labs/ncfp/internal/core/domain"
)

// RemoteLookup is the remote nucleotide database.
// Each call handles one batch; callers own batching and retry.
// Items the service does not know are simply absent from the result.
type RemoteLookup interface {
	// MapQueries maps protein query terms to nucleotide query terms.
	MapQueries(ctx context.Context, aaQueries []string) (map[string]string, error)

	// SearchIDs returns the nucleotide UIDs matching each query term.
	SearchIDs(ctx context.Context, queries []string) (map[string][]string, error)

	// FetchSummaries returns summary metadata keyed by UID.
	FetchSummaries(ctx context.Context, uids []string) (map[string]domain.Summary, error)

	// FetchRecords returns raw full-record text keyed by the record's
	// versioned accession, as given on its VERSION line.
	FetchRecords(ctx context.Context, uids []string) (map[string]string, error)
}
