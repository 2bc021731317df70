package domain

// MatchReason explains why an input produced no sequence pair.
type MatchReason string

const (
	// ReasonMatched marks a successful pairing.
	ReasonMatched MatchReason = "matched"

	// ReasonNoCandidate means no full record is linked to the input.
	ReasonNoCandidate MatchReason = "no-candidate-record"

	// ReasonAmbiguous means more than one full record is linked to the input.
	ReasonAmbiguous MatchReason = "ambiguous-candidate-records"

	// ReasonNoFeature means no CDS feature in the record matched the input.
	ReasonNoFeature MatchReason = "no-feature-found"

	// ReasonMismatch means the translated CDS differs from the input protein.
	ReasonMismatch MatchReason = "translation-mismatch"

	// ReasonExtractionFailed means the record or feature could not be
	// parsed or sliced (e.g. a domain range outside the feature).
	ReasonExtractionFailed MatchReason = "extraction-failed"
)

// AllMatchReasons returns every outcome in reporting order.
func AllMatchReasons() []MatchReason {
	return []MatchReason{
		ReasonMatched,
		ReasonNoCandidate,
		ReasonAmbiguous,
		ReasonNoFeature,
		ReasonMismatch,
		ReasonExtractionFailed,
	}
}

// SequencePair is a matched input protein and its coding sequence.
type SequencePair struct {
	Protein    SequenceRecord
	Nucleotide SequenceRecord
}

// MatchResult is the outcome of CDS extraction for one input.
type MatchResult struct {
	// Accession is the input sequence identifier.
	Accession string

	// Reason is ReasonMatched when Pair is set.
	Reason MatchReason

	// Pair is nil unless the input was matched and verified.
	Pair *SequencePair

	// Strategy names the matcher rule that located the feature, if any.
	Strategy string

	// AltStart is true when verification succeeded only by ignoring the first residue.
	AltStart bool

	// Detail carries a human-readable explanation for failures.
	Detail string
}

// Matched reports whether a pair was produced.
func (r MatchResult) Matched() bool {
	return r.Pair != nil
}
