package domain

import "time"

// Stage identifies a retrieval pipeline stage.
type Stage string

const (
	StageQueries    Stage = "query-resolution"
	StageRemoteIDs  Stage = "identifier-resolution"
	StageAccessions Stage = "accession-resolution"
	StageHeaders    Stage = "header-fetch"
	StageRecords    Stage = "record-fetch"
)

// AllStages returns the pipeline stages in execution order.
func AllStages() []Stage {
	return []Stage{StageQueries, StageRemoteIDs, StageAccessions, StageHeaders, StageRecords}
}

// StageReport summarises one pipeline stage run.
type StageReport struct {
	Stage Stage

	// Pending is the size of the stage's work queue when it started.
	Pending int

	// Added counts cache rows created or filled in.
	Added int

	// Failed counts work items whose batch exhausted its retries
	// or which the remote service could not resolve.
	Failed int

	// Skipped counts work items that needed no action.
	Skipped int

	Duration time.Duration
}

// NoWork reports whether the stage found nothing to do.
func (r StageReport) NoWork() bool {
	return r.Added == 0 && r.Failed == 0
}

// PipelineOptions configures batching and retry for the retrieval pipeline.
type PipelineOptions struct {
	// BatchSize is the number of work items per remote request.
	BatchSize int

	// Retries is the number of attempts permitted per batch.
	Retries int

	// RetryBackoff is the initial delay between attempts.
	RetryBackoff time.Duration

	// Concurrency caps the number of batches in flight.
	Concurrency int
}

// ExtractOptions configures CDS extraction and verification.
type ExtractOptions struct {
	// Stockholm indicates input IDs carry a "/start-end" domain range.
	Stockholm bool

	// UnifySeqID replaces output nucleotide IDs with the input IDs.
	UnifySeqID bool

	// AlternativeStartCodon accepts translations differing only in the first residue.
	AlternativeStartCodon bool
}

// RunReport summarises a complete run for the operator.
type RunReport struct {
	RunID   string
	Inputs  int
	Cached  int
	Skipped int

	// Duplicates counts input records whose ID repeats an earlier one.
	Duplicates int

	Stages   []StageReport
	Outcomes map[MatchReason]int
	Pairs    int
	Duration time.Duration

	// Output file paths; SkippedPath is empty when nothing was skipped.
	ProteinPath    string
	NucleotidePath string
	SkippedPath    string
}
