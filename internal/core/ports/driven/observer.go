package driven

import "github.com/custodia-labs/ncfp/internal/core/domain"

// RunObserver receives run events for metrics collection.
type RunObserver interface {
	// StageCompleted is called once per pipeline stage.
	StageCompleted(report domain.StageReport)

	// ExtractionOutcome is called once per input during CDS extraction.
	ExtractionOutcome(reason domain.MatchReason)
}

// ProgressReporter displays progress through a unit of work.
type ProgressReporter interface {
	// Start begins a new task with the given number of items.
	Start(task string, total int)

	// Advance records n completed items.
	Advance(n int)

	// Done finishes the current task.
	Done()
}
