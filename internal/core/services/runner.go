package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ncfp/internal/core/domain"
	"github.com/custodia-labs/ncfp/internal/core/ports/driven"
	"github.com/custodia-labs/ncfp/internal/core/ports/driving"
	"github.com/custodia-labs/ncfp/internal/logger"
)

// Ensure Runner implements the interface.
var _ driving.Runner = (*Runner)(nil)

// Output file suffixes appended to the run's file stem.
const (
	ProteinSuffix    = "_aa.fasta"
	NucleotideSuffix = "_nt.fasta"
)

// Runner drives one complete run over an input collection.
type Runner struct {
	cache     driven.CacheStore
	pipeline  driving.RetrievalPipeline
	extractor driving.CDSExtractor
	reader    driven.SequenceReader
	writer    driven.SequenceWriter
	observer  driven.RunObserver
	log       *logger.Logger
	stdin     io.Reader
}

// NewRunner creates a runner from its collaborators.
func NewRunner(
	cache driven.CacheStore,
	pipeline driving.RetrievalPipeline,
	extractor driving.CDSExtractor,
	reader driven.SequenceReader,
	writer driven.SequenceWriter,
	log *logger.Logger,
) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		cache:     cache,
		pipeline:  pipeline,
		extractor: extractor,
		reader:    reader,
		writer:    writer,
		observer:  nopObserver{},
		log:       log,
		stdin:     os.Stdin,
	}
}

// SetObserver sets the observer notified of extraction outcomes.
func (r *Runner) SetObserver(o driven.RunObserver) {
	if o == nil {
		o = nopObserver{}
	}
	r.observer = o
}

// SetStdin sets the reader used when the input path is "-".
func (r *Runner) SetStdin(in io.Reader) {
	r.stdin = in
}

// Run registers inputs, runs retrieval, extracts coding sequences and
// writes the paired outputs. Errors are returned only for conditions that
// make continuing pointless.
func (r *Runner) Run(ctx context.Context, opts driving.RunOptions) (*domain.RunReport, error) {
	start := time.Now()
	report := &domain.RunReport{
		RunID:    uuid.NewString(),
		Outcomes: make(map[domain.MatchReason]int),
	}
	r.log.Info("run %s started", report.RunID)

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return report, fmt.Errorf("create output directory: %w", err)
	}

	inputs, err := r.readInputs(opts.InputPath)
	if err != nil {
		return report, err
	}
	report.Inputs = len(inputs)
	r.log.Info("loaded %d input sequences", len(inputs))

	reg, err := r.register(ctx, inputs)
	if err != nil {
		return report, err
	}
	queried, skipped, cached := reg.queried, reg.skipped, reg.cached
	report.Cached = cached
	report.Skipped = len(skipped)
	report.Duplicates = reg.duplicates
	if reg.duplicates > 0 {
		r.log.Warn("ignored %d repeated input IDs", reg.duplicates)
	}

	if len(skipped) > 0 {
		report.SkippedPath = filepath.Join(opts.OutDir, opts.SkippedFile)
		if err := r.writeFile(report.SkippedPath, skipped); err != nil {
			return report, err
		}
		r.log.Warn("skipped %d sequences with no query term, written to %s", len(skipped), report.SkippedPath)
	}
	r.log.Info("%d sequences taken forward with a query (%d already cached)", len(queried), cached)

	stages, err := r.pipeline.RunAll(ctx)
	report.Stages = stages
	if err != nil {
		return report, fmt.Errorf("retrieval: %w", err)
	}

	r.log.Section("extraction")
	var pairs []domain.SequencePair
	for _, rec := range queried {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := r.extractor.Extract(ctx, rec)
		if err != nil {
			return report, fmt.Errorf("extract %s: %w", rec.ID, err)
		}
		report.Outcomes[res.Reason]++
		r.observer.ExtractionOutcome(res.Reason)
		if res.Matched() {
			r.log.Info("%-40s to CDS: %s", rec.ID, res.Pair.Nucleotide.ID)
			pairs = append(pairs, *res.Pair)
		}
	}
	report.Pairs = len(pairs)
	r.log.Info("matched %d/%d records", len(pairs), len(queried))

	aa := make([]domain.SequenceRecord, len(pairs))
	nt := make([]domain.SequenceRecord, len(pairs))
	for i, p := range pairs {
		aa[i] = p.Protein
		nt[i] = p.Nucleotide
	}
	report.ProteinPath = filepath.Join(opts.OutDir, opts.FileStem+ProteinSuffix)
	report.NucleotidePath = filepath.Join(opts.OutDir, opts.FileStem+NucleotideSuffix)
	if err := r.writeFile(report.ProteinPath, aa); err != nil {
		return report, err
	}
	if err := r.writeFile(report.NucleotidePath, nt); err != nil {
		return report, err
	}

	report.Duration = time.Since(start)
	r.log.Info("completed in %s", report.Duration.Round(time.Millisecond))
	return report, nil
}

func (r *Runner) readInputs(path string) ([]domain.SequenceRecord, error) {
	in := r.stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}
	records, err := r.reader.ReadSequences(in)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return records, nil
}

// registration is the outcome of registering one input collection.
type registration struct {
	queried    []domain.SequenceRecord
	skipped    []domain.SequenceRecord
	cached     int
	duplicates int
}

// register adds each input to the cache. Inputs already present count as
// cached; inputs with no derivable query are set aside as skipped. Only
// the first record with a given ID is used.
func (r *Runner) register(ctx context.Context, inputs []domain.SequenceRecord) (registration, error) {
	var reg registration
	seen := make(map[string]bool, len(inputs))
	for _, rec := range inputs {
		if seen[rec.ID] {
			r.log.Warn("%s: repeated in input, later copy ignored", rec.ID)
			reg.duplicates++
			continue
		}
		seen[rec.ID] = true

		aaQuery, ntQuery, qerr := InputQueries(rec)
		if qerr != nil {
			r.log.Debug("%s: %v", rec.ID, qerr)
			reg.skipped = append(reg.skipped, rec)
			continue
		}
		reg.queried = append(reg.queried, rec)

		err := r.cache.AddInputSequence(ctx, rec.ID, aaQuery, ntQuery)
		switch {
		case err == nil:
			r.log.Debug("%s: aa_query=%q nt_query=%q", rec.ID, aaQuery, ntQuery)
		case errors.Is(err, domain.ErrAlreadyExists):
			reg.cached++
		default:
			return registration{}, err
		}
	}
	return reg, nil
}

func (r *Runner) writeFile(path string, records []domain.SequenceRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := r.writer.WriteSequences(f, records); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	r.log.Debug("wrote %d sequences to %s", len(records), path)
	return nil
}

// InputQueries derives the cache query terms for an input record.
// The protein query is the UniProt accession, or the identifier without
// any domain range. The nucleotide query is built from the GN= gene name,
// qualified by the OS= organism when present.
func InputQueries(rec domain.SequenceRecord) (aaQuery, ntQuery string, err error) {
	if acc, ok := domain.UniProtAccession(rec.ID); ok {
		aaQuery = acc
	} else {
		aaQuery = domain.StripDomainRange(rec.ID)
	}

	if gn, ok := domain.GeneName(rec.Description); ok {
		ntQuery = fmt.Sprintf("%q[Gene Name]", gn)
		if organism, ok := domain.OrganismName(rec.Description); ok {
			ntQuery = fmt.Sprintf("%s AND %q[Organism]", ntQuery, organism)
		}
	}

	if aaQuery == "" && ntQuery == "" {
		return "", "", fmt.Errorf("%w: %s", domain.ErrNoQueryTerm, rec.ID)
	}
	return aaQuery, ntQuery, nil
}
