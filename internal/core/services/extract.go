package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/ncfp/internal/core/domain"
	"github.com/custodia-labs/ncfp/internal/core/ports/driven"
	"github.com/custodia-labs/ncfp/internal/core/ports/driving"
	"github.com/custodia-labs/ncfp/internal/logger"
)

// Ensure CDSExtractor implements the interface.
var _ driving.CDSExtractor = (*CDSExtractor)(nil)

// CDSExtractor pairs each input protein with the coding sequence in its
// single cached full record.
type CDSExtractor struct {
	cache      driven.CacheStore
	parser     driven.RecordParser
	translator driven.Translator
	matcher    *FeatureMatcher
	opts       domain.ExtractOptions
	log        *logger.Logger
}

// NewCDSExtractor creates an extractor using the default matching chain.
func NewCDSExtractor(
	cache driven.CacheStore,
	parser driven.RecordParser,
	translator driven.Translator,
	opts domain.ExtractOptions,
	log *logger.Logger,
) *CDSExtractor {
	if log == nil {
		log = logger.Nop()
	}
	return &CDSExtractor{
		cache:      cache,
		parser:     parser,
		translator: translator,
		matcher:    NewFeatureMatcher(),
		opts:       opts,
		log:        log,
	}
}

// SetMatcher replaces the feature matcher.
func (e *CDSExtractor) SetMatcher(m *FeatureMatcher) {
	e.matcher = m
}

// Extract locates, extracts and verifies the CDS for one input.
// Only cache failures are returned as errors.
func (e *CDSExtractor) Extract(ctx context.Context, record domain.SequenceRecord) (domain.MatchResult, error) {
	result := domain.MatchResult{Accession: record.ID}

	stored, err := e.cache.FindRecordsForAccession(ctx, record.ID)
	if err != nil {
		return result, err
	}
	switch len(stored) {
	case 0:
		return e.fail(result, domain.ReasonNoCandidate, "no full record linked"), nil
	case 1:
	default:
		accs := make([]string, len(stored))
		for i, s := range stored {
			accs[i] = s.Accession
		}
		return e.fail(result, domain.ReasonAmbiguous, strings.Join(accs, ", ")), nil
	}

	gb, err := e.parser.ParseRecord(stored[0].Text)
	if err != nil {
		return e.fail(result, domain.ReasonExtractionFailed, fmt.Sprintf("parse %s: %v", stored[0].Accession, err)), nil
	}
	e.log.Debug("%s matches record %s", record.ID, gb.ID)

	query := MatchQuery{Accession: record.ID}
	aaQuery, err := e.cache.GetAAQuery(ctx, record.ID)
	switch {
	case err == nil:
		query.AAQuery = aaQuery
	case !errors.Is(err, domain.ErrNotFound):
		return result, err
	}
	if gn, ok := domain.GeneName(record.Description); ok {
		query.GeneName = gn
	}

	feature, strategy, ok := e.matcher.Match(gb, query)
	if !ok {
		return e.fail(result, domain.ReasonNoFeature, "no CDS matched in "+gb.ID), nil
	}
	result.Strategy = strategy

	nt, err := CodingSequence(gb, feature)
	if err != nil {
		return e.fail(result, domain.ReasonExtractionFailed, err.Error()), nil
	}

	table, err := featureGeneticCode(feature)
	if err != nil {
		return e.fail(result, domain.ReasonExtractionFailed, err.Error()), nil
	}

	ntID := gb.ID
	if pid, ok := feature.Qualifier(domain.QualifierProteinID); ok && pid != "" {
		ntID = pid
	}

	if e.opts.Stockholm {
		r, ok := domain.ParseDomainRange(record.ID)
		if !ok {
			return e.fail(result, domain.ReasonExtractionFailed, "no domain range in "+record.ID), nil
		}
		nt, err = domainWindow(nt, r)
		if err != nil {
			return e.fail(result, domain.ReasonExtractionFailed, err.Error()), nil
		}
		lo, hi := r.NucleotideWindow()
		ntID = fmt.Sprintf("%s/%d-%d", ntID, lo, hi)
	}

	protein, err := e.translator.Translate(nt, table)
	if err != nil {
		return e.fail(result, domain.ReasonExtractionFailed, err.Error()), nil
	}
	translated := strings.TrimSuffix(protein, "*")
	want := strings.TrimSuffix(domain.NormaliseProtein(record.Seq), "*")

	switch {
	case translated == want:
	case e.opts.AlternativeStartCodon && altStartMatch(translated, want):
		result.AltStart = true
		e.log.Debug("%s: alternative start codon %c -> %c", record.ID, translated[0], want[0])
	default:
		e.log.Debug("%s translation:\n%s\n%s", record.ID, translated, want)
		return e.fail(result, domain.ReasonMismatch, "translated CDS differs from input"), nil
	}

	ntRecord := domain.SequenceRecord{
		ID:          ntID,
		Description: gb.ID + " " + gb.Description,
		Seq:         nt,
	}
	if e.opts.UnifySeqID {
		ntRecord.Description = ntRecord.ID + " " + ntRecord.Description
		ntRecord.ID = record.ID
	}

	result.Reason = domain.ReasonMatched
	result.Pair = &domain.SequencePair{Protein: record, Nucleotide: ntRecord}
	e.log.Debug("%s: matched %s via %s", record.ID, ntID, strategy)
	return result, nil
}

func (e *CDSExtractor) fail(result domain.MatchResult, reason domain.MatchReason, detail string) domain.MatchResult {
	result.Reason = reason
	result.Detail = detail
	e.log.Warn("%s: %s (%s)", result.Accession, reason, detail)
	return result
}

// CodingSequence returns the feature's nucleotide sequence in coding
// orientation, trimmed to its codon_start reading frame.
func CodingSequence(record *domain.GenBankRecord, f *domain.Feature) (string, error) {
	if len(f.Location.Spans) == 0 {
		return "", errors.New("feature has no usable location")
	}

	var b strings.Builder
	for _, s := range f.Location.Spans {
		if s.Start < 0 || s.End > len(record.Seq) || s.Start > s.End {
			return "", fmt.Errorf("span %d..%d outside record of length %d", s.Start, s.End, len(record.Seq))
		}
		b.WriteString(record.Seq[s.Start:s.End])
	}
	nt := b.String()
	if f.Location.Strand == domain.StrandReverse {
		nt = domain.ReverseComplement(nt)
	}

	if v, ok := f.Qualifier(domain.QualifierCodonStart); ok {
		start, err := strconv.Atoi(v)
		if err != nil || start < 1 || start > 3 {
			return "", fmt.Errorf("invalid codon_start %q", v)
		}
		if start-1 > len(nt) {
			return "", fmt.Errorf("codon_start %d beyond feature", start)
		}
		nt = nt[start-1:]
	}
	return nt, nil
}

// featureGeneticCode returns the feature's transl_table, or the standard code.
func featureGeneticCode(f *domain.Feature) (int, error) {
	v, ok := f.Qualifier(domain.QualifierTranslTbl)
	if !ok {
		return domain.DefaultGeneticCode, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid transl_table %q", v)
	}
	return n, nil
}

// domainWindow restricts a CDS to the codons underlying a residue range.
func domainWindow(nt string, r domain.DomainRange) (string, error) {
	lo, hi := r.NucleotideWindow()
	if hi > len(nt) {
		return "", fmt.Errorf("domain range %d-%d exceeds CDS of %d residues", r.Start, r.End, len(nt)/3)
	}
	return nt[lo-1 : hi], nil
}

// altStartMatch reports whether two proteins differ only in their first residue.
func altStartMatch(translated, want string) bool {
	return len(translated) > 0 && len(translated) == len(want) && translated[1:] == want[1:]
}
