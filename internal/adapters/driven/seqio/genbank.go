package seqio

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/TimothyStiles/poly/io/genbank"

	"github.com/custodia-labs/ncfp/internal/core/domain"
	"github.com/custodia-labs/ncfp/internal/core/ports/driven"
)

// Ensure GenBankParser implements the interface.
var _ driven.RecordParser = (*GenBankParser)(nil)

// ErrMalformedRecord indicates text that is not a GenBank flat-file record.
var ErrMalformedRecord = errors.New("malformed GenBank record")

// GenBankParser parses NCBI GenBank flat-file records with poly's genbank
// reader and maps them onto domain records.
type GenBankParser struct{}

// NewGenBankParser creates a GenBank parser.
func NewGenBankParser() *GenBankParser {
	return &GenBankParser{}
}

// ParseRecord parses the first record in text.
// Features whose strands disagree are kept with an empty location so that
// callers can report them.
func (p *GenBankParser) ParseRecord(text string) (*domain.GenBankRecord, error) {
	gb, err := genbank.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if gb.Meta.Locus.Name == "" && gb.Sequence == "" {
		return nil, fmt.Errorf("%w: missing LOCUS line", ErrMalformedRecord)
	}

	rec := &domain.GenBankRecord{
		ID:          recordID(gb.Meta),
		Name:        gb.Meta.Locus.Name,
		Description: strings.TrimSuffix(strings.TrimSpace(gb.Meta.Definition), "."),
		Organism:    strings.TrimSpace(gb.Meta.Organism),
		Taxonomy:    lineage(gb.Meta.Taxonomy),
		Date:        gb.Meta.Locus.ModificationDate,
		Seq:         strings.ToUpper(gb.Sequence),
	}

	for _, f := range gb.Features {
		feature := domain.Feature{
			Type:       f.Type,
			Qualifiers: qualifiers(f.Attributes),
			Location:   toLocation(f.Location),
		}
		for _, span := range feature.Location.Spans {
			if span.Start < 0 || span.End > len(rec.Seq) {
				return nil, fmt.Errorf("%w: feature %s extends past sequence end (%d > %d)",
					ErrMalformedRecord, f.Type, span.End, len(rec.Seq))
			}
		}
		rec.Features = append(rec.Features, feature)
	}
	return rec, nil
}

// recordID prefers the versioned accession, then the accession, then the
// LOCUS name.
func recordID(meta genbank.Meta) string {
	for _, v := range []string{meta.Version, meta.Accession} {
		if fields := strings.Fields(v); len(fields) > 0 {
			return fields[0]
		}
	}
	return meta.Locus.Name
}

// lineage normalises the ORGANISM lineage however the reader split it.
func lineage(taxa []string) []string {
	joined := strings.TrimSuffix(strings.TrimSpace(strings.Join(taxa, ";")), ".")
	var out []string
	for _, t := range strings.Split(joined, ";") {
		if t = strings.TrimSuffix(strings.TrimSpace(t), "."); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func qualifiers[V string | []string](attrs map[string]V) map[string][]string {
	out := make(map[string][]string, len(attrs))
	for key, v := range attrs {
		var values []string
		switch val := any(v).(type) {
		case string:
			values = []string{val}
		case []string:
			values = val
		}
		for _, value := range values {
			out[key] = append(out[key], strings.Trim(value, `"`))
		}
	}
	return out
}

// strandedSpan is one span in the order it is read when translating.
type strandedSpan struct {
	span    domain.Span
	reverse bool
}

// toLocation converts a parsed location tree into domain spans. Reverse
// features list their spans so that the reverse complement of their
// concatenation is the feature sequence. Mixed strands give an empty
// location.
func toLocation(loc genbank.Location) domain.Location {
	parts := readingOrder(loc)
	if len(parts) == 0 {
		return domain.Location{}
	}

	reverse := parts[0].reverse
	spans := make([]domain.Span, 0, len(parts))
	for _, p := range parts {
		if p.reverse != reverse {
			return domain.Location{}
		}
		spans = append(spans, p.span)
	}
	if !reverse {
		return domain.Location{Spans: spans, Strand: domain.StrandForward}
	}
	slices.Reverse(spans)
	return domain.Location{Spans: spans, Strand: domain.StrandReverse}
}

func readingOrder(loc genbank.Location) []strandedSpan {
	var parts []strandedSpan
	if len(loc.SubLocations) > 0 {
		for _, sub := range loc.SubLocations {
			parts = append(parts, readingOrder(sub)...)
		}
	} else if loc.End > loc.Start {
		parts = []strandedSpan{{span: domain.Span{Start: loc.Start, End: loc.End}}}
	}

	if loc.Complement {
		slices.Reverse(parts)
		for i := range parts {
			parts[i].reverse = !parts[i].reverse
		}
	}
	return parts
}
