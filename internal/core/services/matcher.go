package services

import (
	"github.com/custodia-labs/ncfp/internal/core/domain"
)

// MatchQuery carries what is known about an input when searching a record.
type MatchQuery struct {
	// Accession is the input identifier, including any domain-range suffix.
	Accession string

	// AAQuery is the cached protein query term, if any.
	AAQuery string

	// GeneName is the GN= hint from the input description, if any.
	GeneName string
}

// MatchStrategy locates the CDS feature encoding an input protein.
type MatchStrategy interface {
	// Name identifies the strategy in logs and match results.
	Name() string

	// Find returns the matching CDS feature, if the strategy applies and succeeds.
	Find(record *domain.GenBankRecord, q MatchQuery) (*domain.Feature, bool)
}

// qualifierStrategy matches the first CDS whose qualifier equals a key
// derived from the query. An empty key means the strategy does not apply.
type qualifierStrategy struct {
	name      string
	qualifier string
	key       func(MatchQuery) string
}

func (s qualifierStrategy) Name() string { return s.name }

func (s qualifierStrategy) Find(record *domain.GenBankRecord, q MatchQuery) (*domain.Feature, bool) {
	key := s.key(q)
	if key == "" {
		return nil, false
	}
	return findCDSByQualifier(record, s.qualifier, key)
}

// singleCDSStrategy falls back to the only CDS in the record, re-found by
// its own protein_id so it passes through the same lookup as other matches.
type singleCDSStrategy struct{}

func (singleCDSStrategy) Name() string { return "single-cds" }

func (singleCDSStrategy) Find(record *domain.GenBankRecord, _ MatchQuery) (*domain.Feature, bool) {
	cds := record.CDSFeatures()
	if len(cds) != 1 {
		return nil, false
	}
	proteinID, ok := cds[0].Qualifier(domain.QualifierProteinID)
	if !ok || proteinID == "" {
		return nil, false
	}
	return findCDSByQualifier(record, domain.QualifierProteinID, proteinID)
}

func findCDSByQualifier(record *domain.GenBankRecord, qualifier, value string) (*domain.Feature, bool) {
	for _, f := range record.CDSFeatures() {
		if f.HasQualifierValue(qualifier, value) {
			return f, true
		}
	}
	return nil, false
}

// LocusTagByAAQuery matches locus_tag against the cached protein query.
func LocusTagByAAQuery() MatchStrategy {
	return qualifierStrategy{
		name:      "locus-tag:aa-query",
		qualifier: domain.QualifierLocusTag,
		key:       func(q MatchQuery) string { return q.AAQuery },
	}
}

// LocusTagByGeneName matches locus_tag against the GN= hint.
func LocusTagByGeneName() MatchStrategy {
	return qualifierStrategy{
		name:      "locus-tag:gene-name",
		qualifier: domain.QualifierLocusTag,
		key:       func(q MatchQuery) string { return q.GeneName },
	}
}

// ProteinIDByGeneName matches protein_id against the GN= hint.
func ProteinIDByGeneName() MatchStrategy {
	return qualifierStrategy{
		name:      "protein-id:gene-name",
		qualifier: domain.QualifierProteinID,
		key:       func(q MatchQuery) string { return q.GeneName },
	}
}

// ProteinIDByAccession matches protein_id against the input accession with
// any domain range removed. It only applies to inputs without a GN= hint.
func ProteinIDByAccession() MatchStrategy {
	return qualifierStrategy{
		name:      "protein-id:accession",
		qualifier: domain.QualifierProteinID,
		key: func(q MatchQuery) string {
			if q.GeneName != "" {
				return ""
			}
			return domain.StripDomainRange(q.Accession)
		},
	}
}

// GeneByGeneName matches the gene qualifier against the GN= hint.
func GeneByGeneName() MatchStrategy {
	return qualifierStrategy{
		name:      "gene:gene-name",
		qualifier: domain.QualifierGene,
		key:       func(q MatchQuery) string { return q.GeneName },
	}
}

// SingleCDS matches when the record holds exactly one CDS.
func SingleCDS() MatchStrategy {
	return singleCDSStrategy{}
}

// DefaultStrategies returns the matching fallback chain in order.
func DefaultStrategies() []MatchStrategy {
	return []MatchStrategy{
		LocusTagByAAQuery(),
		LocusTagByGeneName(),
		ProteinIDByGeneName(),
		ProteinIDByAccession(),
		GeneByGeneName(),
		SingleCDS(),
	}
}

// FeatureMatcher tries its strategies in order; the first match wins.
type FeatureMatcher struct {
	strategies []MatchStrategy
}

// NewFeatureMatcher creates a matcher. With no strategies, DefaultStrategies is used.
func NewFeatureMatcher(strategies ...MatchStrategy) *FeatureMatcher {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &FeatureMatcher{strategies: strategies}
}

// Match returns the located feature and the name of the strategy that found it.
func (m *FeatureMatcher) Match(record *domain.GenBankRecord, q MatchQuery) (*domain.Feature, string, bool) {
	for _, s := range m.strategies {
		if f, ok := s.Find(record, q); ok {
			return f, s.Name(), true
		}
	}
	return nil, "", false
}

// Strategies returns the strategy names in the order they are tried.
func (m *FeatureMatcher) Strategies() []string {
	names := make([]string, len(m.strategies))
	for i, s := range m.strategies {
		names[i] = s.Name()
	}
	return names
}
