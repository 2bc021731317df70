package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ncfp/internal/core/domain"
)

func cdsFeature(qualifiers map[string]string) domain.Feature {
	q := make(map[string][]string, len(qualifiers))
	for k, v := range qualifiers {
		q[k] = []string{v}
	}
	return domain.Feature{
		Type:       domain.FeatureCDS,
		Location:   domain.Location{Spans: []domain.Span{{Start: 0, End: 3}}, Strand: domain.StrandForward},
		Qualifiers: q,
	}
}

func TestFeatureMatcher_LocusTagBeforeProteinID(t *testing.T) {
	rec := &domain.GenBankRecord{Features: []domain.Feature{
		cdsFeature(map[string]string{"protein_id": "WP_2.1"}),
		cdsFeature(map[string]string{"locus_tag": "LT_1", "protein_id": "WP_9.1"}),
	}}

	f, strategy, ok := NewFeatureMatcher().Match(rec, MatchQuery{Accession: "WP_2.1", AAQuery: "LT_1"})
	require.True(t, ok)
	assert.Equal(t, "locus-tag:aa-query", strategy)
	assert.Same(t, &rec.Features[1], f)
}

func TestFeatureMatcher_FallbackChain(t *testing.T) {
	tests := []struct {
		name     string
		features []domain.Feature
		query    MatchQuery
		want     string
		wantIdx  int
	}{
		{
			name: "locus tag by gene name",
			features: []domain.Feature{
				cdsFeature(map[string]string{"locus_tag": "other"}),
				cdsFeature(map[string]string{"locus_tag": "abcD"}),
			},
			query:   MatchQuery{Accession: "sp|P1|X", AAQuery: "P1", GeneName: "abcD"},
			want:    "locus-tag:gene-name",
			wantIdx: 1,
		},
		{
			name: "protein id by gene name",
			features: []domain.Feature{
				cdsFeature(map[string]string{"protein_id": "abcD"}),
				cdsFeature(map[string]string{"protein_id": "other"}),
			},
			query: MatchQuery{Accession: "sp|P1|X", AAQuery: "P1", GeneName: "abcD"},
			want:  "protein-id:gene-name",
		},
		{
			name: "protein id by accession without domain range",
			features: []domain.Feature{
				cdsFeature(map[string]string{"protein_id": "other"}),
				cdsFeature(map[string]string{"protein_id": "WP_2.1"}),
			},
			query:   MatchQuery{Accession: "WP_2.1/5-20", AAQuery: "WP_2.1"},
			want:    "protein-id:accession",
			wantIdx: 1,
		},
		{
			name: "gene qualifier by gene name",
			features: []domain.Feature{
				cdsFeature(map[string]string{"protein_id": "other"}),
				cdsFeature(map[string]string{"gene": "abcD", "protein_id": "WP_7.1"}),
			},
			query:   MatchQuery{Accession: "sp|P1|X", AAQuery: "P1", GeneName: "abcD"},
			want:    "gene:gene-name",
			wantIdx: 1,
		},
		{
			name: "single CDS",
			features: []domain.Feature{
				{Type: "gene", Qualifiers: map[string][]string{"gene": {"x"}}},
				cdsFeature(map[string]string{"protein_id": "WP_7.1"}),
			},
			query:   MatchQuery{Accession: "WP_2.1", AAQuery: "WP_2.1"},
			want:    "single-cds",
			wantIdx: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &domain.GenBankRecord{Features: tt.features}
			f, strategy, ok := NewFeatureMatcher().Match(rec, tt.query)
			require.True(t, ok)
			assert.Equal(t, tt.want, strategy)
			assert.Same(t, &rec.Features[tt.wantIdx], f)
		})
	}
}

func TestFeatureMatcher_NoMatch(t *testing.T) {
	tests := []struct {
		name     string
		features []domain.Feature
		query    MatchQuery
	}{
		{
			name: "accession ignored when a gene name is known",
			features: []domain.Feature{
				cdsFeature(map[string]string{"protein_id": "WP_2.1"}),
				cdsFeature(map[string]string{"protein_id": "other"}),
			},
			query: MatchQuery{Accession: "WP_2.1", GeneName: "zzz"},
		},
		{
			name: "only CDS features are searched",
			features: []domain.Feature{
				{Type: "gene", Qualifiers: map[string][]string{"locus_tag": {"LT_1"}}},
				cdsFeature(map[string]string{"locus_tag": "a", "protein_id": "p"}),
				cdsFeature(map[string]string{"locus_tag": "b", "protein_id": "q"}),
			},
			query: MatchQuery{Accession: "X", AAQuery: "LT_1"},
		},
		{
			name:     "single CDS without protein id",
			features: []domain.Feature{cdsFeature(map[string]string{"locus_tag": "a"})},
			query:    MatchQuery{Accession: "X"},
		},
		{
			name:  "no features",
			query: MatchQuery{Accession: "X", AAQuery: "X", GeneName: "g"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &domain.GenBankRecord{Features: tt.features}
			_, _, ok := NewFeatureMatcher().Match(rec, tt.query)
			assert.False(t, ok)
		})
	}
}

func TestFeatureMatcher_CustomStrategies(t *testing.T) {
	m := NewFeatureMatcher(SingleCDS())
	assert.Equal(t, []string{"single-cds"}, m.Strategies())

	assert.Equal(t, []string{
		"locus-tag:aa-query",
		"locus-tag:gene-name",
		"protein-id:gene-name",
		"protein-id:accession",
		"gene:gene-name",
		"single-cds",
	}, NewFeatureMatcher().Strategies())
}
