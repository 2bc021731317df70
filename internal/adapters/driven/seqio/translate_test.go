package seqio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ncfp/internal/core/domain"
)

func TestCodonTranslator_Translate(t *testing.T) {
	tests := []struct {
		name  string
		nt    string
		table int
		want  string
	}{
		{"standard", "ATGGCTAAATAA", 1, "MAK*"},
		{"partial codon dropped", "ATGGCTAA", 1, "MA"},
		{"ambiguous base", "ATGGNT", 1, "MX"},
		{"alternative start read as itself", "GTGGCT", 1, "VA"},
		{"lower case", "atggct", 1, "MA"},
		{"vertebrate mitochondrial", "TGAAGAATA", 2, "W*M"},
		{"bacterial from RNA", "augagcuag", 11, "MS*"},
	}

	tr := NewCodonTranslator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tr.Translate(tt.nt, tt.table)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCodonTranslator_UnknownTable(t *testing.T) {
	_, err := NewCodonTranslator().Translate("ATG", 99)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCodonTranslator_CachesTables(t *testing.T) {
	tr := NewCodonTranslator()
	_, err := tr.Translate("ATG", 4)
	require.NoError(t, err)
	_, err = tr.Translate("TGA", 4)
	require.NoError(t, err)
	assert.Len(t, tr.tables, 1)
}
