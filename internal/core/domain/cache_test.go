package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortestCandidate_TieBreak(t *testing.T) {
	candidates := []Candidate{
		{UID: "1", Accession: "A.1", Length: 5000, HasHeader: true},
		{UID: "2", Accession: "B.1", Length: 3000, HasHeader: true},
		{UID: "3", Accession: "C.1", Length: 3000, HasHeader: true},
	}

	best, ok := ShortestCandidate(candidates)
	assert.True(t, ok)
	assert.Equal(t, "2", best.UID, "first-seen wins on ties")
}

func TestShortestCandidate_IgnoresMissingHeaders(t *testing.T) {
	candidates := []Candidate{
		{UID: "1", Accession: "A.1", Length: 0},
		{UID: "2", Accession: "", Length: 10, HasHeader: true},
		{UID: "3", Accession: "C.1", Length: 900, HasHeader: true},
	}

	best, ok := ShortestCandidate(candidates)
	assert.True(t, ok)
	assert.Equal(t, "3", best.UID)

	_, ok = ShortestCandidate(candidates[:2])
	assert.False(t, ok)
}

func TestSummary_Header(t *testing.T) {
	s := Summary{UID: "9", Accession: "NC_1.1", Length: 42, Organism: "E. coli", Taxonomy: "562", Date: "2020/01/01"}
	assert.Equal(t, Header{Accession: "NC_1.1", Length: 42, Organism: "E. coli", Taxonomy: "562", Date: "2020/01/01"}, s.Header())
}
