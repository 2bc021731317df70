package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripDomainRange(t *testing.T) {
	assert.Equal(t, "WP_012345.1", StripDomainRange("WP_012345.1/12-200"))
	assert.Equal(t, "WP_012345.1", StripDomainRange("WP_012345.1"))
	assert.Equal(t, "a/b", StripDomainRange("a/b"))
}

func TestParseDomainRange(t *testing.T) {
	r, ok := ParseDomainRange("XP_001.1/5-20")
	assert.True(t, ok)
	assert.Equal(t, DomainRange{Start: 5, End: 20}, r)

	start, end := r.NucleotideWindow()
	assert.Equal(t, 13, start)
	assert.Equal(t, 60, end)

	_, ok = ParseDomainRange("XP_001.1")
	assert.False(t, ok)

	_, ok = ParseDomainRange("XP_001.1/20-5")
	assert.False(t, ok, "end before start is rejected")
}

func TestGeneName(t *testing.T) {
	desc := "tr|A0A127QBK9|A0A127QBK9_9BURK Protein kinase OS=Collimonas arenae OX=279058 GN=CAter10_0001 PE=4 SV=1"

	gn, ok := GeneName(desc)
	assert.True(t, ok)
	assert.Equal(t, "CAter10_0001", gn)

	org, ok := OrganismName(desc)
	assert.True(t, ok)
	assert.Equal(t, "Collimonas arenae", org)

	_, ok = GeneName("WP_003 hypothetical protein [Escherichia coli]")
	assert.False(t, ok)
}

func TestUniProtAccession(t *testing.T) {
	acc, ok := UniProtAccession("sp|P04637|P53_HUMAN")
	assert.True(t, ok)
	assert.Equal(t, "P04637", acc)

	acc, ok = UniProtAccession("tr||EMPTY")
	assert.True(t, ok)
	assert.Empty(t, acc)

	_, ok = UniProtAccession("WP_012345.1")
	assert.False(t, ok)
}

func TestNormaliseProtein(t *testing.T) {
	assert.Equal(t, "MKVL", NormaliseProtein("m-k..vL"))
}

func TestReverseComplement(t *testing.T) {
	assert.Equal(t, "TTACGCAT", ReverseComplement("ATGCGTAA"))
	assert.Equal(t, "nNac", ReverseComplement("gtNn"))
}
