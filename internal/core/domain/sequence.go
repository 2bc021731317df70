package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// SequenceRecord is a single FASTA-style sequence.
// Input protein records are immutable once loaded.
type SequenceRecord struct {
	// ID is the first whitespace-delimited token of the header.
	ID string

	// Description is the full header text, including the ID.
	Description string

	// Seq holds the residues.
	Seq string
}

// DomainRange is a residue sub-range encoded as an "/start-end" id suffix.
// Coordinates are 1-based and inclusive, in input residue space.
type DomainRange struct {
	Start int
	End   int
}

// IsZero reports whether no range is set.
func (r DomainRange) IsZero() bool {
	return r.Start == 0 && r.End == 0
}

// NucleotideWindow returns the 1-based inclusive codon window (start*3-2, end*3)
// underlying the residue range.
func (r DomainRange) NucleotideWindow() (int, int) {
	return r.Start*3 - 2, r.End * 3
}

var (
	reDomainSuffix = regexp.MustCompile(`/(\d+)-(\d+)$`)
	reGeneName     = regexp.MustCompile(`GN=(\S+)`)
	reOrganism     = regexp.MustCompile(`OS=(.+?)(?:\s+[A-Z]{2}=|$)`)
	reUniProtID    = regexp.MustCompile(`^(?:sp|tr)\|([^|]*)\|`)
)

// StripDomainRange removes a trailing "/start-end" suffix from an accession.
func StripDomainRange(id string) string {
	return reDomainSuffix.ReplaceAllString(id, "")
}

// ParseDomainRange extracts a trailing "/start-end" suffix from an identifier.
func ParseDomainRange(id string) (DomainRange, bool) {
	m := reDomainSuffix.FindStringSubmatch(id)
	if m == nil {
		return DomainRange{}, false
	}
	start, err := strconv.Atoi(m[1])
	if err != nil {
		return DomainRange{}, false
	}
	end, err := strconv.Atoi(m[2])
	if err != nil {
		return DomainRange{}, false
	}
	if start < 1 || end < start {
		return DomainRange{}, false
	}
	return DomainRange{Start: start, End: end}, true
}

// GeneName returns the UniProt "GN=" gene name embedded in a description.
func GeneName(description string) (string, bool) {
	m := reGeneName.FindStringSubmatch(description)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// OrganismName returns the UniProt "OS=" organism embedded in a description.
func OrganismName(description string) (string, bool) {
	m := reOrganism.FindStringSubmatch(description)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	return name, name != ""
}

// UniProtAccession returns the accession field of a "sp|ACC|NAME" style id.
func UniProtAccession(id string) (string, bool) {
	m := reUniProtID.FindStringSubmatch(id)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// NormaliseProtein removes alignment gap characters and upper-cases residues.
func NormaliseProtein(seq string) string {
	var b strings.Builder
	b.Grow(len(seq))
	for i := 0; i < len(seq); i++ {
		c := seq[i]
		if c == '-' || c == '.' {
			continue
		}
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}
