package domain

// Feature types and qualifier keys used when matching CDS features.
const (
	FeatureCDS = "CDS"

	QualifierLocusTag   = "locus_tag"
	QualifierProteinID  = "protein_id"
	QualifierGene       = "gene"
	QualifierTranslTbl  = "transl_table"
	QualifierCodonStart = "codon_start"
	QualifierProduct    = "product"
)

// Strand is the orientation of a feature location.
type Strand int

const (
	StrandForward Strand = 1
	StrandReverse Strand = -1
)

// Span is a half-open, 0-based interval [Start, End) on a record sequence.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bases covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// Location is a possibly-joined feature location.
// Spans are listed in the order given in the record; for reverse strand
// features the extracted sequence is the reverse complement of their concatenation.
type Location struct {
	Spans  []Span
	Strand Strand
}

// Start returns the smallest coordinate covered by the location.
func (l Location) Start() int {
	if len(l.Spans) == 0 {
		return 0
	}
	lo := l.Spans[0].Start
	for _, s := range l.Spans[1:] {
		if s.Start < lo {
			lo = s.Start
		}
	}
	return lo
}

// End returns the largest (exclusive) coordinate covered by the location.
func (l Location) End() int {
	hi := 0
	for _, s := range l.Spans {
		if s.End > hi {
			hi = s.End
		}
	}
	return hi
}

// Feature is an annotated region of a GenBank record.
type Feature struct {
	Type       string
	Location   Location
	Qualifiers map[string][]string
}

// Qualifier returns the first value of a qualifier.
func (f *Feature) Qualifier(key string) (string, bool) {
	vals := f.Qualifiers[key]
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// HasQualifierValue reports whether any value of key equals value.
func (f *Feature) HasQualifierValue(key, value string) bool {
	for _, v := range f.Qualifiers[key] {
		if v == value {
			return true
		}
	}
	return false
}

// GenBankRecord is a parsed full nucleotide record.
type GenBankRecord struct {
	// ID is the versioned accession (VERSION line, falling back to LOCUS name).
	ID          string
	Name        string
	Description string
	Organism    string
	Taxonomy    []string
	Date        string
	Features    []Feature
	Seq         string
}

// CDSFeatures returns all coding-sequence features in record order.
func (r *GenBankRecord) CDSFeatures() []*Feature {
	var out []*Feature
	for i := range r.Features {
		if r.Features[i].Type == FeatureCDS {
			out = append(out, &r.Features[i])
		}
	}
	return out
}
