package domain

// SeqData is one input sequence row of the retrieval cache.
type SeqData struct {
	// Accession is the input sequence identifier (primary key).
	Accession string

	// AAQuery is the term used for protein or identifier-mapping searches.
	AAQuery string

	// NtQuery is the term used for nucleotide searches. Empty until resolved.
	NtQuery string
}

// RemoteID is a remote nucleotide identifier and its resolved accession.
type RemoteID struct {
	UID string

	// Accession is empty while the UID is pending accession resolution.
	Accession string
}

// Header holds summary metadata for a nucleotide accession.
type Header struct {
	Accession string
	Length    int
	Organism  string
	Taxonomy  string
	Date      string
}

// Summary is the remote summary for one UID.
type Summary struct {
	UID       string
	Accession string
	Length    int
	Organism  string
	Taxonomy  string
	Date      string
}

// Header converts a summary into a cache header row.
func (s Summary) Header() Header {
	return Header{
		Accession: s.Accession,
		Length:    s.Length,
		Organism:  s.Organism,
		Taxonomy:  s.Taxonomy,
		Date:      s.Date,
	}
}

// Candidate is a nucleotide record linked to an input sequence, with the
// header length when known. Candidates are listed in link order.
type Candidate struct {
	UID       string
	Accession string
	Length    int
	HasHeader bool
}

// StoredRecord is the raw text of a full nucleotide record held in the cache.
type StoredRecord struct {
	Accession string
	Text      string
}

// CacheStats summarises cache contents and outstanding work queues.
type CacheStats struct {
	Sequences             int
	SequencesWithNtQuery  int
	RemoteIDs             int
	RemoteIDsNoAccession  int
	Headers               int
	AccessionsNoHeader    int
	Records               int
	SequencesNoRecord     int
	SequencesWithoutLinks int
}

// ShortestCandidate selects the candidate with the smallest header length.
// Candidates without a header are ignored; on exact ties the earliest wins.
func ShortestCandidate(candidates []Candidate) (Candidate, bool) {
	var best Candidate
	found := false
	for _, c := range candidates {
		if !c.HasHeader || c.Accession == "" {
			continue
		}
		if !found || c.Length < best.Length {
			best = c
			found = true
		}
	}
	return best, found
}
