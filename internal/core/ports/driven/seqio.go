package driven

import (
	"io"

	"github.com/custodia-labs/ncfp/internal/core/domain"
)

// SequenceReader parses a stream of sequence records.
type SequenceReader interface {
	// ReadSequences returns every record in r.
	ReadSequences(r io.Reader) ([]domain.SequenceRecord, error)
}

// SequenceWriter writes sequence records.
type SequenceWriter interface {
	// WriteSequences writes records to w in order.
	WriteSequences(w io.Writer, records []domain.SequenceRecord) error
}

// RecordParser parses the raw text of a full nucleotide record.
type RecordParser interface {
	// ParseRecord returns the structured record, with features and sequence.
	ParseRecord(text string) (*domain.GenBankRecord, error)
}

// Translator translates nucleotide sequences with NCBI genetic codes.
type Translator interface {
	// Translate renders nt codon by codon under translation table id.
	// Stop codons become '*', codons with ambiguous bases 'X', and a
	// trailing partial codon is dropped. Unknown tables are an error.
	Translate(nt string, id int) (string, error)
}
