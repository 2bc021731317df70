package seqio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/custodia-labs/ncfp/internal/core/domain"
	"github.com/custodia-labs/ncfp/internal/core/ports/driven"
)

var (
	_ driven.SequenceReader = (*FASTA)(nil)
	_ driven.SequenceWriter = (*FASTA)(nil)
)

// DefaultLineWidth is the residues-per-line used when writing.
const DefaultLineWidth = 60

// ErrMalformedFASTA indicates input that is not FASTA.
var ErrMalformedFASTA = errors.New("malformed FASTA")

// FASTA reads and writes FASTA files through biogo's fasta codec.
type FASTA struct {
	// LineWidth wraps sequence lines when writing; 0 uses DefaultLineWidth
	// and a negative value disables wrapping.
	LineWidth int
}

// NewFASTA creates a FASTA codec with the default line width.
func NewFASTA() *FASTA {
	return &FASTA{LineWidth: DefaultLineWidth}
}

// ReadSequences parses every record in r.
// Blank lines are ignored; sequence data before the first header is an error.
func (f *FASTA) ReadSequences(r io.Reader) ([]domain.SequenceRecord, error) {
	br := bufio.NewReader(r)
	if err := expectHeader(br); err != nil {
		return nil, err
	}

	var records []domain.SequenceRecord
	reader := fasta.NewReader(br, linear.NewSeq("", nil, alphabet.Protein))
	for {
		s, err := reader.Read()
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFASTA, err)
		}
		if ls, ok := s.(*linear.Seq); ok && ls != nil {
			rec, recErr := toRecord(ls)
			if recErr != nil {
				return nil, recErr
			}
			records = append(records, rec)
		}
		if err != nil {
			break
		}
	}
	return records, nil
}

// expectHeader checks that the first non-blank byte opens a header.
func expectHeader(br *bufio.Reader) error {
	for {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading FASTA: %w", err)
		}
		if unicode.IsSpace(rune(b)) {
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return fmt.Errorf("reading FASTA: %w", err)
		}
		if b != '>' {
			return fmt.Errorf("%w: sequence before first header", ErrMalformedFASTA)
		}
		return nil
	}
}

func toRecord(s *linear.Seq) (domain.SequenceRecord, error) {
	headerLine := strings.TrimSpace(s.Name() + " " + s.Description())
	fields := strings.Fields(headerLine)
	if len(fields) == 0 {
		return domain.SequenceRecord{}, fmt.Errorf("%w: empty header", ErrMalformedFASTA)
	}

	var b strings.Builder
	b.Grow(len(s.Seq))
	for _, l := range s.Seq {
		if !unicode.IsSpace(rune(l)) {
			b.WriteByte(byte(l))
		}
	}

	return domain.SequenceRecord{ID: fields[0], Description: headerLine, Seq: b.String()}, nil
}

// WriteSequences writes records to w.
// The header is the description when it already starts with the ID,
// otherwise "ID description".
func (f *FASTA) WriteSequences(w io.Writer, records []domain.SequenceRecord) error {
	bw := bufio.NewWriter(w)

	for _, rec := range records {
		width := f.LineWidth
		switch {
		case width == 0:
			width = DefaultLineWidth
		case width < 0:
			width = max(len(rec.Seq), 1)
		}

		id, desc, _ := strings.Cut(header(rec), " ")
		letters := make([]alphabet.Letter, len(rec.Seq))
		for i := 0; i < len(rec.Seq); i++ {
			letters[i] = alphabet.Letter(rec.Seq[i])
		}
		s := linear.NewSeq(id, letters, alphabet.Protein)
		s.Desc = desc

		if _, err := fasta.NewWriter(bw, width).Write(s); err != nil {
			return fmt.Errorf("writing FASTA: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing FASTA: %w", err)
	}
	return nil
}

func header(rec domain.SequenceRecord) string {
	desc := strings.TrimSpace(rec.Description)
	switch {
	case desc == "":
		return rec.ID
	case desc == rec.ID || strings.HasPrefix(desc, rec.ID+" "):
		return desc
	default:
		return rec.ID + " " + desc
	}
}
