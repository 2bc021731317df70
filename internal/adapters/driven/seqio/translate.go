package seqio

import (
	"fmt"
	"strings"
	"sync"

	"github.com/TimothyStiles/poly/synthesis/codon"

	"github.com/custodia-labs/ncfp/internal/core/domain"
	"github.com/custodia-labs/ncfp/internal/core/ports/driven"
)

var _ driven.Translator = (*CodonTranslator)(nil)

// CodonTranslator translates coding sequences with the NCBI genetic codes
// bundled in poly. Codon maps are built once per table id.
type CodonTranslator struct {
	mu     sync.Mutex
	tables map[int]map[string]string
}

// NewCodonTranslator returns a translator with an empty table cache.
func NewCodonTranslator() *CodonTranslator {
	return &CodonTranslator{tables: make(map[int]map[string]string)}
}

// Translate reads nt in frame from the first base. RNA input is accepted,
// a trailing partial codon is dropped and codons with ambiguous bases
// become 'X'. Stops are kept as '*'; the first codon is translated like
// any other.
func (t *CodonTranslator) Translate(nt string, id int) (string, error) {
	table, err := t.table(id)
	if err != nil {
		return "", err
	}

	nt = strings.ReplaceAll(strings.ToUpper(nt), "U", "T")

	var b strings.Builder
	b.Grow(len(nt) / 3)
	for i := 0; i+3 <= len(nt); i += 3 {
		aa, ok := table[nt[i:i+3]]
		if !ok || aa == "" {
			b.WriteByte('X')
			continue
		}
		b.WriteString(aa)
	}
	return b.String(), nil
}

func (t *CodonTranslator) table(id int) (map[string]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if m, ok := t.tables[id]; ok {
		return m, nil
	}
	ct := codon.GetCodonTable(id)
	if ct == nil {
		return nil, fmt.Errorf("%w: unknown genetic code %d", domain.ErrInvalidInput, id)
	}
	m := ct.GenerateTranslationTable()
	if len(m) == 0 {
		return nil, fmt.Errorf("%w: unknown genetic code %d", domain.ErrInvalidInput, id)
	}
	t.tables[id] = m
	return m, nil
}
