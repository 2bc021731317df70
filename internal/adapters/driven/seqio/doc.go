// Package seqio reads and writes biological sequence formats.
//
// FASTA implements driven.SequenceReader and driven.SequenceWriter on
// biogo's fasta codec. GenBankParser implements driven.RecordParser on
// poly's genbank reader, flattening joined and complemented locations.
// CodonTranslator implements driven.Translator with poly's NCBI codon
// tables.
package seqio
