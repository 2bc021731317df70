// Package domain defines the entities shared by every ncfp layer:
//
//   - SequenceRecord: An input protein or output nucleotide sequence
//   - SeqData, RemoteID, Header: Rows of the resumable retrieval cache
//   - GenBankRecord, Feature: A parsed full nucleotide record
//   - MatchResult: The outcome of locating a CDS for one input
//   - ReverseComplement: IUPAC strand flipping
//
// Domain imports only the standard library. All other packages depend on
// domain, never the reverse.
package domain
