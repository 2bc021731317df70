package seqio

// sampleRecord has one forward CDS and one joined reverse CDS.
// The sequence is 60 bp.
const sampleRecord = `LOCUS       AB000001                  60 bp    DNA     linear   BCT 21-JUN-2019
DEFINITION  Escherichia coli test locus, complete sequence.
ACCESSION   AB000001
VERSION     AB000001.1
KEYWORDS    .
SOURCE      Escherichia coli
  ORGANISM  Escherichia coli
            Bacteria; Proteobacteria; Gammaproteobacteria; Enterobacterales;
            Enterobacteriaceae; Escherichia.
REFERENCE   1  (bases 1 to 60)
  AUTHORS   Someone,A.
  TITLE     Direct Submission
FEATURES             Location/Qualifiers
     source          1..60
                     /organism="Escherichia coli"
                     /mol_type="genomic DNA"
     gene            1..15
                     /gene="abcA"
     CDS             1..15
                     /gene="abcA"
                     /locus_tag="b0001"
                     /codon_start=1
                     /transl_table=11
                     /product="test protein"
                     /protein_id="AAA00001.1"
                     /translation="MKKF"
     CDS             join(complement(31..36),complement(40..45))
                     /locus_tag="b0002"
ORIGIN      
        1 atgaaaaaat tttaagggcc cccggggaaa ttttaaaccc tttggggccc aaattttggg
//
`
