package domain

// DefaultGeneticCode is the NCBI standard translation table, used for
// features without a transl_table qualifier.
const DefaultGeneticCode = 1

var complements = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = 'N'
	}
	pairs := []string{"AT", "CG", "GC", "TA", "UA", "RY", "YR", "SS", "WW", "KM", "MK", "BV", "VB", "DH", "HD", "NN"}
	for _, p := range pairs {
		t[p[0]] = p[1]
		t[p[0]+'a'-'A'] = p[1] + 'a' - 'A'
	}
	return t
}()

// ReverseComplement returns the reverse complement of an IUPAC nucleotide sequence.
func ReverseComplement(nt string) string {
	out := make([]byte, len(nt))
	for i := 0; i < len(nt); i++ {
		out[len(nt)-1-i] = complements[nt[i]]
	}
	return string(out)
}
