// Package entrez implements driven.RemoteLookup against the NCBI
// E-utilities web service.
//
// Requests are rate limited to NCBI's published ceilings (3 per second,
// or 10 with an API key) and carry the tool, email and api_key
// parameters NCBI asks clients to send. Long identifier lists are sent
// by POST.
package entrez
