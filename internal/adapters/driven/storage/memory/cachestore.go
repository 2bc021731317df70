package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/ncfp/internal/core/domain"
	"github.com/custodia-labs/ncfp/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

type link struct {
	accession string
	uid       string
}

// CacheStore is an in-memory implementation of driven.CacheStore.
// It mirrors the SQLite store's semantics and is used by tests and dry runs.
type CacheStore struct {
	mu sync.RWMutex

	seqs     map[string]domain.SeqData
	seqOrder []string

	uids     map[string]string // uid -> accession ("" while unresolved)
	uidOrder []string

	links   []link
	linked  map[link]bool
	headers map[string]domain.Header
	records map[string]string
}

// NewCacheStore creates a new empty in-memory cache.
func NewCacheStore() *CacheStore {
	s := &CacheStore{}
	s.reset()
	return s
}

func (s *CacheStore) reset() {
	s.seqs = make(map[string]domain.SeqData)
	s.seqOrder = nil
	s.uids = make(map[string]string)
	s.uidOrder = nil
	s.links = nil
	s.linked = make(map[link]bool)
	s.headers = make(map[string]domain.Header)
	s.records = make(map[string]string)
}

// Initialize discards all contents.
func (s *CacheStore) Initialize(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

// AddInputSequence registers an input sequence.
func (s *CacheStore) AddInputSequence(_ context.Context, accession, aaQuery, ntQuery string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seqs[accession]; ok {
		return domain.NewStoreError("add input sequence", fmt.Errorf("%w: %s", domain.ErrAlreadyExists, accession))
	}
	s.seqs[accession] = domain.SeqData{Accession: accession, AAQuery: aaQuery, NtQuery: ntQuery}
	s.seqOrder = append(s.seqOrder, accession)
	return nil
}

// HasSequence reports whether the input is registered.
func (s *CacheStore) HasSequence(_ context.Context, accession string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seqs[accession]
	return ok, nil
}

// HasQuery reports whether the input has any query term.
func (s *CacheStore) HasQuery(_ context.Context, accession string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sd := s.seqs[accession]
	return sd.AAQuery != "" || sd.NtQuery != "", nil
}

// HasNtQuery reports whether the input has a nucleotide query term.
func (s *CacheStore) HasNtQuery(_ context.Context, accession string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seqs[accession].NtQuery != "", nil
}

// GetNtQuery returns the nucleotide query term.
func (s *CacheStore) GetNtQuery(_ context.Context, accession string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nt := s.seqs[accession].NtQuery
	if nt == "" {
		return "", domain.NewStoreError("get nt query", domain.ErrNotFound)
	}
	return nt, nil
}

// GetAAQuery returns the protein query term.
func (s *CacheStore) GetAAQuery(_ context.Context, accession string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	aa := s.seqs[accession].AAQuery
	if aa == "" {
		return "", domain.NewStoreError("get aa query", domain.ErrNotFound)
	}
	return aa, nil
}

// UpdateNtQuery fills in the nucleotide query term.
func (s *CacheStore) UpdateNtQuery(_ context.Context, accession, ntQuery string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sd, ok := s.seqs[accession]
	if !ok {
		return domain.NewStoreError("update nt query", domain.ErrNotFound)
	}
	sd.NtQuery = ntQuery
	s.seqs[accession] = sd
	return nil
}

// ListInputSequences returns all inputs in insertion order.
func (s *CacheStore) ListInputSequences(_ context.Context) ([]domain.SeqData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SeqData, 0, len(s.seqOrder))
	for _, acc := range s.seqOrder {
		out = append(out, s.seqs[acc])
	}
	return out, nil
}

// HasRemoteID reports whether at least one UID is linked to the input.
func (s *CacheStore) HasRemoteID(_ context.Context, accession string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.links {
		if l.accession == accession {
			return true, nil
		}
	}
	return false, nil
}

// AddRemoteIDs links UIDs to an input.
func (s *CacheStore) AddRemoteIDs(_ context.Context, accession string, uids []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seqs[accession]; !ok {
		return nil, domain.NewStoreError("add remote ids", fmt.Errorf("%w: sequence %s", domain.ErrNotFound, accession))
	}

	var added []string
	for _, uid := range uids {
		if _, ok := s.uids[uid]; !ok {
			s.uids[uid] = ""
			s.uidOrder = append(s.uidOrder, uid)
		}
		l := link{accession: accession, uid: uid}
		if s.linked[l] {
			continue
		}
		s.linked[l] = true
		s.links = append(s.links, l)
		added = append(added, uid)
	}
	return added, nil
}

// ListAllRemoteIDs returns every known UID.
func (s *CacheStore) ListAllRemoteIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.uidOrder...), nil
}

// ListRemoteIDsMissingAccession returns UIDs with no resolved accession.
func (s *CacheStore) ListRemoteIDsMissingAccession(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, uid := range s.uidOrder {
		if s.uids[uid] == "" {
			out = append(out, uid)
		}
	}
	return out, nil
}

// ListAccessionsMissingHeader returns resolved UIDs whose accession has no header.
func (s *CacheStore) ListAccessionsMissingHeader(_ context.Context) ([]domain.RemoteID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.RemoteID
	for _, uid := range s.uidOrder {
		acc := s.uids[uid]
		if acc == "" {
			continue
		}
		if _, ok := s.headers[acc]; !ok {
			out = append(out, domain.RemoteID{UID: uid, Accession: acc})
		}
	}
	return out, nil
}

// UpdateRemoteIDAccession sets the accession for a known UID.
func (s *CacheStore) UpdateRemoteIDAccession(_ context.Context, uid, accession string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.uids[uid]; !ok {
		return domain.NewStoreError("update remote id accession", domain.ErrNotFound)
	}
	s.uids[uid] = accession
	return nil
}

// AddHeader stores header metadata.
func (s *CacheStore) AddHeader(_ context.Context, header domain.Header) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.headers[header.Accession]; ok {
		return domain.NewStoreError("add header", fmt.Errorf("%w: %s", domain.ErrAlreadyExists, header.Accession))
	}
	s.headers[header.Accession] = header
	return nil
}

// GetHeader returns the header for an accession.
func (s *CacheStore) GetHeader(_ context.Context, accession string) (*domain.Header, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.headers[accession]
	if !ok {
		return nil, domain.NewStoreError("get header", domain.ErrNotFound)
	}
	return &h, nil
}

// ListCandidates returns the UIDs linked to an input in link order.
func (s *CacheStore) ListCandidates(_ context.Context, accession string) ([]domain.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Candidate
	for _, l := range s.links {
		if l.accession != accession {
			continue
		}
		c := domain.Candidate{UID: l.uid, Accession: s.uids[l.uid]}
		if h, ok := s.headers[c.Accession]; ok && c.Accession != "" {
			c.Length = h.Length
			c.HasHeader = true
		}
		out = append(out, c)
	}
	return out, nil
}

// AddRecord stores a full record.
func (s *CacheStore) AddRecord(_ context.Context, accession, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[accession]; ok {
		return domain.NewStoreError("add record", fmt.Errorf("%w: %s", domain.ErrAlreadyExists, accession))
	}
	s.records[accession] = text
	return nil
}

// HasRecord reports whether a full record is stored.
func (s *CacheStore) HasRecord(_ context.Context, accession string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[accession]
	return ok, nil
}

// ListSequencesMissingRecord returns linked inputs with no stored record.
func (s *CacheStore) ListSequencesMissingRecord(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.missingRecordLocked(), nil
}

func (s *CacheStore) missingRecordLocked() []string {
	hasLink := make(map[string]bool)
	hasRecord := make(map[string]bool)
	for _, l := range s.links {
		hasLink[l.accession] = true
		if acc := s.uids[l.uid]; acc != "" {
			if _, ok := s.records[acc]; ok {
				hasRecord[l.accession] = true
			}
		}
	}
	var out []string
	for _, acc := range s.seqOrder {
		if hasLink[acc] && !hasRecord[acc] {
			out = append(out, acc)
		}
	}
	return out
}

// FindRecordsForAccession returns every stored record linked to an input.
func (s *CacheStore) FindRecordsForAccession(_ context.Context, accession string) ([]domain.StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var out []domain.StoredRecord
	for _, l := range s.links {
		if l.accession != accession {
			continue
		}
		acc := s.uids[l.uid]
		text, ok := s.records[acc]
		if acc == "" || !ok || seen[acc] {
			continue
		}
		seen[acc] = true
		out = append(out, domain.StoredRecord{Accession: acc, Text: text})
	}
	return out, nil
}

// Stats summarises contents and outstanding work.
func (s *CacheStore) Stats(_ context.Context) (*domain.CacheStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := domain.CacheStats{
		Sequences: len(s.seqs),
		RemoteIDs: len(s.uids),
		Headers:   len(s.headers),
		Records:   len(s.records),
	}
	for _, sd := range s.seqs {
		if sd.NtQuery != "" {
			st.SequencesWithNtQuery++
		}
	}
	for _, acc := range s.uids {
		if acc == "" {
			st.RemoteIDsNoAccession++
		} else if _, ok := s.headers[acc]; !ok {
			st.AccessionsNoHeader++
		}
	}
	hasLink := make(map[string]bool)
	for _, l := range s.links {
		hasLink[l.accession] = true
	}
	for acc := range s.seqs {
		if !hasLink[acc] {
			st.SequencesWithoutLinks++
		}
	}
	st.SequencesNoRecord = len(s.missingRecordLocked())
	return &st, nil
}

// Close is a no-op.
func (s *CacheStore) Close() error {
	return nil
}
