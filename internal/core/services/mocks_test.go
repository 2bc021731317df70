package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/ncfp/internal/core/domain"
	"github.com/custodia-labs/ncfp/internal/core/ports/driven"
)

var (
	errTransient = errors.New("service unavailable")
	errPermanent = errors.New("request rejected")
)

// --- Mock implementations ---

// mockRemote implements driven.RemoteLookup from fixed tables and records calls.
type mockRemote struct {
	mu sync.Mutex

	mapped    map[string]string
	searched  map[string][]string
	summaries map[string]domain.Summary
	records   map[string]string // versioned accession -> text

	// Errors returned by every call to the given method
	mapErr, searchErr, summaryErr, recordErr error

	mapCalls, searchCalls, summaryCalls, recordCalls [][]string
}

var _ driven.RemoteLookup = (*mockRemote)(nil)

func newMockRemote() *mockRemote {
	return &mockRemote{
		mapped:    make(map[string]string),
		searched:  make(map[string][]string),
		summaries: make(map[string]domain.Summary),
		records:   make(map[string]string),
	}
}

// addSummary registers a UID with its accession and length.
func (m *mockRemote) addSummary(uid, accession string, length int) {
	m.summaries[uid] = domain.Summary{UID: uid, Accession: accession, Length: length, Organism: "Escherichia coli"}
}

func (m *mockRemote) MapQueries(_ context.Context, queries []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mapCalls = append(m.mapCalls, queries)
	if m.mapErr != nil {
		return nil, m.mapErr
	}
	out := make(map[string]string)
	for _, q := range queries {
		if v, ok := m.mapped[q]; ok {
			out[q] = v
		}
	}
	return out, nil
}

func (m *mockRemote) SearchIDs(_ context.Context, queries []string) (map[string][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls = append(m.searchCalls, queries)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	out := make(map[string][]string)
	for _, q := range queries {
		if v, ok := m.searched[q]; ok {
			out[q] = v
		}
	}
	return out, nil
}

func (m *mockRemote) FetchSummaries(_ context.Context, uids []string) (map[string]domain.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaryCalls = append(m.summaryCalls, uids)
	if m.summaryErr != nil {
		return nil, m.summaryErr
	}
	out := make(map[string]domain.Summary)
	for _, uid := range uids {
		if v, ok := m.summaries[uid]; ok {
			out[uid] = v
		}
	}
	return out, nil
}

func (m *mockRemote) FetchRecords(_ context.Context, uids []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCalls = append(m.recordCalls, uids)
	if m.recordErr != nil {
		return nil, m.recordErr
	}
	out := make(map[string]string)
	for _, uid := range uids {
		acc := m.summaries[uid].Accession
		if v, ok := m.records[acc]; ok {
			out[acc] = v
		}
	}
	return out, nil
}

func (m *mockRemote) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.mapCalls) + len(m.searchCalls) + len(m.summaryCalls) + len(m.recordCalls)
}

// mockParser implements driven.RecordParser by looking up prepared records by text.
type mockParser struct {
	records map[string]*domain.GenBankRecord
}

var _ driven.RecordParser = (*mockParser)(nil)

func (p *mockParser) ParseRecord(text string) (*domain.GenBankRecord, error) {
	rec, ok := p.records[text]
	if !ok {
		return nil, errors.New("unparseable record")
	}
	return rec, nil
}

// recordingObserver implements driven.RunObserver.
type recordingObserver struct {
	mu       sync.Mutex
	stages   []domain.StageReport
	outcomes []domain.MatchReason
}

func (o *recordingObserver) StageCompleted(r domain.StageReport) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages = append(o.stages, r)
}

func (o *recordingObserver) ExtractionOutcome(reason domain.MatchReason) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, reason)
}

// recordingProgress implements driven.ProgressReporter.
type recordingProgress struct {
	mu       sync.Mutex
	started  []string
	advanced int
	done     int
}

func (p *recordingProgress) Start(task string, _ int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = append(p.started, task)
}

func (p *recordingProgress) Advance(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advanced += n
}

func (p *recordingProgress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
}
