package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/ncfp/internal/core/domain"
	"github.com/custodia-labs/ncfp/internal/core/ports/driven"
	"github.com/custodia-labs/ncfp/internal/core/ports/driving"
	"github.com/custodia-labs/ncfp/internal/logger"
)

// Ensure RetrievalPipeline implements the interface.
var _ driving.RetrievalPipeline = (*RetrievalPipeline)(nil)

// RetrievalPipeline moves inputs through the remote lookup stages.
// Stages take their work from cache queries, never from each other, so
// any stage can be re-run after an interruption.
type RetrievalPipeline struct {
	cache    driven.CacheStore
	remote   driven.RemoteLookup
	opts     domain.PipelineOptions
	policy   RetryPolicy
	log      *logger.Logger
	progress driven.ProgressReporter
	observer driven.RunObserver

	// Serialises cache writes when batches run concurrently
	writeMu sync.Mutex
}

// NewRetrievalPipeline creates a pipeline over the given cache and remote service.
func NewRetrievalPipeline(
	cache driven.CacheStore,
	remote driven.RemoteLookup,
	opts domain.PipelineOptions,
	log *logger.Logger,
) *RetrievalPipeline {
	if opts.BatchSize < 1 {
		opts.BatchSize = domain.DefaultAppSettings().Pipeline.BatchSize
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RetrievalPipeline{
		cache:    cache,
		remote:   remote,
		opts:     opts,
		policy:   NewRetryPolicy(opts),
		log:      log,
		progress: nopProgress{},
		observer: nopObserver{},
	}
}

// SetProgress sets the progress reporter. Nil disables reporting.
func (p *RetrievalPipeline) SetProgress(pr driven.ProgressReporter) {
	if pr == nil {
		pr = nopProgress{}
	}
	p.progress = pr
}

// SetObserver sets the run observer. Nil disables observation.
func (p *RetrievalPipeline) SetObserver(o driven.RunObserver) {
	if o == nil {
		o = nopObserver{}
	}
	p.observer = o
}

// SetRetryPolicy replaces the policy derived from the pipeline options.
func (p *RetrievalPipeline) SetRetryPolicy(policy RetryPolicy) {
	p.policy = policy
}

// RunAll runs every stage in order, stopping at the first fatal error.
func (p *RetrievalPipeline) RunAll(ctx context.Context) ([]domain.StageReport, error) {
	stages := []func(context.Context) (domain.StageReport, error){
		p.ResolveQueries,
		p.ResolveRemoteIDs,
		p.ResolveAccessions,
		p.FetchHeaders,
		p.FetchRecords,
	}

	reports := make([]domain.StageReport, 0, len(stages))
	for _, run := range stages {
		report, err := run(ctx)
		reports = append(reports, report)
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

// ResolveQueries maps the protein query of each input lacking a
// nucleotide query to a nucleotide query term.
func (p *RetrievalPipeline) ResolveQueries(ctx context.Context) (domain.StageReport, error) {
	seqs, err := p.cache.ListInputSequences(ctx)
	if err != nil {
		return domain.StageReport{Stage: domain.StageQueries}, err
	}

	aaQuery := make(map[string]string)
	var pending []string
	skipped := 0
	for _, s := range seqs {
		if s.NtQuery != "" || s.AAQuery == "" {
			skipped++
			continue
		}
		aaQuery[s.Accession] = s.AAQuery
		pending = append(pending, s.Accession)
	}

	job := batchJob[map[string]string]{
		fetch: func(ctx context.Context, batch []string) (map[string]string, error) {
			return p.remote.MapQueries(ctx, uniqueValues(batch, aaQuery))
		},
		apply: func(ctx context.Context, batch []string, mapped map[string]string) (int, int, error) {
			added, failed := 0, 0
			for _, acc := range batch {
				nt, ok := mapped[aaQuery[acc]]
				if !ok || nt == "" {
					p.log.Debug("no nucleotide query for %s (%s)", acc, aaQuery[acc])
					failed++
					continue
				}
				if err := p.cache.UpdateNtQuery(ctx, acc, nt); err != nil {
					return added, failed, err
				}
				added++
			}
			return added, failed, nil
		},
	}

	return runStage(ctx, p, domain.StageQueries, pending, stageCounts{skipped: skipped}, job)
}

// ResolveRemoteIDs searches the nucleotide database for each input with a
// query term and no linked UID.
func (p *RetrievalPipeline) ResolveRemoteIDs(ctx context.Context) (domain.StageReport, error) {
	seqs, err := p.cache.ListInputSequences(ctx)
	if err != nil {
		return domain.StageReport{Stage: domain.StageRemoteIDs}, err
	}

	ntQuery := make(map[string]string)
	var pending []string
	skipped := 0
	for _, s := range seqs {
		if s.NtQuery == "" {
			continue
		}
		linked, err := p.cache.HasRemoteID(ctx, s.Accession)
		if err != nil {
			return domain.StageReport{Stage: domain.StageRemoteIDs}, err
		}
		if linked {
			skipped++
			continue
		}
		ntQuery[s.Accession] = s.NtQuery
		pending = append(pending, s.Accession)
	}

	job := batchJob[map[string][]string]{
		fetch: func(ctx context.Context, batch []string) (map[string][]string, error) {
			return p.remote.SearchIDs(ctx, uniqueValues(batch, ntQuery))
		},
		apply: func(ctx context.Context, batch []string, found map[string][]string) (int, int, error) {
			added, failed := 0, 0
			for _, acc := range batch {
				uids := found[ntQuery[acc]]
				if len(uids) == 0 {
					p.log.Debug("no nucleotide records for %s (%s)", acc, ntQuery[acc])
					failed++
					continue
				}
				linked, err := p.cache.AddRemoteIDs(ctx, acc, uids)
				if err != nil {
					return added, failed, err
				}
				added += len(linked)
			}
			return added, failed, nil
		},
	}

	return runStage(ctx, p, domain.StageRemoteIDs, pending, stageCounts{skipped: skipped}, job)
}

// ResolveAccessions learns the versioned accession of each unresolved UID.
func (p *RetrievalPipeline) ResolveAccessions(ctx context.Context) (domain.StageReport, error) {
	pending, err := p.cache.ListRemoteIDsMissingAccession(ctx)
	if err != nil {
		return domain.StageReport{Stage: domain.StageAccessions}, err
	}

	job := batchJob[map[string]domain.Summary]{
		fetch: p.remote.FetchSummaries,
		apply: func(ctx context.Context, batch []string, summaries map[string]domain.Summary) (int, int, error) {
			added, failed := 0, 0
			for _, uid := range batch {
				s, ok := summaries[uid]
				if !ok || s.Accession == "" {
					p.log.Debug("no summary for uid %s", uid)
					failed++
					continue
				}
				if err := p.cache.UpdateRemoteIDAccession(ctx, uid, s.Accession); err != nil {
					return added, failed, err
				}
				added++
			}
			return added, failed, nil
		},
	}

	return runStage(ctx, p, domain.StageAccessions, pending, stageCounts{}, job)
}

// FetchHeaders stores summary metadata for each resolved accession lacking it.
func (p *RetrievalPipeline) FetchHeaders(ctx context.Context) (domain.StageReport, error) {
	missing, err := p.cache.ListAccessionsMissingHeader(ctx)
	if err != nil {
		return domain.StageReport{Stage: domain.StageHeaders}, err
	}

	// One UID per accession is enough
	accession := make(map[string]string)
	seen := make(map[string]bool)
	var pending []string
	skipped := 0
	for _, id := range missing {
		if seen[id.Accession] {
			skipped++
			continue
		}
		seen[id.Accession] = true
		accession[id.UID] = id.Accession
		pending = append(pending, id.UID)
	}

	job := batchJob[map[string]domain.Summary]{
		fetch: p.remote.FetchSummaries,
		apply: func(ctx context.Context, batch []string, summaries map[string]domain.Summary) (int, int, error) {
			added, failed := 0, 0
			for _, uid := range batch {
				s, ok := summaries[uid]
				if !ok {
					p.log.Debug("no summary for %s (uid %s)", accession[uid], uid)
					failed++
					continue
				}
				header := s.Header()
				header.Accession = accession[uid]
				if err := p.cache.AddHeader(ctx, header); err != nil {
					if errors.Is(err, domain.ErrAlreadyExists) {
						continue
					}
					return added, failed, err
				}
				added++
			}
			return added, failed, nil
		},
	}

	return runStage(ctx, p, domain.StageHeaders, pending, stageCounts{skipped: skipped}, job)
}

// FetchRecords downloads and stores the shortest full record linked to
// each input that has none. Ties on length go to the earliest linked.
func (p *RetrievalPipeline) FetchRecords(ctx context.Context) (domain.StageReport, error) {
	inputs, err := p.cache.ListSequencesMissingRecord(ctx)
	if err != nil {
		return domain.StageReport{Stage: domain.StageRecords}, err
	}

	// Choose one record per input; several inputs may choose the same one
	accession := make(map[string]string)
	var pending []string
	unselectable := 0
	for _, acc := range inputs {
		candidates, err := p.cache.ListCandidates(ctx, acc)
		if err != nil {
			return domain.StageReport{Stage: domain.StageRecords}, err
		}
		best, ok := domain.ShortestCandidate(candidates)
		if !ok {
			p.log.Debug("no candidate with a header for %s", acc)
			unselectable++
			continue
		}
		if _, dup := accession[best.UID]; dup {
			continue
		}
		accession[best.UID] = best.Accession
		pending = append(pending, best.UID)
	}

	job := batchJob[map[string]string]{
		fetch: p.remote.FetchRecords,
		apply: func(ctx context.Context, batch []string, records map[string]string) (int, int, error) {
			added, failed := 0, 0
			for _, uid := range batch {
				acc := accession[uid]
				text, ok := records[acc]
				if !ok {
					text, ok = records[stripVersion(acc)]
				}
				if !ok {
					p.log.Debug("no record returned for %s (uid %s)", acc, uid)
					failed++
					continue
				}
				if err := p.cache.AddRecord(ctx, acc, text); err != nil {
					if errors.Is(err, domain.ErrAlreadyExists) {
						continue
					}
					return added, failed, err
				}
				added++
			}
			return added, failed, nil
		},
	}

	return runStage(ctx, p, domain.StageRecords, pending, stageCounts{failed: unselectable}, job)
}

// ==================== Batch dispatch ====================

// batchJob is one stage's remote request and its cache update.
// fetch runs under the retry policy; apply runs once, serialised with
// other batches' apply.
type batchJob[T any] struct {
	fetch func(ctx context.Context, batch []string) (T, error)
	apply func(ctx context.Context, batch []string, result T) (added, failed int, err error)
}

// stageCounts are the items a stage settled before dispatching any batch.
// failed items are also counted as pending.
type stageCounts struct {
	skipped int
	failed  int
}

// runStage splits items into batches and dispatches up to Concurrency at a time.
// A batch that exhausts its retries counts all its items as failed; fatal
// errors stop the stage. Cancellation is checked between batches.
func runStage[T any](
	ctx context.Context,
	p *RetrievalPipeline,
	stage domain.Stage,
	items []string,
	counts stageCounts,
	job batchJob[T],
) (domain.StageReport, error) {
	start := time.Now()
	report := domain.StageReport{
		Stage:   stage,
		Pending: len(items) + counts.failed,
		Failed:  counts.failed,
		Skipped: counts.skipped,
	}

	p.log.Section(string(stage))
	p.log.Info("%d pending, %d skipped", report.Pending, report.Skipped)

	var mu sync.Mutex
	record := func(res BatchResult) {
		mu.Lock()
		defer mu.Unlock()
		report.Added += res.Added
		report.Failed += res.Failed
		p.progress.Advance(res.Items)
	}

	p.progress.Start(string(stage), len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	for _, batch := range chunk(items, p.opts.BatchSize) {
		if gctx.Err() != nil {
			break
		}
		batch := batch // per-iteration copy (go directive < 1.22)
		g.Go(func() error {
			res, err := runBatch(gctx, p, batch, job)
			record(res)
			if err != nil {
				return err
			}
			if res.Status == BatchFailure {
				p.log.Warn("%s: batch of %d failed after %d attempts: %v", stage, res.Items, res.Attempts, res.Err)
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	p.progress.Done()
	report.Duration = time.Since(start)

	p.log.Info("%s: %d added, %d failed in %s", stage, report.Added, report.Failed, report.Duration.Round(time.Millisecond))
	p.observer.StageCompleted(report)

	if err != nil {
		return report, fmt.Errorf("%s: %w", stage, err)
	}
	return report, nil
}

// runBatch fetches one batch under the retry policy and applies the result.
func runBatch[T any](ctx context.Context, p *RetrievalPipeline, batch []string, job batchJob[T]) (BatchResult, error) {
	res := BatchResult{Items: len(batch)}

	var result T
	attempts, err := p.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		result, err = job.fetch(ctx, batch)
		return err
	})
	res.Attempts = attempts
	if err != nil {
		if IsFatal(err) {
			return res, err
		}
		res.Status = BatchFailure
		res.Failed = len(batch)
		res.Err = err
		return res, nil
	}

	p.writeMu.Lock()
	added, failed, err := job.apply(ctx, batch, result)
	p.writeMu.Unlock()

	res.Added, res.Failed = added, failed
	if err != nil {
		return res, err
	}
	if failed > 0 {
		res.Status = BatchPartial
	}
	return res, nil
}

// chunk splits items into consecutive slices of at most size.
func chunk(items []string, size int) [][]string {
	var out [][]string
	for len(items) > 0 {
		n := size
		if n > len(items) {
			n = len(items)
		}
		out = append(out, items[:n])
		items = items[n:]
	}
	return out
}

// uniqueValues returns the distinct values of m for keys, in key order.
func uniqueValues(keys []string, m map[string]string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		v := m[k]
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func stripVersion(accession string) string {
	if i := strings.LastIndexByte(accession, '.'); i > 0 {
		return accession[:i]
	}
	return accession
}

type nopProgress struct{}

func (nopProgress) Start(string, int) {}
func (nopProgress) Advance(int)       {}
func (nopProgress) Done()             {}

type nopObserver struct{}

func (nopObserver) StageCompleted(domain.StageReport)    {}
func (nopObserver) ExtractionOutcome(domain.MatchReason) {}
