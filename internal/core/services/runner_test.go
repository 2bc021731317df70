package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ncfp/internal/adapters/driven/seqio"
	"github.com/custodia-labs/ncfp/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ncfp/internal/core/domain"
	"github.com/custodia-labs/ncfp/internal/core/ports/driving"
)

const runnerInput = `>WP_1.1 hypothetical protein
MAKV
>sp|P2|ABCD_ECOLI Transporter GN=abcD OS=Escherichia coli PE=1
MKW
>/1-5 fragment
MA
`

const abcDQuery = `"abcD"[Gene Name] AND "Escherichia coli"[Organism]`

type runnerFixture struct {
	cache    *memory.CacheStore
	remote   *mockRemote
	observer *recordingObserver
	runner   *Runner
}

func newRunnerFixture() *runnerFixture {
	cache := memory.NewCacheStore()
	remote := newMockRemote()
	remote.mapped["WP_1.1"] = "11[uid]"
	remote.searched["11[uid]"] = []string{"11"}
	remote.addSummary("11", "X.1", 100)
	remote.records["X.1"] = "text X.1"

	parser := &mockParser{records: map[string]*domain.GenBankRecord{
		"text X.1": forwardRecord("X.1", "WP_1.1", "MAKV"),
	}}

	fasta := seqio.NewFASTA()
	pipeline := NewRetrievalPipeline(cache, remote, testPipelineOptions(), nil)
	extractor := NewCDSExtractor(cache, parser, seqio.NewCodonTranslator(), domain.ExtractOptions{}, nil)

	observer := &recordingObserver{}
	runner := NewRunner(cache, pipeline, extractor, fasta, fasta, nil)
	runner.SetObserver(observer)

	return &runnerFixture{cache: cache, remote: remote, observer: observer, runner: runner}
}

func runOptions(t *testing.T, input string) driving.RunOptions {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "input.fasta")
	require.NoError(t, os.WriteFile(path, []byte(input), 0o600))
	return driving.RunOptions{
		InputPath:   path,
		OutDir:      filepath.Join(dir, "out"),
		FileStem:    "ncfp",
		SkippedFile: "skipped.fasta",
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunner_Run(t *testing.T) {
	f := newRunnerFixture()
	opts := runOptions(t, runnerInput)

	report, err := f.runner.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.Inputs)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Cached)
	assert.Equal(t, 1, report.Pairs)
	assert.Len(t, report.Stages, 5)
	assert.Equal(t, map[domain.MatchReason]int{
		domain.ReasonMatched:     1,
		domain.ReasonNoCandidate: 1,
	}, report.Outcomes)
	assert.Len(t, f.observer.outcomes, 2)

	assert.Equal(t, filepath.Join(opts.OutDir, "ncfp_aa.fasta"), report.ProteinPath)
	assert.Equal(t, ">WP_1.1 hypothetical protein\nMAKV\n", readFile(t, report.ProteinPath))
	assert.Equal(t, ">WP_1.1 X.1 Escherichia coli chromosome\nATGGCTAAAGTTTAA\n", readFile(t, report.NucleotidePath))
	assert.Equal(t, ">/1-5 fragment\nMA\n", readFile(t, report.SkippedPath))

	nt, err := f.cache.GetNtQuery(context.Background(), "sp|P2|ABCD_ECOLI")
	require.NoError(t, err)
	assert.Equal(t, abcDQuery, nt)
}

func TestRunner_RerunUsesCache(t *testing.T) {
	f := newRunnerFixture()
	opts := runOptions(t, runnerInput)

	_, err := f.runner.Run(context.Background(), opts)
	require.NoError(t, err)
	calls := f.remote.totalCalls()

	report, err := f.runner.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Cached)
	assert.Equal(t, 1, report.Pairs)
	// Only the unresolved gene-name search is retried
	assert.Equal(t, calls+1, f.remote.totalCalls())
	assert.Equal(t, [][]string{{abcDQuery}}, f.remote.searchCalls[len(f.remote.searchCalls)-1:])
}

func TestRunner_RepeatedIDsAreExtractedOnce(t *testing.T) {
	f := newRunnerFixture()
	input := ">WP_1.1 hypothetical protein\nMAKV\n>WP_1.1 hypothetical protein\nMAKV\n"
	opts := runOptions(t, input)

	report, err := f.runner.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inputs)
	assert.Equal(t, 1, report.Duplicates)
	assert.Zero(t, report.Cached)
	assert.Equal(t, 1, report.Pairs)
	assert.Len(t, f.observer.outcomes, 1)
	assert.Equal(t, ">WP_1.1 hypothetical protein\nMAKV\n", readFile(t, report.ProteinPath))
}

func TestRunner_Stdin(t *testing.T) {
	f := newRunnerFixture()
	f.runner.SetStdin(strings.NewReader(runnerInput))
	opts := runOptions(t, "")
	opts.InputPath = "-"

	report, err := f.runner.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Inputs)
}

func TestRunner_FatalErrors(t *testing.T) {
	t.Run("unreadable input", func(t *testing.T) {
		opts := runOptions(t, runnerInput)
		opts.InputPath = filepath.Join(t.TempDir(), "missing.fasta")
		_, err := newRunnerFixture().runner.Run(context.Background(), opts)
		assert.Error(t, err)
	})

	t.Run("malformed input", func(t *testing.T) {
		opts := runOptions(t, "MAKV\n>x\nM\n")
		_, err := newRunnerFixture().runner.Run(context.Background(), opts)
		assert.ErrorIs(t, err, seqio.ErrMalformedFASTA)
	})

	t.Run("output directory is a file", func(t *testing.T) {
		opts := runOptions(t, runnerInput)
		require.NoError(t, os.WriteFile(opts.OutDir, nil, 0o600))
		_, err := newRunnerFixture().runner.Run(context.Background(), opts)
		assert.Error(t, err)
	})
}

func TestInputQueries(t *testing.T) {
	tests := []struct {
		name    string
		rec     domain.SequenceRecord
		aa, nt  string
		wantErr bool
	}{
		{
			name: "ncbi accession",
			rec:  domain.SequenceRecord{ID: "WP_1.1", Description: "WP_1.1 protein"},
			aa:   "WP_1.1",
		},
		{
			name: "domain range stripped",
			rec:  domain.SequenceRecord{ID: "WP_1.1/5-20"},
			aa:   "WP_1.1",
		},
		{
			name: "uniprot with gene and organism",
			rec:  domain.SequenceRecord{ID: "tr|A0A1|A0A1_ECOLI", Description: "tr|A0A1|A0A1_ECOLI x GN=yfgA OS=Escherichia coli OX=562"},
			aa:   "A0A1",
			nt:   `"yfgA"[Gene Name] AND "Escherichia coli"[Organism]`,
		},
		{
			name: "gene name only",
			rec:  domain.SequenceRecord{ID: "sp|P1|X", Description: "sp|P1|X GN=abc"},
			aa:   "P1",
			nt:   `"abc"[Gene Name]`,
		},
		{
			name:    "nothing derivable",
			rec:     domain.SequenceRecord{ID: "/1-5"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aa, nt, err := InputQueries(tt.rec)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrNoQueryTerm)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.aa, aa)
			assert.Equal(t, tt.nt, nt)
		})
	}
}
