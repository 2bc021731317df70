package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ncfp/internal/core/domain"
	"github.com/custodia-labs/ncfp/internal/core/ports/driven"
	"github.com/custodia-labs/ncfp/internal/core/ports/driving"
	"github.com/custodia-labs/ncfp/internal/logger"
)

// RunConfig configures the collaborators of one run.
type RunConfig struct {
	// CachePath is the cache file; it is created if missing.
	CachePath string

	// KeepCache reuses an existing cache instead of starting fresh.
	KeepCache bool

	Entrez   domain.EntrezSettings
	Pipeline domain.PipelineOptions
	Extract  domain.ExtractOptions

	// MetricsPath receives Prometheus metrics when the session closes.
	// Empty disables metrics.
	MetricsPath string

	Logger   *logger.Logger
	Progress driven.ProgressReporter
}

// RunSession is a runner together with the resources it holds.
type RunSession struct {
	Runner driving.Runner

	// Close writes run artefacts and releases the cache.
	Close func() error
}

// RunnerFactory builds a run session from its configuration.
type RunnerFactory func(ctx context.Context, cfg RunConfig) (*RunSession, error)

var runFlags struct {
	email           string
	apiKey          string
	stem            string
	cacheDir        string
	cacheStem       string
	keepCache       bool
	batchSize       int
	retries         int
	concurrency     int
	stockholm       bool
	unifySeqID      bool
	altStartCodon   bool
	skippedFile     string
	disableProgress bool
	metricsFile     string
}

var runCmd = &cobra.Command{
	Use:   "run INPUT OUTDIR",
	Short: "Find coding sequences for a FASTA file of proteins",
	Long: `Finds the nucleotide coding sequence for each protein in INPUT and
writes paired protein and nucleotide FASTA files to OUTDIR.

INPUT may be "-" to read from standard input. Sequences from which no
search term can be derived are written to a separate skipped file.

Retrieval progress is cached under --cachedir. Use --keepcache to resume
an interrupted run instead of starting a fresh cache.`,
	Args: cobra.ExactArgs(2),
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runFlags.email, "email", "e", "", "email address sent to NCBI (required unless configured)")
	f.StringVar(&runFlags.apiKey, "api-key", "", "NCBI API key")
	f.StringVarP(&runFlags.stem, "stem", "s", "ncfp", "output file stem")
	f.StringVarP(&runFlags.cacheDir, "cachedir", "d", "", "directory for the local cache (default from config)")
	f.StringVarP(&runFlags.cacheStem, "cachestem", "c", "ncfp", "cache file stem")
	f.BoolVar(&runFlags.keepCache, "keepcache", false, "reuse an existing cache")
	f.IntVarP(&runFlags.batchSize, "batchsize", "b", 0, "identifiers per remote request (default from config)")
	f.IntVarP(&runFlags.retries, "retries", "r", 0, "attempts per remote batch (default from config)")
	f.IntVar(&runFlags.concurrency, "concurrency", 0, "remote batches in flight (default from config)")
	f.BoolVar(&runFlags.stockholm, "stockholm", false, "input IDs carry /start-end domain ranges")
	f.BoolVar(&runFlags.unifySeqID, "unify-seqid", false, "give output nucleotide sequences the input IDs")
	f.BoolVar(&runFlags.altStartCodon, "alternative-start-codon", false, "accept translations differing only in the first residue")
	f.StringVar(&runFlags.skippedFile, "skippedfname", "skipped.fasta", "file name for skipped input sequences")
	f.BoolVar(&runFlags.disableProgress, "disable-progress", false, "do not show progress bars")
	f.StringVar(&runFlags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if runnerFactory == nil {
		return errors.New("run service not configured")
	}

	cfg, err := buildRunConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	session, err := runnerFactory(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up run: %w", err)
	}

	report, err := session.Runner.Run(ctx, driving.RunOptions{
		InputPath:   args[0],
		OutDir:      args[1],
		FileStem:    runFlags.stem,
		SkippedFile: runFlags.skippedFile,
	})
	if cerr := session.Close(); cerr != nil {
		log.Warn("closing run: %v", cerr)
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	printRunSummary(cmd.OutOrStdout(), report)
	return nil
}

// buildRunConfig merges persisted settings with the flags given on the command line.
func buildRunConfig(cmd *cobra.Command) (RunConfig, error) {
	settings := domain.DefaultAppSettings()
	if settingsService != nil {
		s, err := settingsService.Get()
		if err != nil {
			return RunConfig{}, fmt.Errorf("failed to get settings: %w", err)
		}
		settings = *s
	}

	flags := cmd.Flags()
	if flags.Changed("email") {
		settings.Entrez.Email = runFlags.email
	}
	if flags.Changed("api-key") {
		settings.Entrez.APIKey = runFlags.apiKey
	}
	if flags.Changed("cachedir") {
		settings.Cache.Dir = runFlags.cacheDir
	}
	if flags.Changed("batchsize") {
		settings.Pipeline.BatchSize = runFlags.batchSize
	}
	if flags.Changed("retries") {
		settings.Pipeline.Retries = runFlags.retries
	}
	if flags.Changed("concurrency") {
		settings.Pipeline.Concurrency = runFlags.concurrency
	}

	if settings.Entrez.Email == "" {
		return RunConfig{}, errors.New("an email address is required: use --email or 'ncfp config set entrez.email ADDRESS'")
	}
	if settings.Pipeline.BatchSize < 1 || settings.Pipeline.Retries < 1 || settings.Pipeline.Concurrency < 1 {
		return RunConfig{}, errors.New("batch size, retries and concurrency must be at least 1")
	}

	cfg := RunConfig{
		CachePath: filepath.Join(settings.Cache.Dir, fmt.Sprintf("ncfpcache_%s.sqlite3", runFlags.cacheStem)),
		KeepCache: runFlags.keepCache,
		Entrez:    settings.Entrez,
		Pipeline:  settings.Pipeline.Options(),
		Extract: domain.ExtractOptions{
			Stockholm:             runFlags.stockholm,
			UnifySeqID:            runFlags.unifySeqID,
			AlternativeStartCodon: runFlags.altStartCodon,
		},
		MetricsPath: runFlags.metricsFile,
		Logger:      log,
	}
	if !runFlags.disableProgress && isTerminal(cmd.ErrOrStderr()) {
		cfg.Progress = NewProgressBar(cmd.ErrOrStderr())
	}
	return cfg, nil
}
