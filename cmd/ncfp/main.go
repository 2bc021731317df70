// Command ncfp finds the nucleotide coding sequences of protein sequences
// using NCBI Entrez.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/ncfp/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ncfp/internal/adapters/driven/entrez"
	"github.com/custodia-labs/ncfp/internal/adapters/driven/metrics"
	"github.com/custodia-labs/ncfp/internal/adapters/driven/seqio"
	"github.com/custodia-labs/ncfp/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ncfp/internal/adapters/driving/cli"
	"github.com/custodia-labs/ncfp/internal/core/ports/driven"
	"github.com/custodia-labs/ncfp/internal/core/services"
)

// Set by the release build.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	cli.SetVersion(version)

	configStore, err := file.NewConfigStore(os.Getenv("NCFP_CONFIG_DIR"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: configuration unavailable: %v\n", err)
	} else {
		cli.SetSettingsService(services.NewSettingsService(configStore))
	}

	cli.SetRunnerFactory(newRunSession)
	cli.SetCacheOpener(func(path string) (driven.CacheStore, error) {
		return sqlite.NewStore(path)
	})

	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Interrupted; rerun with --keepcache to resume")
		}
		return 1
	}
	return 0
}

// newRunSession opens the cache and assembles the services for one run.
func newRunSession(ctx context.Context, cfg cli.RunConfig) (*cli.RunSession, error) {
	store, err := sqlite.NewStore(cfg.CachePath)
	if err != nil {
		return nil, err
	}
	if !cfg.KeepCache {
		if err := store.Initialize(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("resetting cache: %w", err)
		}
	}
	cfg.Logger.Info("Using cache %s", cfg.CachePath)

	clientCfg := entrez.ConfigFromSettings(cfg.Entrez)
	clientCfg.Logger = cfg.Logger
	remote := entrez.NewClient(clientCfg)

	fasta := seqio.NewFASTA()
	pipeline := services.NewRetrievalPipeline(store, remote, cfg.Pipeline, cfg.Logger)
	policy := services.NewRetryPolicy(cfg.Pipeline)
	policy.Permanent = entrez.IsPermanent
	pipeline.SetRetryPolicy(policy)
	if cfg.Progress != nil {
		pipeline.SetProgress(cfg.Progress)
	}
	extractor := services.NewCDSExtractor(store, seqio.NewGenBankParser(), seqio.NewCodonTranslator(), cfg.Extract, cfg.Logger)
	runner := services.NewRunner(store, pipeline, extractor, fasta, fasta, cfg.Logger)

	var observer *metrics.Observer
	if cfg.MetricsPath != "" {
		observer = metrics.NewObserver()
		pipeline.SetObserver(observer)
		runner.SetObserver(observer)
	}

	return &cli.RunSession{
		Runner: runner,
		Close: func() error {
			var errs []error
			if observer != nil {
				if err := observer.WriteFile(cfg.MetricsPath); err != nil {
					errs = append(errs, fmt.Errorf("writing metrics: %w", err))
				}
			}
			if err := store.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing cache: %w", err))
			}
			return errors.Join(errs...)
		},
	}, nil
}
