// Package cli implements the ncfp command line.
// Commands reach the core through driving ports injected by the
// composition root before Execute is called.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ncfp/internal/core/ports/driving"
	"github.com/custodia-labs/ncfp/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Injected services. Commands fail cleanly when theirs is missing.
var (
	settingsService driving.SettingsService
	runnerFactory   RunnerFactory
	cacheOpener     CacheOpener
)

// Global flags
var (
	verbose bool
	logFile string
)

// log is the run logger, configured from the global flags before each command.
var log = logger.Nop()

// logFileHandle is the open --logfile, closed after the command.
var logFileHandle io.Closer

var rootCmd = &cobra.Command{
	Use:   "ncfp",
	Short: "Find nucleotide coding sequences for protein sequences",
	Long: `ncfp takes protein sequences in FASTA format and retrieves the
nucleotide coding sequence for each one from NCBI.

Progress is kept in a local cache, so an interrupted run can be
restarted with the same cache and continues where it stopped.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "report progress in detail")
	rootCmd.PersistentFlags().StringVarP(&logFile, "logfile", "l", "", "also write a complete log to this file")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetSettingsService sets the settings service used by the config and run commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetRunnerFactory sets the factory used by the run command.
func SetRunnerFactory(f RunnerFactory) {
	runnerFactory = f
}

// SetCacheOpener sets the function used to open existing caches.
func SetCacheOpener(f CacheOpener) {
	cacheOpener = f
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if cerr := closeLogging(); err == nil {
		err = cerr
	}
	return err
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	log = logger.New(cmd.ErrOrStderr(), verbose)
	if logFile == "" {
		return nil
	}
	f, err := os.Create(logFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetFile(f)
	logFileHandle = f
	return nil
}

func closeLogging() error {
	if logFileHandle == nil {
		return nil
	}
	err := logFileHandle.Close()
	logFileHandle = nil
	log.SetFile(nil)
	return err
}
