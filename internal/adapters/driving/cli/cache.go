package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ncfp/internal/core/ports/driven"
)

// CacheOpener opens an existing cache file.
type CacheOpener func(path string) (driven.CacheStore, error)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect retrieval caches",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status CACHEFILE",
	Short: "Show cache contents and outstanding work",
	Long: `Shows how many rows each cache table holds and how much work a
resumed run still has to do at each retrieval stage.`,
	Args: cobra.ExactArgs(1),
	RunE: runCacheStatus,
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	if cacheOpener == nil {
		return errors.New("cache service not configured")
	}

	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cache file not found: %s", path)
	}

	store, err := cacheOpener(path)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer store.Close()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	printCacheStats(cmd.OutOrStdout(), path, stats)
	return nil
}
