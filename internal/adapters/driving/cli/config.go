package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage persisted settings",
	Long: `View and change the settings used as defaults for every run.

Command-line flags given to 'ncfp run' take precedence over these values.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting",
	Long: `Change one setting and save it.

Run 'ncfp config keys' to list the available keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	RunE:  runConfigKeys,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Entrez]")
	email := settings.Entrez.Email
	if email == "" {
		email = "(not set)"
	}
	cmd.Printf("  Email: %s\n", email)
	if settings.Entrez.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Entrez.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Printf("  Tool: %s\n", settings.Entrez.Tool)
	cmd.Printf("  Base URL: %s\n", settings.Entrez.BaseURL)
	cmd.Printf("  Requests/second: %g\n", settings.Entrez.RateLimit())
	cmd.Println()

	cmd.Println("[Pipeline]")
	cmd.Printf("  Batch size: %d\n", settings.Pipeline.BatchSize)
	cmd.Printf("  Retries: %d\n", settings.Pipeline.Retries)
	cmd.Printf("  Concurrency: %d\n", settings.Pipeline.Concurrency)
	cmd.Printf("  Retry backoff: %dms\n", settings.Pipeline.RetryBackoffMS)
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  Directory: %s\n", settings.Cache.Dir)
	cmd.Println()

	if !settings.Entrez.IsConfigured() {
		cmd.Println("Warning: no email address configured.")
		cmd.Println("Run 'ncfp config set entrez.email ADDRESS' or pass --email to 'ncfp run'.")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if strings.HasSuffix(key, "api_key") {
		value = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	cmd.Println(settingsService.Path())
	return nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
