package services

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/ncfp/internal/core/domain"
	"github.com/custodia-labs/ncfp/internal/core/ports/driven"
	"github.com/custodia-labs/ncfp/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEntrezEmail    = "entrez.email"
	keyEntrezAPIKey   = "entrez.api_key"
	keyEntrezTool     = "entrez.tool"
	keyEntrezBaseURL  = "entrez.base_url"
	keyEntrezRate     = "entrez.requests_per_second"
	keyRetries        = "pipeline.retries"
	keyBatchSize      = "pipeline.batch_size"
	keyConcurrency    = "pipeline.concurrency"
	keyRetryBackoffMS = "pipeline.retry_backoff_ms"
	keyCacheDir       = "cache.dir"
)

type keyKind int

const (
	kindString keyKind = iota
	kindPositiveInt
	kindFloat
	kindURL
)

var settingKinds = map[string]keyKind{
	keyEntrezEmail:    kindString,
	keyEntrezAPIKey:   kindString,
	keyEntrezTool:     kindString,
	keyEntrezBaseURL:  kindURL,
	keyEntrezRate:     kindFloat,
	keyRetries:        kindPositiveInt,
	keyBatchSize:      kindPositiveInt,
	keyConcurrency:    kindPositiveInt,
	keyRetryBackoffMS: kindPositiveInt,
	keyCacheDir:       kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings, with defaults for unset keys.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Entrez: domain.EntrezSettings{
			Email:             s.configStore.GetString(keyEntrezEmail),
			APIKey:            s.configStore.GetString(keyEntrezAPIKey),
			Tool:              s.getString(keyEntrezTool, defaults.Entrez.Tool),
			BaseURL:           s.getString(keyEntrezBaseURL, defaults.Entrez.BaseURL),
			RequestsPerSecond: s.configStore.GetFloat(keyEntrezRate),
		},
		Pipeline: domain.PipelineSettings{
			Retries:        s.getInt(keyRetries, defaults.Pipeline.Retries),
			BatchSize:      s.getInt(keyBatchSize, defaults.Pipeline.BatchSize),
			Concurrency:    s.getInt(keyConcurrency, defaults.Pipeline.Concurrency),
			RetryBackoffMS: s.getInt(keyRetryBackoffMS, defaults.Pipeline.RetryBackoffMS),
		},
		Cache: domain.CacheSettings{
			Dir: s.getString(keyCacheDir, defaults.Cache.Dir),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEntrezEmail, settings.Entrez.Email},
		{keyEntrezTool, settings.Entrez.Tool},
		{keyEntrezBaseURL, settings.Entrez.BaseURL},
		{keyRetries, settings.Pipeline.Retries},
		{keyBatchSize, settings.Pipeline.BatchSize},
		{keyConcurrency, settings.Pipeline.Concurrency},
		{keyRetryBackoffMS, settings.Pipeline.RetryBackoffMS},
		{keyCacheDir, settings.Cache.Dir},
	}
	// Only persist secrets and overrides that are actually set
	if settings.Entrez.APIKey != "" {
		values = append(values, struct {
			key   string
			value any
		}{keyEntrezAPIKey, settings.Entrez.APIKey})
	}
	if settings.Entrez.RequestsPerSecond > 0 {
		values = append(values, struct {
			key   string
			value any
		}{keyEntrezRate, settings.Entrez.RequestsPerSecond})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set validates and stores a single setting given as text.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)",
			domain.ErrInvalidInput, key, strings.Join(s.Keys(), ", "))
	}

	var typed any
	switch kind {
	case kindString:
		typed = value
	case kindURL:
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %s must be an absolute URL", domain.ErrInvalidInput, key)
		}
		typed = value
	case kindPositiveInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		typed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		typed = f
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the configuration keys understood by Set, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}
