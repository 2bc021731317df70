package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ncfp/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ncfp/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultAppSettings(), *settings)
	assert.False(t, settings.Entrez.IsConfigured(), "no email by default")
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("entrez.email", "me@example.org")
	_ = store.Set("entrez.api_key", "k")
	_ = store.Set("pipeline.batch_size", int64(25))
	_ = store.Set("entrez.requests_per_second", 1.5)

	settings, err := NewSettingsService(store).Get()
	require.NoError(t, err)

	assert.Equal(t, "me@example.org", settings.Entrez.Email)
	assert.Equal(t, 25, settings.Pipeline.BatchSize)
	assert.InDelta(t, 1.5, settings.Entrez.RateLimit(), 1e-9)
	assert.True(t, settings.Entrez.IsConfigured())
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("pipeline.retries", -3)
	_ = store.Set("cache.dir", 12)

	settings, err := NewSettingsService(store).Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Pipeline.Retries, settings.Pipeline.Retries)
	assert.Equal(t, defaults.Cache.Dir, settings.Cache.Dir)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings := domain.DefaultAppSettings()
	settings.Entrez.Email = "me@example.org"
	settings.Pipeline.Concurrency = 4
	require.NoError(t, service.Save(&settings))

	_, hasKey := store.Get("entrez.api_key")
	assert.False(t, hasKey, "empty api key is not persisted")

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *got)
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.Set("pipeline.retries", "3"))
	require.NoError(t, service.Set("entrez.requests_per_second", "2.5"))
	require.NoError(t, service.Set("entrez.base_url", "http://localhost:8080/eutils"))
	require.NoError(t, service.Set("entrez.email", "x@y"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 3, settings.Pipeline.Retries)
	assert.InDelta(t, 2.5, settings.Entrez.RequestsPerSecond, 1e-9)
	assert.Equal(t, "http://localhost:8080/eutils", settings.Entrez.BaseURL)
}

func TestSettingsService_Set_Invalid(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	for key, value := range map[string]string{
		"unknown.key":                "x",
		"pipeline.retries":           "zero",
		"pipeline.batch_size":        "0",
		"entrez.requests_per_second": "-1",
		"entrez.base_url":            "not a url",
	} {
		err := service.Set(key, value)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, key)
	}
}

func TestSettingsService_KeysAndPath(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	keys := service.Keys()
	assert.Contains(t, keys, "entrez.email")
	assert.Contains(t, keys, "cache.dir")
	assert.IsNonDecreasing(t, keys)
	assert.Equal(t, ":memory:", service.Path())
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
