package domain

import "time"

// EntrezSettings configures access to the NCBI E-utilities.
type EntrezSettings struct {
	// Email is sent with every request, as NCBI requires.
	Email string

	// APIKey raises the permitted request rate from 3 to 10 per second.
	APIKey string

	// Tool identifies this program to NCBI.
	Tool string

	// BaseURL is the E-utilities endpoint root.
	BaseURL string

	// RequestsPerSecond overrides the rate derived from APIKey when > 0.
	RequestsPerSecond float64
}

// RateLimit returns the request rate to use against NCBI.
func (e EntrezSettings) RateLimit() float64 {
	if e.RequestsPerSecond > 0 {
		return e.RequestsPerSecond
	}
	if e.APIKey != "" {
		return 10
	}
	return 3
}

// IsConfigured returns true if the settings are usable.
func (e EntrezSettings) IsConfigured() bool {
	return e.Email != "" && e.BaseURL != ""
}

// PipelineSettings are the persisted defaults for PipelineOptions.
type PipelineSettings struct {
	Retries        int
	BatchSize      int
	Concurrency    int
	RetryBackoffMS int
}

// Options converts the settings into PipelineOptions.
func (p PipelineSettings) Options() PipelineOptions {
	return PipelineOptions{
		BatchSize:    p.BatchSize,
		Retries:      p.Retries,
		RetryBackoff: time.Duration(p.RetryBackoffMS) * time.Millisecond,
		Concurrency:  p.Concurrency,
	}
}

// CacheSettings configures where the retrieval cache lives.
type CacheSettings struct {
	Dir string
}

// AppSettings aggregates all application settings.
type AppSettings struct {
	Entrez   EntrezSettings
	Pipeline PipelineSettings
	Cache    CacheSettings
}

// DefaultEntrezBaseURL is the public E-utilities endpoint.
const DefaultEntrezBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// DefaultAppSettings returns the default application settings.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Entrez: EntrezSettings{
			Tool:    "ncfp",
			BaseURL: DefaultEntrezBaseURL,
		},
		Pipeline: PipelineSettings{
			Retries:        10,
			BatchSize:      100,
			Concurrency:    1,
			RetryBackoffMS: 1000,
		},
		Cache: CacheSettings{
			Dir: ".ncfp_cache",
		},
	}
}
