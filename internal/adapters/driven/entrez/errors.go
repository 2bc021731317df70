package entrez

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a non-success E-utilities response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string

	// RetryAfter is the server's requested delay in seconds, if any.
	RetryAfter int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("entrez: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// IsTransient checks if the error is worth retrying: rate limiting or a
// server-side failure.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return false
}

// IsPermanent checks if the request itself was rejected. Retrying a 4xx
// response other than a timeout or rate limit cannot succeed.
func IsPermanent(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	code := apiErr.StatusCode
	return code >= 400 && code < 500 &&
		code != http.StatusTooManyRequests && code != http.StatusRequestTimeout
}
