package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoQueryTerm indicates no search term could be derived for an input sequence.
	ErrNoQueryTerm = errors.New("no query term")

	// ErrUnparseableResponse indicates a remote response could not be decoded at all.
	// Pipeline stages treat this as fatal.
	ErrUnparseableResponse = errors.New("unparseable remote response")

	// ErrRetriesExhausted indicates a batch failed on every permitted attempt.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrUntranslatable indicates a nucleotide sequence could not be translated.
	ErrUntranslatable = errors.New("untranslatable sequence")
)

// StoreError wraps a cache store failure with the operation that caused it.
// Use errors.Is to test for the underlying condition (e.g. ErrAlreadyExists).
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err as a StoreError for op. Returns nil if err is nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// IsStoreError reports whether err is (or wraps) a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
