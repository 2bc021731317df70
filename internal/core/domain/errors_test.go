package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNoQueryTerm", ErrNoQueryTerm},
		{"ErrUnparseableResponse", ErrUnparseableResponse},
		{"ErrRetriesExhausted", ErrRetriesExhausted},
		{"ErrUntranslatable", ErrUntranslatable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrAlreadyExists))
}

func TestStoreError_Unwrap(t *testing.T) {
	err := NewStoreError("add input sequence", ErrAlreadyExists)

	assert.True(t, errors.Is(err, ErrAlreadyExists))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsStoreError(err))
	assert.Equal(t, "cache add input sequence: already exists", err.Error())
}

func TestStoreError_WrappedTwice(t *testing.T) {
	err := fmt.Errorf("register: %w", NewStoreError("add header", ErrAlreadyExists))

	assert.True(t, IsStoreError(err))
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestNewStoreError_Nil(t *testing.T) {
	assert.NoError(t, NewStoreError("noop", nil))
	assert.False(t, IsStoreError(errors.New("plain")))
}
