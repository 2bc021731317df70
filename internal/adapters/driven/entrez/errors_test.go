package entrez

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
		permanent bool
	}{
		{"bad request", &APIError{StatusCode: 400}, false, true},
		{"not found", &APIError{StatusCode: 404}, false, true},
		{"request timeout", &APIError{StatusCode: 408}, false, false},
		{"rate limited", &APIError{StatusCode: 429}, true, false},
		{"server error", &APIError{StatusCode: 502}, true, false},
		{"wrapped", fmt.Errorf("esearch: %w", &APIError{StatusCode: 414}), false, true},
		{"network", errors.New("connection reset by peer"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, IsTransient(tt.err))
			assert.Equal(t, tt.permanent, IsPermanent(tt.err))
		})
	}
}
