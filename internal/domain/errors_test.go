package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		status   int
	}{
		{"not found", &NotFoundError{Message: "block missing not found"}, ErrNotFound, http.StatusNotFound},
		{"conflict", ErrBlockBusy, ErrConflict, http.StatusConflict},
		{"upstream", &UpstreamError{Message: "AI backend request failed"}, ErrUpstream, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("load: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)

			var httpErr HTTPError
			assert.True(t, errors.As(wrapped, &httpErr))
			assert.Equal(t, tt.status, httpErr.StatusCode())
		})
	}
}

func TestNotFoundDoesNotMatchOtherSentinels(t *testing.T) {
	err := &NotFoundError{Message: "no suggestion for block problem"}
	assert.NotErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrValidation)
}
