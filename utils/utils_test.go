package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code1, err := GenerateCode(8)
	require.NoError(t, err)
	code2, err := GenerateCode(8)
	require.NoError(t, err)

	assert.Len(t, code1, 16)
	assert.NotEqual(t, code1, code2)
	assert.Regexp(t, "^[0-9A-F]+$", code1)
}

func TestCircuitBreaker_PassesThroughWhenClosed(t *testing.T) {
	cb := NewCircuitBreaker("test")

	result, err := cb.Execute(context.Background(), func() (interface{}, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestCircuitBreaker_PropagatesErrors(t *testing.T) {
	cb := NewCircuitBreaker("test")
	boom := errors.New("backend down")

	_, err := cb.Execute(context.Background(), func() (interface{}, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker("test")
	boom := errors.New("backend down")

	// Enough failed requests inside one window to trip the breaker.
	for i := 0; i < 20; i++ {
		cb.Execute(context.Background(), func() (interface{}, error) {
			return nil, boom
		})
	}

	_, err := cb.Execute(context.Background(), func() (interface{}, error) {
		return "ok", nil
	})

	assert.ErrorIs(t, err, ErrBreakerOpen)
}
