package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenLimiter_WaitWithinBudget(t *testing.T) {
	l := NewTokenLimiter(600)

	require.NoError(t, l.Wait(context.Background(), 500))
	assert.LessOrEqual(t, l.GetRemaining(), 100)
}

func TestTokenLimiter_ClampsOversizedRequests(t *testing.T) {
	l := NewTokenLimiter(100)

	require.NoError(t, l.Wait(context.Background(), 1000))
}

func TestTokenLimiter_CancelledContext(t *testing.T) {
	l := NewTokenLimiter(60)
	require.NoError(t, l.Wait(context.Background(), 60))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Error(t, l.Wait(ctx, 60))
}

func TestTokenLimiter_Disabled(t *testing.T) {
	l := NewTokenLimiter(0)

	require.NoError(t, l.Wait(context.Background(), 1_000_000))
	assert.Zero(t, l.GetRemaining())
}

func TestNewRequestLimiter(t *testing.T) {
	assert.True(t, NewRequestLimiter(0).Allow())

	l := NewRequestLimiter(15)
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}
