package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// TokenLimiter throttles LLM calls by prompt size, refilling a per-minute
// token budget continuously.
type TokenLimiter struct {
	limiter *rate.Limiter
	max     int
}

// NewTokenLimiter creates a limiter allowing tokensPerMinute tokens per minute.
// A non-positive budget disables limiting.
func NewTokenLimiter(tokensPerMinute int) *TokenLimiter {
	if tokensPerMinute <= 0 {
		return &TokenLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	perSecond := rate.Limit(float64(tokensPerMinute) / time.Minute.Seconds())
	return &TokenLimiter{
		limiter: rate.NewLimiter(perSecond, tokensPerMinute),
		max:     tokensPerMinute,
	}
}

// Wait blocks until n tokens are available or ctx is done. Requests larger
// than the whole budget are clamped so they can still proceed once the
// bucket is full.
func (l *TokenLimiter) Wait(ctx context.Context, n int) error {
	if l.max == 0 {
		return nil
	}
	if n > l.max {
		n = l.max
	}
	if err := l.limiter.WaitN(ctx, n); err != nil {
		return fmt.Errorf("token limiter: %w", err)
	}
	return nil
}

// GetRemaining reports the tokens currently available.
func (l *TokenLimiter) GetRemaining() int {
	if l.max == 0 {
		return 0
	}
	return int(l.limiter.Tokens())
}

// NewRequestLimiter returns a limiter spacing requests evenly across a
// minute. A non-positive rate disables limiting.
func NewRequestLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}
