package qsearch

import (
	"math"
	"time"
)

/*
RetryPolicy bounds the search loop. The zero value retries forever with no
delay, which is what an interactive operator expects; a reusable caller
should set MaxAttempts or Timeout.
*/
type RetryPolicy struct {
	MaxAttempts int           // 0 means unbounded
	Timeout     time.Duration // 0 means no deadline for one search
	Strategy    RetryStrategy // nil means retry immediately
}

// RetryStrategy defines the interface for retry behavior
type RetryStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff implements RetryStrategy
type ExponentialBackoff struct {
	Initial time.Duration
	Max     time.Duration
}

func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := float64(eb.Initial) * math.Pow(2, float64(attempt-1))
	if eb.Max > 0 && delay > float64(eb.Max) {
		return eb.Max
	}
	if delay >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(delay)
}

func (p *RetryPolicy) exhausted(attempts int) bool {
	return p != nil && p.MaxAttempts > 0 && attempts >= p.MaxAttempts
}

func (p *RetryPolicy) delay(attempt int) time.Duration {
	if p == nil || p.Strategy == nil {
		return 0
	}
	return p.Strategy.NextDelay(attempt)
}
