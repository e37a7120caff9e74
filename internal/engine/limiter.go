package engine

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// SearchLimiter bounds concurrent search.list calls and paces them. The
// Data API tolerates bursts but sustained parallel searches drain quota
// fast, so concurrency stays small and requests are rate-spaced.
type SearchLimiter struct {
	sem     chan struct{}
	limiter *rate.Limiter
}

var (
	searchLimiter     *SearchLimiter
	searchLimiterOnce sync.Once
)

// Limiter returns the process-wide search limiter built from Cfg.
func Limiter() *SearchLimiter {
	searchLimiterOnce.Do(func() {
		searchLimiter = NewSearchLimiter(Cfg.MaxSearchConcurrency, Cfg.SearchRatePerSec)
	})
	return searchLimiter
}

// NewSearchLimiter builds a limiter with the given concurrency cap and
// requests-per-second pace.
func NewSearchLimiter(concurrency int, perSec float64) *SearchLimiter {
	if concurrency < 1 {
		concurrency = 1
	}
	if perSec <= 0 {
		perSec = 1
	}
	return &SearchLimiter{
		sem:     make(chan struct{}, concurrency),
		limiter: rate.NewLimiter(rate.Limit(perSec), 1),
	}
}

// Do acquires a slot, waits for the pacer, and runs fn. Context
// cancellation aborts the wait at either step.
func (l *SearchLimiter) Do(ctx context.Context, fn func() error) error {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.sem }()

	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}
	return fn()
}
