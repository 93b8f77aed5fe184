// Package backoff implements the exponential backoff used while waiting for
// a freshly started signing agent to accept connections.
package backoff

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Strategy returns how long to wait before the given retry.
type Strategy interface {
	Backoff(retries uint) time.Duration
}

// Exponential waits BaseDelay * Multiplier^retries + rand(0, Jitter), never
// more than MaxDelay before jitter.
type Exponential struct {
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the exponential part of the delay.
	MaxDelay time.Duration
	// Multiplier is the growth factor between retries.
	Multiplier float64
	// Jitter is the upper bound of the random duration added to each delay.
	Jitter time.Duration

	rand *rand.Rand
}

// NewReadinessExponential returns a strategy tuned for polling a local
// socket that normally comes up within a second.
func NewReadinessExponential(r *rand.Rand) *Exponential {
	//
	// | Retries | Delay before jitter |
	// | ------- | ------------------- |
	// | 0       | 50 ms               |
	// | 1       | 80 ms               |
	// | 2       | 128 ms              |
	// | 3       | 205 ms              |
	// | 4       | 328 ms              |
	// | 5       | 524 ms              |
	// | 6       | 839 ms              |
	// | 7       | 1 second            |
	// | ...     | 1 second            |
	return &Exponential{
		BaseDelay:  50 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Multiplier: 1.6,
		Jitter:     20 * time.Millisecond,
		rand:       r,
	}
}

// Backoff returns the duration to wait before retry number retries.
func (e *Exponential) Backoff(retries uint) time.Duration {
	backoff := math.Min(
		float64(e.MaxDelay),
		float64(e.BaseDelay)*math.Pow(e.Multiplier, float64(retries)),
	)
	if e.Jitter > 0 && e.rand != nil {
		backoff += float64(e.Jitter) * e.rand.Float64()
	}
	return time.Duration(backoff).Round(time.Millisecond)
}

// Retry calls fn until it succeeds or ctx is done, sleeping according to s
// between attempts. On cancellation it returns the last error from fn, or
// ctx.Err() if fn never ran.
func Retry(ctx context.Context, s Strategy, fn func(context.Context) error) error {
	var last error
	for retries := uint(0); ; retries++ {
		if err := ctx.Err(); err != nil {
			if last != nil {
				return last
			}
			return err
		}
		if last = fn(ctx); last == nil {
			return nil
		}

		timer := time.NewTimer(s.Backoff(retries))
		select {
		case <-ctx.Done():
			timer.Stop()
			return last
		case <-timer.C:
		}
	}
}
