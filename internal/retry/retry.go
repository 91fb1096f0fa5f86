// Package retry implements RetryPolicy (spec.md §4.1): classifying an
// error as retryable and computing the backoff delay for an attempt. It
// holds no state between calls and is safe to share across concurrent
// requests.
package retry

import (
	"context"
	"math/rand"
	"time"

	"ecomm/api-gateway/internal/gwerror"
)

// Config mirrors spec.md §3's RetryConfig. Defaults match spec.md exactly.
type Config struct {
	MaxRetries      int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	RetryableStatus map[int]bool
}

// DefaultConfig returns {maxRetries:3, baseDelay:1s, maxDelay:5s,
// retryableStatuses:{500,502,503,504}}.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  1000 * time.Millisecond,
		MaxDelay:   5000 * time.Millisecond,
		RetryableStatus: map[int]bool{
			500: true, 502: true, 503: true, 504: true,
		},
	}
}

// Policy evaluates Config against errors and attempt numbers. It carries
// no mutable state.
type Policy struct {
	cfg Config
}

func New(cfg Config) *Policy {
	if cfg.RetryableStatus == nil {
		cfg.RetryableStatus = DefaultConfig().RetryableStatus
	}
	return &Policy{cfg: cfg}
}

// ShouldRetry returns true iff attempt < maxRetries and the error is a
// transport timeout or an HTTP error in retryableStatuses. Attempts are
// 1-indexed. Any other error shape (already-surfaced connection-refused,
// malformed response, local programming error) is never retried.
func (p *Policy) ShouldRetry(err error, attempt int) bool {
	if attempt >= p.cfg.MaxRetries {
		return false
	}
	ge := gwerror.AsError(err)
	if ge == nil {
		return false
	}
	switch ge.Kind {
	case gwerror.KindTransport:
		return ge.Timeout
	case gwerror.KindBackendResponse:
		return p.cfg.RetryableStatus[ge.Status]
	default:
		return false
	}
}

// Delay computes min(maxDelay, baseDelay * 2^attempt) + jitter, jitter
// uniform in [0,10) ms. The 10ms ceiling is deliberately small — it only
// de-synchronizes concurrent retriers, it does not smooth load.
func (p *Policy) Delay(attempt int) time.Duration {
	shift := attempt
	if shift > 30 {
		shift = 30
	}
	backoff := p.cfg.BaseDelay * time.Duration(1<<uint(shift))
	if backoff > p.cfg.MaxDelay || backoff <= 0 {
		backoff = p.cfg.MaxDelay
	}
	jitter := time.Duration(rand.Intn(10)) * time.Millisecond
	return backoff + jitter
}

// Sleep blocks for Delay(attempt) or until ctx is done, whichever comes
// first. Every call is a suspension point; no lock may be held across it.
func (p *Policy) Sleep(ctx context.Context, attempt int) {
	t := time.NewTimer(p.Delay(attempt))
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// Config returns a copy of the policy's configuration.
func (p *Policy) Config() Config { return p.cfg }
