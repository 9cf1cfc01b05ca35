package ai

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy bounds reattempts of a failed provider call and shapes
// the delay between them.
type RetryPolicy struct {
	// MaxRetries is the number of reattempts after the first call.
	MaxRetries int

	// BaseDelay is the delay before the first reattempt.
	BaseDelay time.Duration

	// MaxDelay caps the grown delay.
	MaxDelay time.Duration

	// Factor is the per-attempt delay multiplier.
	Factor float64
}

// DefaultRetryPolicy returns the standard policy: two reattempts,
// delays growing from 1s by 2x up to 30s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
		Factor:     2.0,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxRetries < 0 {
		p.MaxRetries = def.MaxRetries
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = def.BaseDelay
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	if p.Factor <= 0 {
		p.Factor = def.Factor
	}
	return p
}

// CompleteWithRetry runs p.Complete under the retry policy.
// Authentication failures are permanent and returned on first sight;
// rate limits, token limits, timeouts and other provider failures are
// retried until the attempt budget runs out.
func CompleteWithRetry(ctx context.Context, p Provider, req Request, policy RetryPolicy) (*Response, error) {
	policy = policy.normalized()

	return backoff.Retry(ctx, func() (*Response, error) {
		resp, err := p.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		if IsPermanent(err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	},
		backoff.WithBackOff(newProviderBackoff(policy)),
		backoff.WithMaxTries(uint(policy.MaxRetries)+1), // 1 original + MaxRetries
		backoff.WithMaxElapsedTime(0),                   // rely on context for overall timeout
	)
}

func newProviderBackoff(policy RetryPolicy) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.BaseDelay
	b.MaxInterval = policy.MaxDelay
	b.Multiplier = policy.Factor
	b.RandomizationFactor = 0 // delays follow the policy exactly
	return b
}
