package assist

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedProvider wraps a Provider with a token-bucket request limit.
// It only delays calls; a failed call is returned unchanged and never retried.
type RateLimitedProvider struct {
	next    Provider
	limiter *rate.Limiter
}

// NewRateLimitedProvider wraps next so that at most requestsPerMin
// completions start per minute. A requestsPerMin of 0 means unlimited.
func NewRateLimitedProvider(next Provider, requestsPerMin int) *RateLimitedProvider {
	p := &RateLimitedProvider{next: next}
	if requestsPerMin > 0 {
		r := rate.Limit(float64(requestsPerMin) / 60.0)
		p.limiter = rate.NewLimiter(r, requestsPerMin)
	}
	return p
}

// Complete blocks until the request is allowed or the context is done, then
// delegates to the wrapped provider.
func (p *RateLimitedProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limit: %w", err)
		}
	}
	return p.next.Complete(ctx, req)
}
