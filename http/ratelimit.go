package http

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/bibfetch"
	"golang.org/x/time/rate"
)

var _ bibfetch.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter provides per-domain rate limiting using token buckets.
// It creates a separate rate limiter for each domain, allowing concurrent
// requests to different domains while enforcing rate limits within each domain.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rates    map[string]rate.Limit
	rps      float64
}

// NewDomainLimiter creates a new DomainLimiter with the specified requests per second limit.
// Each domain gets its own limiter with a burst of 1 (no bursting allowed).
// Domains are compared case-insensitively.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rates:    make(map[string]rate.Limit),
		rps:      rps,
	}
}

// SetDomainRate overrides the rate for one domain. The arXiv API, for
// example, asks clients to make no more than one request every three seconds.
func (d *DomainLimiter) SetDomainRate(domain string, rps float64) {
	domain = strings.ToLower(domain)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rates[domain] = rate.Limit(rps)
	if l, ok := d.limiters[domain]; ok {
		l.SetLimit(rate.Limit(rps))
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	domain = strings.ToLower(domain)
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		r, ok := d.rates[domain]
		if !ok {
			r = rate.Limit(d.rps)
		}
		limiter = rate.NewLimiter(r, 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
