package http

import (
	"context"
	"net/url"
	"strings"

	"github.com/fwojciec/bibfetch"
)

var _ bibfetch.Fetcher = (*LimitedFetcher)(nil)

// LimitedFetcher waits on a per-domain limiter before every fetch.
type LimitedFetcher struct {
	fetcher bibfetch.Fetcher
	limiter bibfetch.DomainLimiter
}

// NewLimitedFetcher wraps f so requests to the same host are paced by l.
func NewLimitedFetcher(f bibfetch.Fetcher, l bibfetch.DomainLimiter) *LimitedFetcher {
	return &LimitedFetcher{fetcher: f, limiter: l}
}

// Fetch waits for the URL's host and then delegates. URLs without a host
// are passed through unthrottled.
func (f *LimitedFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		if err := f.limiter.Wait(ctx, strings.ToLower(u.Hostname())); err != nil {
			return "", err
		}
	}
	return f.fetcher.Fetch(ctx, rawURL)
}

// Close closes the wrapped fetcher.
func (f *LimitedFetcher) Close() error {
	return f.fetcher.Close()
}
