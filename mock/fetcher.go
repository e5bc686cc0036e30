package mock

import (
	"context"

	"github.com/fwojciec/bibfetch"
)

var (
	_ bibfetch.Fetcher       = (*Fetcher)(nil)
	_ bibfetch.DomainLimiter = (*DomainLimiter)(nil)
)

// Fetcher is a mock implementation of bibfetch.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

// DomainLimiter is a mock implementation of bibfetch.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
