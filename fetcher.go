package bibfetch

import "context"

// Fetcher retrieves page markup and remote metadata documents.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch retrieves the body at url.
	// The context controls timeout and cancellation. Transport failures
	// are reported as ENETWORK and timeouts as ETIMEOUT.
	Fetch(ctx context.Context, url string) (body string, err error)

	// Close releases fetcher resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
