// Package http provides an HTTP-based implementation of bibfetch.Fetcher
// for page markup and metadata APIs that don't require JavaScript rendering.
package http

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/bibfetch"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout (10s).
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent identifies bibfetch to remote servers.
const DefaultUserAgent = "bibfetch/1.0 (+https://github.com/fwojciec/bibfetch)"

// MaxBodySize caps the number of bytes read from a response.
const MaxBodySize = 32 << 20

// Ensure Fetcher implements bibfetch.Fetcher at compile time.
var _ bibfetch.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves documents from URLs using HTTP requests.
// Unlike rod.Fetcher, this does not execute JavaScript and is suitable
// for static pages and APIs only.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	accept    string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithAccept sets the Accept header, for example to request RIS from a
// DOI resolver through content negotiation.
func WithAccept(accept string) Option {
	return func(f *Fetcher) {
		f.accept = accept
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the body at the given URL. Timeouts and HTTP 408 are
// reported as ETIMEOUT, 404 and 410 as ENOTFOUND, other client errors
// except 429 as EINVALID and any other failure as ENETWORK.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", bibfetch.Wrapf(bibfetch.EINVALID, err, "invalid request URL %s", url)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if f.accept != "" {
		req.Header.Set("Accept", f.accept)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", transportError(err, url)
	}
	defer resp.Body.Close()

	switch code := resp.StatusCode; {
	case code == http.StatusNotFound || code == http.StatusGone:
		return "", bibfetch.Errorf(bibfetch.ENOTFOUND, "HTTP %d for %s", code, url)
	case code == http.StatusRequestTimeout:
		return "", bibfetch.Errorf(bibfetch.ETIMEOUT, "HTTP %d for %s", code, url)
	case code >= 400 && code < 500 && code != http.StatusTooManyRequests:
		return "", bibfetch.Errorf(bibfetch.EINVALID, "HTTP %d for %s", code, url)
	case code != http.StatusOK:
		return "", bibfetch.Errorf(bibfetch.ENETWORK, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return "", transportError(err, url)
	}

	return string(body), nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

func transportError(err error, url string) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return bibfetch.Wrapf(bibfetch.ETIMEOUT, err, "fetching %s", url)
	}
	return bibfetch.Wrapf(bibfetch.ENETWORK, err, "fetching %s", url)
}
