// Package arxiv converts arXiv identifiers into BibTeX entries through the
// arXiv API Atom feed, and provides a translator for arxiv.org pages.
package arxiv

import (
	"context"
	"net/url"
	"strings"

	"github.com/fwojciec/bibfetch"
	"golang.org/x/sync/errgroup"
)

// DefaultAPIBase is the arXiv API query endpoint.
const DefaultAPIBase = "https://export.arxiv.org/api/query"

// DefaultConcurrency bounds parallel lookups in LookupAll.
const DefaultConcurrency = 3

// Client looks up arXiv entries by identifier.
type Client struct {
	fetcher     bibfetch.Fetcher
	limiter     bibfetch.DomainLimiter
	apiBase     string
	concurrency int
}

// Option configures a Client.
type Option func(*Client)

// WithAPIBase overrides the API endpoint. Used by tests.
func WithAPIBase(base string) Option {
	return func(c *Client) {
		c.apiBase = base
	}
}

// WithLimiter throttles requests to the API host.
func WithLimiter(l bibfetch.DomainLimiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithConcurrency sets the number of parallel lookups in LookupAll.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		c.concurrency = n
	}
}

// NewClient creates a Client that retrieves feeds through f.
func NewClient(f bibfetch.Fetcher, opts ...Option) *Client {
	c := &Client{
		fetcher:     f,
		apiBase:     DefaultAPIBase,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches the entry for id. The id may be any form accepted by
// ParseID. Returns ENOTFOUND when the API has no such entry.
func (c *Client) Lookup(ctx context.Context, id string) (*Entry, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	u := c.apiBase + "?id_list=" + url.QueryEscape(id)
	if c.limiter != nil {
		if parsed, err := url.Parse(c.apiBase); err == nil {
			if err := c.limiter.Wait(ctx, parsed.Hostname()); err != nil {
				return nil, err
			}
		}
	}

	body, err := c.fetcher.Fetch(ctx, u)
	if err != nil {
		if bibfetch.ErrorCode(err) == bibfetch.EINTERNAL {
			return nil, bibfetch.Wrapf(bibfetch.ENETWORK, err, "arXiv lookup %s", id)
		}
		return nil, err
	}

	entries, err := ParseFeed(strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, bibfetch.Errorf(bibfetch.ENOTFOUND, "arXiv entry %s not found", id)
}

// LookupAll fetches several entries with bounded concurrency. Results keep
// the order of ids. The first failure cancels the remaining lookups.
func (c *Client) LookupAll(ctx context.Context, ids []string) ([]*Entry, error) {
	entries := make([]*Entry, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.concurrency, 1))
	for i, id := range ids {
		g.Go(func() error {
			e, err := c.Lookup(gctx, id)
			if err != nil {
				return err
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
