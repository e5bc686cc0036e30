// Package bloom deduplicates the page URLs of a batch conversion with a
// Bloom filter. Set confirms filter hits against the exact URLs so no page
// is ever skipped by a false positive.
package bloom

import (
	"net/url"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter wraps a Bloom filter for URL deduplication.
// Filter is safe for concurrent use.
type Filter struct {
	mu sync.Mutex
	f  *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add adds a URL to the filter.
func (f *Filter) Add(rawURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.f.AddString(NormalizeURL(rawURL))
}

// Test returns true if the URL might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.f.TestString(NormalizeURL(rawURL))
}

// Seen adds the URL and reports whether it was possibly present before.
func (f *Filter) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.f.TestAndAddString(NormalizeURL(rawURL))
}

// Set reports first occurrences of URLs exactly. The filter screens
// lookups and every hit is confirmed against the normalized URLs seen so
// far. Set is safe for concurrent use.
type Set struct {
	filter *Filter
	mu     sync.Mutex
	seen   map[string]struct{}
}

// NewSet creates a Set sized for n expected URLs.
func NewSet(n uint, fpRate float64) *Set {
	return &Set{
		filter: NewFilter(n, fpRate),
		seen:   make(map[string]struct{}, n),
	}
}

// Add records the URL and reports whether it was not seen before.
func (s *Set) Add(rawURL string) bool {
	key := NormalizeURL(rawURL)
	hit := s.filter.Seen(rawURL)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; hit && ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint(f.f.ApproximatedSize())
}

// trackingParams are query parameters that never change the cited page.
var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "fbclid", "gclid"}

// NormalizeURL canonicalizes a page URL so trivially different spellings
// of the same page collapse: the scheme and host are lowercased, the
// fragment and tracking parameters are dropped and a trailing slash is
// removed. Unparseable input is returned trimmed.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.RawQuery != "" {
		q := u.Query()
		for _, p := range trackingParams {
			q.Del(p)
		}
		u.RawQuery = q.Encode()
	}
	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = ""
	}
	return u.String()
}
