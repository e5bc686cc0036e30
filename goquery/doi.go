package goquery

import (
	"context"
	"regexp"
	"strings"

	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/ris"
	"golang.org/x/sync/errgroup"
)

// DefaultDOIResolver is the resolver queried for RIS by content negotiation.
const DefaultDOIResolver = "https://doi.org/"

// DefaultMaxDOIs caps the number of DOIs resolved from page text.
const DefaultMaxDOIs = 5

var doiRe = regexp.MustCompile(`\b10\.\d{4,9}/[^\s"'<>&]+`)

// FindDOI returns the first DOI in s with trailing punctuation removed, or
// an empty string.
func FindDOI(s string) string {
	return cleanDOI(doiRe.FindString(s))
}

func cleanDOI(doi string) string {
	return strings.TrimRight(doi, ".,;:)]}")
}

// Ensure DOI implements bibfetch.Translator and bibfetch.Detector at compile time.
var (
	_ bibfetch.Translator = (*DOI)(nil)
	_ bibfetch.Detector   = (*DOI)(nil)
)

// DOI resolves DOIs found on a page into items. A DOI in the page metadata
// identifies the page itself; otherwise DOIs in the page text are resolved
// as a list. The fetcher must request RIS
// (Accept: application/x-research-info-systems).
type DOI struct {
	fetcher     bibfetch.Fetcher
	resolver    string
	maxDOIs     int
	concurrency int
}

// DOIOption configures a DOI translator.
type DOIOption func(*DOI)

// WithResolver overrides the DOI resolver base URL. Used by tests.
func WithResolver(base string) DOIOption {
	return func(d *DOI) {
		d.resolver = base
	}
}

// WithMaxDOIs caps the number of DOIs resolved from page text.
func WithMaxDOIs(n int) DOIOption {
	return func(d *DOI) {
		d.maxDOIs = n
	}
}

// NewDOI creates a DOI translator that fetches RIS records through f.
func NewDOI(f bibfetch.Fetcher, opts ...DOIOption) *DOI {
	d := &DOI{
		fetcher:     f,
		resolver:    DefaultDOIResolver,
		maxDOIs:     DefaultMaxDOIs,
		concurrency: 3,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Info returns the translator metadata.
func (d *DOI) Info() bibfetch.TranslatorInfo {
	return bibfetch.TranslatorInfo{
		ID:    "doi",
		Label: "DOI",
	}
}

// Detect reports whether the page mentions a DOI.
func (d *DOI) Detect(_ context.Context, doc *bibfetch.Document) bool {
	return len(d.dois(doc)) > 0
}

// Extract resolves the page DOIs. DOIs that cannot be resolved are
// skipped; the error of the last failure is returned when none resolves.
func (d *DOI) Extract(ctx context.Context, doc *bibfetch.Document) ([]*bibfetch.Item, error) {
	dois := d.dois(doc)
	if len(dois) == 0 {
		return nil, nil
	}

	results := make([]*bibfetch.Item, len(dois))
	errs := make([]error, len(dois))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, doi := range dois {
		g.Go(func() error {
			results[i], errs[i] = d.resolve(gctx, doi)
			return nil
		})
	}
	_ = g.Wait()

	var (
		items   []*bibfetch.Item
		lastErr error
	)
	for i, item := range results {
		if errs[i] != nil {
			lastErr = errs[i]
			continue
		}
		if item != nil {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil, lastErr
	}
	return items, nil
}

func (d *DOI) resolve(ctx context.Context, doi string) (*bibfetch.Item, error) {
	body, err := d.fetcher.Fetch(ctx, d.resolver+doi)
	if err != nil {
		return nil, err
	}
	record, err := ris.Parse(body)
	if err != nil {
		return nil, err
	}
	item := ris.ToItem(record)
	if item.Identifiers.DOI == "" {
		item.Identifiers.DOI = doi
	}
	return item, nil
}

// dois returns the metadata DOI when present, otherwise the distinct DOIs
// in the page text up to the configured maximum.
func (d *DOI) dois(doc *bibfetch.Document) []string {
	sel := selection(doc)
	if doi := doiFromMeta(collectMeta(sel)); doi != "" {
		return []string{doi}
	}

	seen := make(map[string]bool)
	var out []string
	for _, m := range doiRe.FindAllString(sel.Find("body").Text(), -1) {
		doi := cleanDOI(m)
		key := strings.ToLower(doi)
		if doi == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, doi)
		if len(out) >= d.maxDOIs {
			break
		}
	}
	return out
}
