package goquery

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/ris"
)

// Ensure RISLink implements bibfetch.Translator and bibfetch.Detector at compile time.
var (
	_ bibfetch.Translator = (*RISLink)(nil)
	_ bibfetch.Detector   = (*RISLink)(nil)
)

// risLinkSelector matches links to RIS exports.
const risLinkSelector = `link[type="` + ris.ContentType + `"], a[type="` + ris.ContentType + `"], a[href$=".ris"], link[href$=".ris"]`

// RISLink follows a page's link to an RIS export and converts the records.
type RISLink struct {
	fetcher bibfetch.Fetcher
}

// NewRISLink creates a RISLink translator that downloads exports through f.
func NewRISLink(f bibfetch.Fetcher) *RISLink {
	return &RISLink{fetcher: f}
}

// Info returns the translator metadata.
func (r *RISLink) Info() bibfetch.TranslatorInfo {
	return bibfetch.TranslatorInfo{
		ID:    "ris-link",
		Label: "RIS Export Link",
	}
}

// Detect reports whether the page links to an RIS export.
func (r *RISLink) Detect(_ context.Context, doc *bibfetch.Document) bool {
	return risLink(doc) != ""
}

// Extract downloads the linked export and converts every record.
func (r *RISLink) Extract(ctx context.Context, doc *bibfetch.Document) ([]*bibfetch.Item, error) {
	link := risLink(doc)
	if link == "" {
		return nil, nil
	}

	body, err := r.fetcher.Fetch(ctx, link)
	if err != nil {
		return nil, err
	}
	records, err := ris.ParseAll(body)
	if err != nil {
		return nil, err
	}

	items := make([]*bibfetch.Item, 0, len(records))
	for _, rec := range records {
		items = append(items, ris.ToItem(rec))
	}
	return items, nil
}

// risLink returns the absolute URL of the first RIS export link.
func risLink(doc *bibfetch.Document) string {
	var link string
	selection(doc).Find(risLinkSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "javascript:") {
			return true
		}
		link = resolveURL(doc.URL, href)
		return link == ""
	})
	return link
}

// resolveURL resolves href against base. Returns an empty string when
// either cannot be parsed or the result is not http(s).
func resolveURL(base, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if b, err := url.Parse(base); err == nil {
		ref = b.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	ref.Fragment = ""
	return ref.String()
}
