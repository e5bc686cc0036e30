// Package trafilatura provides the fallback web page translator. It runs
// go-trafilatura's metadata and main content extraction on pages that no
// specific or metadata-based translator recognized.
package trafilatura

import (
	"bytes"
	"context"
	nurl "net/url"
	"strings"

	"github.com/fwojciec/bibfetch"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure WebPage implements bibfetch.Translator at compile time.
var _ bibfetch.Translator = (*WebPage)(nil)

// WebPageID identifies the fallback translator. It is registered last so
// it ranks below every other generic translator.
const WebPageID = "webpage"

// WebPage describes any page as a webpage item using its title, byline,
// publication date and site name.
type WebPage struct{}

// NewWebPage creates a new WebPage translator.
func NewWebPage() *WebPage {
	return &WebPage{}
}

// Info returns the translator metadata. The empty target makes it generic.
func (w *WebPage) Info() bibfetch.TranslatorInfo {
	return bibfetch.TranslatorInfo{ID: WebPageID, Label: "Web Page"}
}

// Extract returns a single webpage item, or no items when the page has no
// recognizable title.
func (w *WebPage) Extract(_ context.Context, doc *bibfetch.Document) ([]*bibfetch.Item, error) {
	if doc == nil || doc.Root == nil {
		return nil, bibfetch.Errorf(bibfetch.EMALFORMED, "no document")
	}

	markup, err := renderNode(doc.Root)
	if err != nil {
		return nil, bibfetch.Wrapf(bibfetch.EMALFORMED, err, "rendering document")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}
	if u, err := nurl.Parse(doc.URL); err == nil {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(markup), opts)
	if err != nil {
		return nil, err
	}

	meta := result.Metadata
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		return nil, nil
	}

	item := &bibfetch.Item{
		Type:      bibfetch.ItemWebPage,
		Title:     title,
		Container: strings.TrimSpace(meta.Sitename),
		Abstract:  strings.TrimSpace(meta.Description),
		Language:  meta.Language,
		Identifiers: bibfetch.Identifiers{
			URL: doc.URL,
		},
	}
	for _, name := range strings.Split(meta.Author, ";") {
		if c := bibfetch.ParseCreator(name); c.Family != "" {
			item.Authors = append(item.Authors, c)
		}
	}
	if !meta.Date.IsZero() {
		item.Year = meta.Date.Format("2006")
		item.Month = meta.Date.Format("01")
	}
	item.Keywords = append(item.Keywords, meta.Categories...)
	item.Keywords = append(item.Keywords, meta.Tags...)
	return []*bibfetch.Item{item}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
