package arxiv

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/bibfetch"
)

// Target matches arXiv abstract and PDF pages.
const Target = `^https?://(?:www\.|export\.)?arxiv\.org/(?:abs|pdf)/`

// Ensure Translator implements bibfetch.Translator and bibfetch.Detector at compile time.
var (
	_ bibfetch.Translator = (*Translator)(nil)
	_ bibfetch.Detector   = (*Translator)(nil)
)

// Translator extracts the arXiv entry of an arxiv.org page through the API.
type Translator struct {
	client *Client
}

// NewTranslator creates a Translator that resolves entries through c.
func NewTranslator(c *Client) *Translator {
	return &Translator{client: c}
}

// Info returns the translator metadata.
func (t *Translator) Info() bibfetch.TranslatorInfo {
	return bibfetch.TranslatorInfo{
		ID:     "arxiv",
		Label:  "arXiv.org",
		Target: Target,
	}
}

// Detect reports whether an identifier can be resolved for the page.
func (t *Translator) Detect(_ context.Context, doc *bibfetch.Document) bool {
	return pageID(doc) != ""
}

// Extract looks up the page's entry.
func (t *Translator) Extract(ctx context.Context, doc *bibfetch.Document) ([]*bibfetch.Item, error) {
	id := pageID(doc)
	if id == "" {
		return nil, nil
	}
	e, err := t.client.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return []*bibfetch.Item{e.Item()}, nil
}

// pageID resolves the identifier from the citation_arxiv_id meta tag,
// falling back to the page URL.
func pageID(doc *bibfetch.Document) string {
	if doc.Root != nil {
		meta := goquery.NewDocumentFromNode(doc.Root).Find(`meta[name="citation_arxiv_id"]`).First()
		if content, ok := meta.Attr("content"); ok {
			if id, err := ParseID(content); err == nil {
				return id
			}
		}
	}
	if id, err := ParseID(doc.URL); err == nil {
		return id
	}
	return ""
}
