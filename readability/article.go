// Package readability provides the last-resort article translator. It runs
// go-readability's content scoring on pages where no other translator,
// including the web page fallback, could find a title.
package readability

import (
	"bytes"
	"context"
	nurl "net/url"
	"strings"

	"github.com/fwojciec/bibfetch"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Ensure Article implements bibfetch.Translator at compile time.
var _ bibfetch.Translator = (*Article)(nil)

// ArticleID identifies the translator.
const ArticleID = "readability"

// Article describes the main article of a page as a webpage item.
type Article struct{}

// NewArticle creates a new Article translator.
func NewArticle() *Article {
	return &Article{}
}

// Info returns the translator metadata. The empty target makes it generic.
func (a *Article) Info() bibfetch.TranslatorInfo {
	return bibfetch.TranslatorInfo{ID: ArticleID, Label: "Article (readability)"}
}

// Extract returns one webpage item built from the readable article, or no
// items when readability finds no title.
func (a *Article) Extract(_ context.Context, doc *bibfetch.Document) ([]*bibfetch.Item, error) {
	if doc == nil || doc.Root == nil {
		return nil, bibfetch.Errorf(bibfetch.EMALFORMED, "no document")
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc.Root); err != nil {
		return nil, bibfetch.Wrapf(bibfetch.EMALFORMED, err, "rendering document")
	}

	var pageURL *nurl.URL
	if u, err := nurl.Parse(doc.URL); err == nil && u.Host != "" {
		pageURL = u
	}

	article, err := readability.FromReader(&buf, pageURL)
	if err != nil {
		return nil, bibfetch.Wrapf(bibfetch.EEXTRACT, err, "readability")
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		return nil, nil
	}

	item := &bibfetch.Item{
		Type:      bibfetch.ItemWebPage,
		Title:     title,
		Container: strings.TrimSpace(article.SiteName),
		Abstract:  strings.TrimSpace(article.Excerpt),
		Identifiers: bibfetch.Identifiers{
			URL: doc.URL,
		},
	}
	if c := bibfetch.ParseCreator(byline(article.Byline)); c.Family != "" {
		item.Authors = append(item.Authors, c)
	}
	return []*bibfetch.Item{item}, nil
}

// byline strips the "By " prefix most bylines carry.
func byline(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 3 && strings.EqualFold(s[:3], "by ") {
		s = s[3:]
	}
	return strings.TrimSpace(s)
}
