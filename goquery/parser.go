// Package goquery implements page parsing and DOM-based translators using
// github.com/PuerkitoBio/goquery.
package goquery

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/bibfetch"
	"golang.org/x/net/html"
)

// Ensure Parser implements bibfetch.DocumentParser at compile time.
var _ bibfetch.DocumentParser = (*Parser)(nil)

// Parser parses page markup into a fresh bibfetch.Document per call.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses the page markup. Blank markup, markup that is not valid
// UTF-8 and markup without an element are reported as EMALFORMED.
func (p *Parser) Parse(page *bibfetch.Page) (*bibfetch.Document, error) {
	if page == nil || strings.TrimSpace(page.Markup) == "" {
		return nil, bibfetch.Errorf(bibfetch.EMALFORMED, "empty markup")
	}
	if !utf8.ValidString(page.Markup) {
		return nil, bibfetch.Errorf(bibfetch.EMALFORMED, "markup is not valid UTF-8")
	}

	if !strings.Contains(page.Markup, "<") {
		return nil, bibfetch.Errorf(bibfetch.EMALFORMED, "markup contains no elements")
	}

	root, err := html.Parse(strings.NewReader(page.Markup))
	if err != nil {
		return nil, bibfetch.Wrapf(bibfetch.EMALFORMED, err, "failed to parse HTML")
	}

	rootURL := page.RootURL
	if rootURL == "" {
		rootURL = page.URL
	}
	return &bibfetch.Document{
		URL:     page.URL,
		RootURL: rootURL,
		Root:    root,
	}, nil
}

// selection wraps the document root for querying.
func selection(doc *bibfetch.Document) *goquery.Document {
	if doc == nil || doc.Root == nil {
		return goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	return goquery.NewDocumentFromNode(doc.Root)
}

// hasSelector reports whether the document contains an element matching the selector.
func hasSelector(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}
