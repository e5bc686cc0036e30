package bibfetch

import "golang.org/x/net/html"

// Page is the raw input of a translator run.
type Page struct {
	URL     string
	RootURL string
	Markup  string
}

// Document is a parsed page. Each translator run receives its own
// Document, so translators cannot observe each other's changes.
type Document struct {
	URL     string
	RootURL string
	Root    *html.Node
}

// DocumentParser parses page markup into a Document.
type DocumentParser interface {
	// Parse returns EMALFORMED if the markup cannot be parsed.
	Parse(page *Page) (*Document, error)
}
