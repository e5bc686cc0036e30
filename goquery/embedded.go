package goquery

import (
	"context"
	"strings"

	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/bibtex"
)

// Ensure EmbeddedMetadata implements bibfetch.Translator and bibfetch.Detector at compile time.
var (
	_ bibfetch.Translator = (*EmbeddedMetadata)(nil)
	_ bibfetch.Detector   = (*EmbeddedMetadata)(nil)
)

// EmbeddedMetadata extracts an item from the metadata publishers embed in
// <meta> tags: Highwire Press (citation_*), Dublin Core (DC.*) and
// OpenGraph (og:*). It is generic and applies to every page.
type EmbeddedMetadata struct {
	converter bibfetch.Converter
}

// EmbeddedOption configures EmbeddedMetadata.
type EmbeddedOption func(*EmbeddedMetadata)

// WithConverter converts abstracts that contain HTML markup to text.
func WithConverter(c bibfetch.Converter) EmbeddedOption {
	return func(e *EmbeddedMetadata) {
		e.converter = c
	}
}

// NewEmbeddedMetadata creates an EmbeddedMetadata translator.
func NewEmbeddedMetadata(opts ...EmbeddedOption) *EmbeddedMetadata {
	e := &EmbeddedMetadata{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Info returns the translator metadata.
func (e *EmbeddedMetadata) Info() bibfetch.TranslatorInfo {
	return bibfetch.TranslatorInfo{
		ID:    "embedded-metadata",
		Label: "Embedded Metadata",
	}
}

var titleKeys = []string{"citation_title", "dc.title", "eprints.title", "og:title"}

// Detect reports whether the page carries a title in its metadata.
func (e *EmbeddedMetadata) Detect(_ context.Context, doc *bibfetch.Document) bool {
	return collectMeta(selection(doc)).has(titleKeys...)
}

// Extract builds a single item from the page metadata.
func (e *EmbeddedMetadata) Extract(_ context.Context, doc *bibfetch.Document) ([]*bibfetch.Item, error) {
	m := collectMeta(selection(doc))
	if !m.has(titleKeys...) {
		return nil, nil
	}

	item := &bibfetch.Item{
		Type:      itemType(m),
		Title:     m.first(titleKeys...),
		Container: m.first("citation_journal_title", "citation_conference_title", "citation_book_title", "citation_inbook_title", "prism.publicationname", "dc.source", "og:site_name"),
		Volume:    m.first("citation_volume", "prism.volume"),
		Issue:     m.first("citation_issue", "prism.number"),
		Publisher: m.first("citation_publisher", "dc.publisher", "citation_dissertation_institution", "citation_technical_report_institution"),
		ISSN:      m.first("citation_issn", "prism.issn", "prism.eissn"),
		ISBN:      m.first("citation_isbn"),
		Language:  m.first("citation_language", "dc.language"),
		Identifiers: bibfetch.Identifiers{
			DOI: doiFromMeta(m),
			URL: m.first("citation_public_url", "citation_abstract_html_url", "og:url"),
		},
	}
	if item.Identifiers.URL == "" {
		item.Identifiers.URL = doc.URL
	}

	for _, name := range creators(m) {
		item.Authors = append(item.Authors, bibfetch.ParseCreator(name))
	}
	for _, name := range m.all("citation_editor") {
		item.Editors = append(item.Editors, bibfetch.ParseCreator(name))
	}

	date := m.first("citation_publication_date", "citation_date", "citation_online_date", "dc.date", "dc.date.issued", "prism.publicationdate", "article:published_time")
	item.Year = bibtex.Year(date)
	item.Month = month(date)

	first, last := m.first("citation_firstpage", "prism.startingpage"), m.first("citation_lastpage", "prism.endingpage")
	switch {
	case first != "" && last != "":
		item.Pages = first + "-" + last
	default:
		item.Pages = first
	}

	if id := m.first("citation_arxiv_id"); id != "" {
		item.Identifiers.Eprint = id
		item.ArchivePrefix = "arXiv"
	}

	abstract := m.first("citation_abstract", "dc.description", "description", "og:description")
	if e.converter != nil && strings.Contains(abstract, "<") {
		if text, err := e.converter.Convert(abstract); err == nil {
			abstract = text
		}
	}
	item.Abstract = abstract

	for _, kw := range m.all("citation_keywords", "keywords", "dc.subject") {
		for _, k := range strings.Split(kw, ";") {
			if k = strings.TrimSpace(k); k != "" {
				item.Keywords = append(item.Keywords, k)
			}
		}
	}

	return []*bibfetch.Item{item}, nil
}

func itemType(m metaTags) bibfetch.ItemType {
	switch {
	case m.has("citation_conference_title", "citation_conference"):
		return bibfetch.ItemConferencePaper
	case m.has("citation_dissertation_institution"):
		return bibfetch.ItemThesis
	case m.has("citation_technical_report_institution", "citation_technical_report_number"):
		return bibfetch.ItemReport
	case m.has("citation_inbook_title"):
		return bibfetch.ItemBookSection
	case m.has("citation_book_title") && !m.has("citation_journal_title"):
		return bibfetch.ItemBook
	case m.has("citation_arxiv_id") && !m.has("citation_journal_title"):
		return bibfetch.ItemPreprint
	case m.has("citation_title", "dc.title", "eprints.title"):
		return bibfetch.ItemJournalArticle
	}
	return bibfetch.ItemWebPage
}

// creators prefers Highwire authors, falling back to the semicolon-separated
// citation_authors list and then Dublin Core creators.
func creators(m metaTags) []string {
	if names := m.all("citation_author"); len(names) > 0 {
		return names
	}
	if list := m.first("citation_authors"); list != "" {
		var names []string
		for _, n := range strings.Split(list, ";") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		return names
	}
	return m.all("dc.creator", "eprints.creators_name", "article:author", "author")
}

func doiFromMeta(m metaTags) string {
	for _, k := range []string{"citation_doi", "prism.doi", "dc.identifier"} {
		for _, v := range m[k] {
			if doi := FindDOI(v); doi != "" {
				return doi
			}
		}
	}
	return ""
}

// month returns the two-digit month of an ISO (2020-05-01) or slash
// (2020/05/01) date, or an empty string.
func month(date string) string {
	if len(date) < 7 || (date[4] != '-' && date[4] != '/') {
		return ""
	}
	mm := date[5:7]
	if mm[0] < '0' || mm[1] < '0' || mm[1] > '9' || mm < "01" || mm > "12" {
		return ""
	}
	return mm
}
