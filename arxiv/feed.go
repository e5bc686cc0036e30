package arxiv

import (
	"io"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/bibtex"
)

// Entry is one article from the arXiv API Atom feed.
type Entry struct {
	ID              string
	Title           string
	Summary         string
	Authors         []string
	Published       time.Time
	DOI             string
	JournalRef      string
	Comment         string
	PrimaryCategory string
	Categories      []string
}

// ParseFeed reads the entries of an arXiv API Atom feed.
// The error entry the API returns for unknown identifiers is skipped.
func ParseFeed(r io.Reader) ([]*Entry, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, bibfetch.Wrapf(bibfetch.EMALFORMED, err, "parsing arXiv feed")
	}

	root := doc.Root()
	if root == nil || root.Tag != "feed" {
		return nil, bibfetch.Errorf(bibfetch.EMALFORMED, "arXiv response is not an Atom feed")
	}

	var entries []*Entry
	for _, el := range root.SelectElements("entry") {
		if e := parseEntry(el); e != nil {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func parseEntry(el *etree.Element) *Entry {
	rawID := text(el, "id")
	if strings.Contains(rawID, "/api/errors") {
		return nil
	}
	id, err := ParseID(rawID)
	if err != nil {
		return nil
	}

	e := &Entry{
		ID:         id,
		Title:      text(el, "title"),
		Summary:    text(el, "summary"),
		DOI:        text(el, "arxiv:doi"),
		JournalRef: text(el, "arxiv:journal_ref"),
		Comment:    text(el, "arxiv:comment"),
	}
	if t, err := time.Parse(time.RFC3339, text(el, "published")); err == nil {
		e.Published = t
	}
	for _, a := range el.SelectElements("author") {
		if name := text(a, "name"); name != "" {
			e.Authors = append(e.Authors, name)
		}
	}
	if pc := el.SelectElement("arxiv:primary_category"); pc != nil {
		e.PrimaryCategory = pc.SelectAttrValue("term", "")
	}
	for _, c := range el.SelectElements("category") {
		if term := c.SelectAttrValue("term", ""); term != "" {
			e.Categories = append(e.Categories, term)
		}
	}
	if e.PrimaryCategory == "" && len(e.Categories) > 0 {
		e.PrimaryCategory = e.Categories[0]
	}
	if e.DOI == "" {
		for _, l := range el.SelectElements("link") {
			if l.SelectAttrValue("title", "") == "doi" {
				e.DOI = strings.TrimPrefix(l.SelectAttrValue("href", ""), "http://dx.doi.org/")
			}
		}
	}
	return e
}

// text returns the whitespace-collapsed text of the named child.
func text(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.Join(strings.Fields(child.Text()), " ")
}

// Year returns the publication year, or an empty string when unknown.
func (e *Entry) Year() string {
	if e.Published.IsZero() {
		return ""
	}
	return e.Published.Format("2006")
}

// URL returns the abstract page URL.
func (e *Entry) URL() string {
	return "https://arxiv.org/abs/" + e.ID
}

// BibTeX renders the entry as an @article. The eprint and archivePrefix
// fields are always present; journal, doi and note only when the feed
// carries them. The abstract URL is left to Item.
func (e *Entry) BibTeX() *bibtex.Entry {
	var family string
	if len(e.Authors) > 0 {
		family = bibfetch.ParseCreator(e.Authors[0]).Family
	}
	key := bibtex.Key(family, e.Year(), "")
	if key == bibtex.UnknownKey {
		key = keyFromID(e.ID)
	}

	b := bibtex.NewEntry("article", key)
	b.Add("author", strings.Join(e.creators(), " and "))
	b.Add("title", e.Title)
	b.Add("year", e.Year())
	b.Add("eprint", e.ID)
	b.Add("archivePrefix", "arXiv")
	b.Add("primaryClass", e.PrimaryCategory)
	b.Add("doi", e.DOI)
	b.Add("journal", e.JournalRef)
	b.Add("note", e.Comment)
	return b
}

func (e *Entry) creators() []string {
	names := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		names = append(names, bibfetch.ParseCreator(a).String())
	}
	return names
}

// Item converts the entry into a preprint item.
func (e *Entry) Item() *bibfetch.Item {
	item := &bibfetch.Item{
		Type:          bibfetch.ItemPreprint,
		Title:         e.Title,
		Year:          e.Year(),
		Container:     e.JournalRef,
		Abstract:      e.Summary,
		Keywords:      e.Categories,
		ArchivePrefix: "arXiv",
		PrimaryClass:  e.PrimaryCategory,
		Identifiers: bibfetch.Identifiers{
			DOI:    e.DOI,
			URL:    e.URL(),
			Eprint: e.ID,
		},
	}
	if !e.Published.IsZero() {
		item.Month = e.Published.Format("01")
	}
	for _, a := range e.Authors {
		item.Authors = append(item.Authors, bibfetch.ParseCreator(a))
	}
	if e.Comment != "" {
		item.Notes = []string{e.Comment}
	}
	return item
}
