// Package gjson implements the JSON-LD translator. It reads schema.org
// nodes from <script type="application/ld+json"> blocks with
// github.com/tidwall/gjson.
package gjson

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/bibtex"
	bibgoquery "github.com/fwojciec/bibfetch/goquery"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
)

// Ensure JSONLD implements bibfetch.Translator and bibfetch.Detector at compile time.
var (
	_ bibfetch.Translator = (*JSONLD)(nil)
	_ bibfetch.Detector   = (*JSONLD)(nil)
)

// schemaTypes maps schema.org types to item types. Plain articles are
// refined in itemType depending on whether they belong to a periodical.
var schemaTypes = map[string]bibfetch.ItemType{
	"ScholarlyArticle":        bibfetch.ItemJournalArticle,
	"MedicalScholarlyArticle": bibfetch.ItemJournalArticle,
	"Article":                 bibfetch.ItemWebPage,
	"NewsArticle":             bibfetch.ItemWebPage,
	"BlogPosting":             bibfetch.ItemWebPage,
	"Book":                    bibfetch.ItemBook,
	"Chapter":                 bibfetch.ItemBookSection,
	"Thesis":                  bibfetch.ItemThesis,
	"Report":                  bibfetch.ItemReport,
}

// maxPartDepth bounds the isPartOf chain (issue, volume, periodical).
const maxPartDepth = 4

// JSONLD extracts items from schema.org JSON-LD. It is generic.
type JSONLD struct{}

// NewJSONLD creates a JSONLD translator.
func NewJSONLD() *JSONLD {
	return &JSONLD{}
}

// Info returns the translator metadata.
func (j *JSONLD) Info() bibfetch.TranslatorInfo {
	return bibfetch.TranslatorInfo{
		ID:    "json-ld",
		Label: "JSON-LD",
	}
}

// Detect reports whether the page has a supported schema.org node.
func (j *JSONLD) Detect(_ context.Context, doc *bibfetch.Document) bool {
	return len(nodes(doc)) > 0
}

// Extract returns one item per supported node. Nodes without a title or
// identifier are skipped.
func (j *JSONLD) Extract(_ context.Context, doc *bibfetch.Document) ([]*bibfetch.Item, error) {
	var items []*bibfetch.Item
	seen := make(map[string]bool)
	for _, n := range nodes(doc) {
		item := toItem(n)
		if item.Validate() != nil {
			continue
		}
		key := item.Title + "\x00" + item.Identifiers.DOI
		if seen[key] {
			continue
		}
		seen[key] = true
		if item.Identifiers.URL == "" && item.Identifiers.DOI == "" {
			item.Identifiers.URL = doc.URL
		}
		items = append(items, item)
	}
	return items, nil
}

// nodes returns the supported schema.org nodes on the page, including
// those nested in arrays and @graph containers.
func nodes(doc *bibfetch.Document) []gjson.Result {
	root := &html.Node{Type: html.DocumentNode}
	if doc != nil && doc.Root != nil {
		root = doc.Root
	}

	var out []gjson.Result
	goquery.NewDocumentFromNode(root).Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if !gjson.Valid(text) {
			return
		}
		collect(gjson.Parse(text), &out)
	})
	return out
}

func collect(r gjson.Result, out *[]gjson.Result) {
	switch {
	case r.IsArray():
		for _, el := range r.Array() {
			collect(el, out)
		}
	case r.IsObject():
		if graph := key(r, "@graph"); graph.Exists() {
			collect(graph, out)
			return
		}
		if _, ok := schemaType(r); ok {
			*out = append(*out, r)
		}
	}
}

// key looks up an object member without gjson path syntax, which treats
// a leading "@" as a modifier.
func key(r gjson.Result, name string) gjson.Result {
	var found gjson.Result
	r.ForEach(func(k, v gjson.Result) bool {
		if k.String() == name {
			found = v
			return false
		}
		return true
	})
	return found
}

// schemaType returns the first supported @type of a node.
func schemaType(r gjson.Result) (string, bool) {
	for _, t := range key(r, "@type").Array() {
		name := strings.TrimPrefix(t.String(), "schema:")
		name = strings.TrimPrefix(name, "http://schema.org/")
		name = strings.TrimPrefix(name, "https://schema.org/")
		if _, ok := schemaTypes[name]; ok {
			return name, true
		}
	}
	return "", false
}

func toItem(n gjson.Result) *bibfetch.Item {
	typ, _ := schemaType(n)
	item := &bibfetch.Item{
		Type:     schemaTypes[typ],
		Title:    text(n, "headline", "name"),
		Abstract: text(n, "description", "abstract"),
		Language: text(n, "inLanguage"),
		ISBN:     text(n, "isbn"),
		Pages:    text(n, "pagination"),
		Authors:  people(n.Get("author")),
		Editors:  people(n.Get("editor")),
	}

	date := text(n, "datePublished", "dateCreated")
	item.Year = bibtex.Year(date)
	if len(date) >= 7 && date[4] == '-' && date[5:7] >= "01" && date[5:7] <= "12" {
		item.Month = date[5:7]
	}

	if start := text(n, "pageStart"); start != "" {
		item.Pages = start
		if end := text(n, "pageEnd"); end != "" {
			item.Pages += "-" + end
		}
	}

	item.Publisher = name(n.Get("publisher"))
	if item.Type == bibfetch.ItemThesis {
		if org := name(n.Get("sourceOrganization")); org != "" {
			item.Container = org
		}
	}

	part := n.Get("isPartOf")
	for depth := 0; part.IsObject() && depth < maxPartDepth; depth++ {
		if v := text(part, "issueNumber"); v != "" && item.Issue == "" {
			item.Issue = v
		}
		if v := text(part, "volumeNumber"); v != "" && item.Volume == "" {
			item.Volume = v
		}
		if v := text(part, "issn"); v != "" && item.ISSN == "" {
			item.ISSN = v
		}
		if v := text(part, "name"); v != "" && item.Container == "" {
			item.Container = v
		}
		part = part.Get("isPartOf")
	}
	if typ == "Article" && item.Container != "" {
		item.Type = bibfetch.ItemJournalArticle
	}

	for _, field := range []string{"@id", "identifier", "sameAs", "url"} {
		for _, v := range key(n, field).Array() {
			s := v.String()
			if v.IsObject() {
				s = text(v, "value", "@id")
			}
			if doi := bibgoquery.FindDOI(s); doi != "" && item.Identifiers.DOI == "" {
				item.Identifiers.DOI = doi
			}
		}
	}
	item.Identifiers.URL = text(n, "url")

	switch kw := n.Get("keywords"); {
	case kw.IsArray():
		for _, v := range kw.Array() {
			if s := strings.TrimSpace(v.String()); s != "" {
				item.Keywords = append(item.Keywords, s)
			}
		}
	case kw.Exists():
		for _, s := range strings.Split(kw.String(), ",") {
			if s = strings.TrimSpace(s); s != "" {
				item.Keywords = append(item.Keywords, s)
			}
		}
	}
	return item
}

// text returns the first non-empty string value among the keys, with
// whitespace collapsed.
func text(r gjson.Result, keys ...string) string {
	for _, k := range keys {
		v := first(key(r, k))
		if v.IsObject() {
			continue
		}
		if s := strings.Join(strings.Fields(v.String()), " "); s != "" {
			return s
		}
	}
	return ""
}

// name reads an organization given either as a string or as an object
// with a name.
func name(r gjson.Result) string {
	r = first(r)
	if r.IsObject() {
		return text(r, "name")
	}
	return strings.TrimSpace(r.String())
}

// people reads persons given as strings, objects or arrays of either.
// Organizations listed as authors are kept as a single family name.
func people(r gjson.Result) []bibfetch.Creator {
	var out []bibfetch.Creator
	for _, p := range r.Array() {
		var c bibfetch.Creator
		switch {
		case p.IsObject() && text(p, "familyName") != "":
			c = bibfetch.Creator{Family: text(p, "familyName"), Given: text(p, "givenName")}
		case p.IsObject():
			if t, _ := schemaTypeName(p); t == "Organization" {
				c = bibfetch.Creator{Family: text(p, "name")}
			} else {
				c = bibfetch.ParseCreator(text(p, "name"))
			}
		default:
			c = bibfetch.ParseCreator(p.String())
		}
		if c.Family != "" {
			out = append(out, c)
		}
	}
	return out
}

// first returns the first element of an array, or r itself.
func first(r gjson.Result) gjson.Result {
	if !r.IsArray() {
		return r
	}
	if arr := r.Array(); len(arr) > 0 {
		return arr[0]
	}
	return gjson.Result{}
}

func schemaTypeName(r gjson.Result) (string, bool) {
	t := key(r, "@type")
	if !t.Exists() {
		return "", false
	}
	return strings.TrimPrefix(t.String(), "schema:"), true
}
