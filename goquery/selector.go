package goquery

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/bibtex"
)

// Ensure Selector implements bibfetch.Translator and bibfetch.Detector at compile time.
var (
	_ bibfetch.Translator = (*Selector)(nil)
	_ bibfetch.Detector   = (*Selector)(nil)
)

// fieldSetters assign extracted values to item fields.
var fieldSetters = map[string]func(item *bibfetch.Item, values []string){
	"title":     func(i *bibfetch.Item, v []string) { i.Title = v[0] },
	"container": func(i *bibfetch.Item, v []string) { i.Container = v[0] },
	"volume":    func(i *bibfetch.Item, v []string) { i.Volume = v[0] },
	"issue":     func(i *bibfetch.Item, v []string) { i.Issue = v[0] },
	"pages":     func(i *bibfetch.Item, v []string) { i.Pages = v[0] },
	"publisher": func(i *bibfetch.Item, v []string) { i.Publisher = v[0] },
	"place":     func(i *bibfetch.Item, v []string) { i.Place = v[0] },
	"issn":      func(i *bibfetch.Item, v []string) { i.ISSN = v[0] },
	"isbn":      func(i *bibfetch.Item, v []string) { i.ISBN = v[0] },
	"abstract":  func(i *bibfetch.Item, v []string) { i.Abstract = strings.Join(v, "\n\n") },
	"language":  func(i *bibfetch.Item, v []string) { i.Language = v[0] },
	"doi":       func(i *bibfetch.Item, v []string) { i.Identifiers.DOI = FindDOI(v[0]) },
	"url":       func(i *bibfetch.Item, v []string) { i.Identifiers.URL = v[0] },
	"keywords":  func(i *bibfetch.Item, v []string) { i.Keywords = append(i.Keywords, v...) },
	"note":      func(i *bibfetch.Item, v []string) { i.Notes = append(i.Notes, v...) },
	"author": func(i *bibfetch.Item, v []string) {
		for _, name := range v {
			i.Authors = append(i.Authors, bibfetch.ParseCreator(name))
		}
	},
	"editor": func(i *bibfetch.Item, v []string) {
		for _, name := range v {
			i.Editors = append(i.Editors, bibfetch.ParseCreator(name))
		}
	},
	"year": func(i *bibfetch.Item, v []string) { i.Year = bibtex.Year(v[0]) },
	"date": func(i *bibfetch.Item, v []string) {
		i.Year = bibtex.Year(v[0])
		i.Month = month(v[0])
	},
}

type rule struct {
	bibfetch.FieldRule
	set func(item *bibfetch.Item, values []string)
}

// Selector is a translator compiled from a bibfetch.TranslatorDefinition.
// Field values are read from the elements matched by CSS selectors.
type Selector struct {
	info      bibfetch.TranslatorInfo
	typ       bibfetch.ItemType
	detect    string
	rules     []rule
	converter bibfetch.Converter
}

// NewSelector compiles a definition. Selectors are checked with cascadia
// up front since goquery matches nothing on a malformed selector; any
// compile failure is EINVALID. The converter turns HTML-valued fields into
// text and may be nil when no rule sets html.
func NewSelector(def *bibfetch.TranslatorDefinition, conv bibfetch.Converter) (*Selector, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	s := &Selector{
		info:      def.TranslatorInfo,
		typ:       def.Type,
		converter: conv,
	}
	if s.typ == "" {
		s.typ = bibfetch.ItemJournalArticle
	}

	if def.Detect != "" {
		if _, err := cascadia.Compile(def.Detect); err != nil {
			return nil, bibfetch.Wrapf(bibfetch.EINVALID, err, "translator %q: invalid detect selector", def.ID)
		}
		s.detect = def.Detect
	}

	for _, f := range def.Fields {
		set, ok := fieldSetters[f.Field]
		if !ok {
			return nil, bibfetch.Errorf(bibfetch.EINVALID, "translator %q: unknown field %q", def.ID, f.Field)
		}
		if f.HTML && conv == nil {
			return nil, bibfetch.Errorf(bibfetch.EINVALID, "translator %q: field %q needs a converter", def.ID, f.Field)
		}
		if _, err := cascadia.Compile(f.Selector); err != nil {
			return nil, bibfetch.Wrapf(bibfetch.EINVALID, err, "translator %q: invalid selector for %q", def.ID, f.Field)
		}
		s.rules = append(s.rules, rule{FieldRule: f, set: set})
	}
	return s, nil
}

// Info returns the translator metadata.
func (s *Selector) Info() bibfetch.TranslatorInfo {
	return s.info
}

// Detect reports whether the detect selector matches. A definition
// without one accepts every page.
func (s *Selector) Detect(_ context.Context, doc *bibfetch.Document) bool {
	if s.detect == "" {
		return true
	}
	return hasSelector(selection(doc), s.detect)
}

// Extract builds one item from the field rules. Returns EMISSING when the
// definition has no field rules.
func (s *Selector) Extract(_ context.Context, doc *bibfetch.Document) ([]*bibfetch.Item, error) {
	if len(s.rules) == 0 {
		return nil, &bibfetch.Error{Code: bibfetch.EMISSING, Message: "translator definition has no field rules", Translator: s.info.ID}
	}

	sel := selection(doc)
	item := &bibfetch.Item{Type: s.typ}
	for _, r := range s.rules {
		values, err := s.values(sel, r)
		if err != nil {
			return nil, err
		}
		if len(values) > 0 {
			r.set(item, values)
		}
	}

	if item.Title == "" && item.Identifiers.Empty() {
		return nil, nil
	}
	if item.Identifiers.URL == "" {
		item.Identifiers.URL = doc.URL
	}
	return []*bibfetch.Item{item}, nil
}

func (s *Selector) values(doc *goquery.Document, r rule) ([]string, error) {
	var values []string
	var convErr error
	doc.Find(r.Selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		var v string
		switch {
		case r.Attr != "":
			v = el.AttrOr(r.Attr, "")
		case r.HTML:
			inner, err := el.Html()
			if err != nil {
				convErr = err
				return false
			}
			if v, err = s.converter.Convert(inner); err != nil {
				convErr = err
				return false
			}
		default:
			v = el.Text()
		}
		if v = strings.Join(strings.Fields(v), " "); v != "" {
			values = append(values, v)
		}
		return r.Multiple || len(values) == 0
	})
	if convErr != nil {
		return nil, bibfetch.Wrapf(bibfetch.EEXTRACT, convErr, "field %s", r.Field)
	}
	return values, nil
}
