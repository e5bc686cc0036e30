// Package ris converts RIS export records into BibTeX entries and items.
//
// RIS is line oriented. Each line carries a two character tag, two spaces,
// a dash and the value (`AU  - Smith, John`). Repeated tags accumulate in
// input order and `ER` closes a record.
package ris

import (
	"regexp"
	"strings"

	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/bibtex"
)

// ContentType is the MIME type of RIS exports.
const ContentType = "application/x-research-info-systems"

// Record holds the values of one RIS record keyed by tag.
type Record map[string][]string

// First returns the first non-empty value of the first tag present.
func (r Record) First(tags ...string) string {
	for _, tag := range tags {
		for _, v := range r[tag] {
			if v != "" {
				return v
			}
		}
	}
	return ""
}

// All returns the non-empty values of the given tags, tag by tag in the
// order given and in input order within a tag.
func (r Record) All(tags ...string) []string {
	var out []string
	for _, tag := range tags {
		for _, v := range r[tag] {
			if v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

var lineRe = regexp.MustCompile(`^([A-Z][A-Z0-9])\s{1,2}-(?:\s(.*))?$`)

// ParseAll reads every record in text. A trailing record without an ER
// line is kept. Lines that do not carry a tag continue the previous value.
func ParseAll(text string) ([]Record, error) {
	text = strings.TrimPrefix(text, "\ufeff")

	var (
		records []Record
		cur     Record
		lastTag string
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			if cur != nil && lastTag != "" && strings.TrimSpace(line) != "" {
				vals := cur[lastTag]
				vals[len(vals)-1] = strings.TrimSpace(vals[len(vals)-1] + " " + strings.TrimSpace(line))
			}
			continue
		}

		tag, value := m[1], strings.TrimSpace(m[2])
		if tag == "ER" {
			if cur != nil {
				records = append(records, cur)
			}
			cur, lastTag = nil, ""
			continue
		}
		if cur == nil {
			cur = Record{}
		}
		cur[tag] = append(cur[tag], value)
		lastTag = tag
	}
	if cur != nil {
		records = append(records, cur)
	}
	if len(records) == 0 {
		return nil, bibfetch.Errorf(bibfetch.EINVALID, "no RIS record found")
	}
	return records, nil
}

// Parse reads the first record in text.
func Parse(text string) (Record, error) {
	records, err := ParseAll(text)
	if err != nil {
		return nil, err
	}
	return records[0], nil
}

var entryTypes = map[string]string{
	"JOUR": "article",
	"BOOK": "book",
	"CHAP": "incollection",
	"CONF": "inproceedings",
	"THES": "phdthesis",
	"RPRT": "techreport",
}

// ToEntry maps a record onto a BibTeX entry. Fields are emitted in the
// order author, title, journal, year, volume, number, pages, doi, url,
// publisher, issn, abstract, note. Unknown record types become articles.
func ToEntry(r Record) *bibtex.Entry {
	typ, ok := entryTypes[strings.ToUpper(r.First("TY"))]
	if !ok {
		typ = "article"
	}

	authors := r.All("AU", "A1")
	title := r.First("TI", "T1")
	year := bibtex.Year(r.First("PY", "Y1"))

	var family string
	if len(authors) > 0 {
		family = bibfetch.ParseCreator(authors[0]).Family
	}

	e := bibtex.NewEntry(typ, bibtex.Key(family, year, title))
	e.Add("author", strings.Join(authors, " and "))
	e.Add("title", title)
	e.Add("journal", r.First("JO", "JF", "JA"))
	e.Add("year", year)
	e.Add("volume", r.First("VL"))
	e.Add("number", r.First("IS"))
	e.Add("pages", pages(r))
	e.Add("doi", r.First("DO"))
	e.Add("url", r.First("UR"))
	e.Add("publisher", r.First("PB"))
	e.Add("issn", r.First("SN"))
	e.Add("abstract", r.First("AB"))
	e.Add("note", strings.Join(r.All("N1"), "; "))
	return e
}

func pages(r Record) string {
	sp, ep := r.First("SP"), r.First("EP")
	switch {
	case sp != "" && ep != "":
		return sp + "--" + ep
	case sp != "":
		return bibtex.Pages(sp)
	}
	return ep
}

var itemTypes = map[string]bibfetch.ItemType{
	"JOUR":   bibfetch.ItemJournalArticle,
	"JFULL":  bibfetch.ItemJournalArticle,
	"MGZN":   bibfetch.ItemJournalArticle,
	"BOOK":   bibfetch.ItemBook,
	"EBOOK":  bibfetch.ItemBook,
	"CHAP":   bibfetch.ItemBookSection,
	"ECHAP":  bibfetch.ItemBookSection,
	"CONF":   bibfetch.ItemConferencePaper,
	"CPAPER": bibfetch.ItemConferencePaper,
	"THES":   bibfetch.ItemThesis,
	"RPRT":   bibfetch.ItemReport,
	"ELEC":   bibfetch.ItemWebPage,
	"WEB":    bibfetch.ItemWebPage,
}

// ToItem maps a record onto an item. It reads more tags than ToEntry
// (editors, keywords, place, language, ISBN) so the BibTeX serializer can
// emit a richer entry.
func ToItem(r Record) *bibfetch.Item {
	typ, ok := itemTypes[strings.ToUpper(r.First("TY"))]
	if !ok {
		typ = bibfetch.ItemJournalArticle
	}

	item := &bibfetch.Item{
		Type:      typ,
		Title:     r.First("TI", "T1"),
		Container: r.First("JO", "JF", "JA", "T2", "BT"),
		Volume:    r.First("VL"),
		Issue:     r.First("IS"),
		Pages:     pages(r),
		Publisher: r.First("PB"),
		Place:     r.First("CY"),
		Abstract:  r.First("AB", "N2"),
		Language:  r.First("LA"),
		Keywords:  r.All("KW"),
		Notes:     r.All("N1"),
		Identifiers: bibfetch.Identifiers{
			DOI: r.First("DO"),
			URL: r.First("UR"),
		},
	}
	for _, name := range r.All("AU", "A1") {
		item.Authors = append(item.Authors, bibfetch.ParseCreator(name))
	}
	for _, name := range r.All("ED", "A2") {
		item.Editors = append(item.Editors, bibfetch.ParseCreator(name))
	}

	date := r.First("PY", "Y1", "DA")
	item.Year = bibtex.Year(date)
	if parts := strings.Split(date, "/"); len(parts) > 1 && len(parts[1]) > 0 && len(parts[1]) <= 2 {
		item.Month = parts[1]
	}

	if sn := r.First("SN"); sn != "" {
		if typ == bibfetch.ItemBook || typ == bibfetch.ItemBookSection {
			item.ISBN = sn
		} else {
			item.ISSN = sn
		}
	}
	return item
}

// Convert parses text and renders every record as a BibTeX entry.
func Convert(text string) (string, error) {
	records, err := ParseAll(text)
	if err != nil {
		return "", err
	}
	entries := make([]*bibtex.Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, ToEntry(r))
	}
	return bibtex.Marshal(entries...)
}
