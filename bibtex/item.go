package bibtex

import (
	"regexp"
	"strings"

	"github.com/fwojciec/bibfetch"
)

// Dialect selects the field vocabulary of generated entries.
type Dialect int

const (
	// BibTeX uses classic field names (journal, year, month, archivePrefix).
	BibTeX Dialect = iota

	// BibLaTeX uses BibLaTeX field names (journaltitle, date, eprinttype).
	BibLaTeX
)

// EntryType maps an item type to an entry type.
func EntryType(t bibfetch.ItemType, d Dialect) string {
	switch t {
	case bibfetch.ItemBook:
		return "book"
	case bibfetch.ItemBookSection:
		return "incollection"
	case bibfetch.ItemConferencePaper:
		return "inproceedings"
	case bibfetch.ItemThesis:
		if d == BibLaTeX {
			return "thesis"
		}
		return "phdthesis"
	case bibfetch.ItemReport:
		if d == BibLaTeX {
			return "report"
		}
		return "techreport"
	case bibfetch.ItemWebPage:
		if d == BibLaTeX {
			return "online"
		}
		return "misc"
	}
	return "article"
}

// FromItem converts an item into an entry. Returns ESERIALIZE if the item
// is not valid.
func FromItem(item *bibfetch.Item, d Dialect) (*Entry, error) {
	if err := item.Validate(); err != nil {
		return nil, bibfetch.Wrapf(bibfetch.ESERIALIZE, err, "cannot serialize item")
	}

	var family string
	if len(item.Authors) > 0 {
		family = item.Authors[0].Family
	}
	year := Year(item.Year)
	typ := EntryType(item.Type, d)
	e := NewEntry(typ, Key(family, year, item.Title))

	e.Add("author", joinCreators(item.Authors))
	e.Add("editor", joinCreators(item.Editors))
	e.Add("title", item.Title)
	e.Add(containerField(typ, d), item.Container)
	if d == BibLaTeX {
		date := year
		if date != "" && item.Month != "" {
			date += "-" + item.Month
		}
		e.Add("date", date)
	} else {
		e.Add("year", year)
		e.Add("month", item.Month)
	}
	e.Add("volume", item.Volume)
	e.Add("number", item.Issue)
	e.Add("pages", Pages(item.Pages))
	e.Add("publisher", item.Publisher)
	if d == BibLaTeX {
		e.Add("location", item.Place)
	} else {
		e.Add("address", item.Place)
	}
	e.Add("doi", item.Identifiers.DOI)
	e.Add("url", item.Identifiers.URL)
	e.Add("issn", item.ISSN)
	e.Add("isbn", item.ISBN)
	if item.Identifiers.Eprint != "" {
		e.Add("eprint", item.Identifiers.Eprint)
		if d == BibLaTeX {
			e.Add("eprinttype", strings.ToLower(item.ArchivePrefix))
			e.Add("eprintclass", item.PrimaryClass)
		} else {
			e.Add("archivePrefix", item.ArchivePrefix)
			e.Add("primaryClass", item.PrimaryClass)
		}
	}
	e.Add("abstract", item.Abstract)
	e.Add("keywords", strings.Join(item.Keywords, ", "))
	e.Add("language", item.Language)
	e.Add("note", strings.Join(item.Notes, "; "))
	return e, nil
}

// FromItems converts items and renders them as one bibliography.
func FromItems(items []*bibfetch.Item, d Dialect) (string, error) {
	entries := make([]*Entry, 0, len(items))
	for _, item := range items {
		e, err := FromItem(item, d)
		if err != nil {
			return "", err
		}
		entries = append(entries, e)
	}
	return Marshal(entries...)
}

func containerField(typ string, d Dialect) string {
	switch typ {
	case "article":
		if d == BibLaTeX {
			return "journaltitle"
		}
		return "journal"
	case "incollection", "inproceedings":
		return "booktitle"
	case "phdthesis", "thesis":
		if d == BibLaTeX {
			return "institution"
		}
		return "school"
	case "techreport", "report":
		return "institution"
	case "online":
		return "organization"
	case "misc":
		return "howpublished"
	}
	return "series"
}

func joinCreators(creators []bibfetch.Creator) string {
	names := make([]string, 0, len(creators))
	for _, c := range creators {
		if s := c.String(); s != "" {
			names = append(names, s)
		}
	}
	return strings.Join(names, " and ")
}

var pageRangeRe = regexp.MustCompile(`^\s*(\S+?)\s*(?:-+|–|—)\s*(\S+)\s*$`)

// Pages normalizes a page range to use "--" between the bounds.
func Pages(s string) string {
	if m := pageRangeRe.FindStringSubmatch(s); m != nil {
		return m[1] + "--" + m[2]
	}
	return strings.TrimSpace(s)
}
