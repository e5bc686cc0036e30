package bibfetch

import "strings"

// ItemType identifies the kind of bibliographic record.
type ItemType string

// Supported item types.
const (
	ItemJournalArticle  ItemType = "journalArticle"
	ItemBook            ItemType = "book"
	ItemBookSection     ItemType = "bookSection"
	ItemConferencePaper ItemType = "conferencePaper"
	ItemThesis          ItemType = "thesis"
	ItemReport          ItemType = "report"
	ItemPreprint        ItemType = "preprint"
	ItemWebPage         ItemType = "webpage"
)

// Creator is a person credited on an item.
type Creator struct {
	Family string `json:"family"`
	Given  string `json:"given,omitempty"`
}

// String formats the creator the way BibTeX expects: "Family, Given".
func (c Creator) String() string {
	if c.Given == "" {
		return c.Family
	}
	if c.Family == "" {
		return c.Given
	}
	return c.Family + ", " + c.Given
}

// ParseCreator splits a free-form name into family and given parts.
// "Smith, John" and "John Smith" both yield {Smith, John}; a single
// token becomes the family name.
func ParseCreator(name string) Creator {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return Creator{}
	}
	if family, given, ok := strings.Cut(name, ","); ok {
		return Creator{
			Family: strings.TrimSpace(family),
			Given:  strings.TrimSpace(given),
		}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return Creator{Family: name}
	}
	return Creator{
		Family: name[idx+1:],
		Given:  name[:idx],
	}
}

// Identifiers holds the external identifiers of an item.
type Identifiers struct {
	DOI    string `json:"doi,omitempty"`
	URL    string `json:"url,omitempty"`
	Eprint string `json:"eprint,omitempty"`
}

// Empty reports whether no identifier is set.
func (id Identifiers) Empty() bool {
	return id.DOI == "" && id.URL == "" && id.Eprint == ""
}

// Item is a canonical bibliographic record produced by a translator.
type Item struct {
	Type      ItemType  `json:"type"`
	Title     string    `json:"title"`
	Authors   []Creator `json:"authors,omitempty"`
	Editors   []Creator `json:"editors,omitempty"`
	Year      string    `json:"year,omitempty"`
	Month     string    `json:"month,omitempty"`
	Container string    `json:"container,omitempty"` // journal, book or proceedings title
	Volume    string    `json:"volume,omitempty"`
	Issue     string    `json:"issue,omitempty"`
	Pages     string    `json:"pages,omitempty"`
	Publisher string    `json:"publisher,omitempty"`
	Place     string    `json:"place,omitempty"`
	ISSN      string    `json:"issn,omitempty"`
	ISBN      string    `json:"isbn,omitempty"`
	Abstract  string    `json:"abstract,omitempty"`
	Language  string    `json:"language,omitempty"`

	Identifiers Identifiers `json:"identifiers"`

	// ArchivePrefix and PrimaryClass qualify Identifiers.Eprint.
	ArchivePrefix string `json:"archivePrefix,omitempty"`
	PrimaryClass  string `json:"primaryClass,omitempty"`

	Keywords []string `json:"keywords,omitempty"`
	Notes    []string `json:"notes,omitempty"`
}

// Validate returns an error if the item has neither a title nor an identifier.
func (i *Item) Validate() error {
	if strings.TrimSpace(i.Title) == "" && i.Identifiers.Empty() {
		return Errorf(EINVALID, "item title or identifier required")
	}
	return nil
}

// Result is the outcome of a successful conversion request.
type Result struct {
	URL        string  `json:"url"`
	Translator string  `json:"translator"`
	Items      []*Item `json:"items"`
}
