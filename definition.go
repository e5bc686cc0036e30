package bibfetch

// TranslatorDefinition is a declarative translator: CSS selectors mapped to
// item fields. Definitions are loaded at runtime and compiled into
// translators.
type TranslatorDefinition struct {
	TranslatorInfo `yaml:",inline"`

	// Detect is a CSS selector that must match at least one element for
	// the translator to apply. Empty accepts every page.
	Detect string `yaml:"detect,omitempty"`

	// Type is the item type produced. Defaults to ItemJournalArticle.
	Type ItemType `yaml:"type,omitempty"`

	// Fields map item fields to selectors. A definition without fields
	// has no extract capability.
	Fields []FieldRule `yaml:"fields,omitempty"`
}

// FieldRule extracts one item field.
type FieldRule struct {
	// Field is the item field name: title, author, editor, year, date,
	// container, volume, issue, pages, publisher, place, issn, isbn, abstract,
	// language, doi, url, keywords, note.
	Field string `yaml:"field"`

	// Selector is the CSS selector of the source element(s).
	Selector string `yaml:"selector"`

	// Attr reads an attribute instead of the element text.
	Attr string `yaml:"attr,omitempty"`

	// HTML converts the element's inner HTML to text instead of reading
	// its text content.
	HTML bool `yaml:"html,omitempty"`

	// Multiple collects every match instead of the first one.
	Multiple bool `yaml:"multiple,omitempty"`
}

// Validate returns an error if the definition cannot be compiled.
func (d *TranslatorDefinition) Validate() error {
	if d.ID == "" {
		return Errorf(EINVALID, "translator definition ID required")
	}
	for _, f := range d.Fields {
		if f.Field == "" || f.Selector == "" {
			return Errorf(EINVALID, "translator %q: field rule requires field and selector", d.ID)
		}
	}
	return nil
}
