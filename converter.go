package bibfetch

// Converter converts an HTML fragment, such as an abstract scraped from a
// page, into plain text suitable for a BibTeX field value.
type Converter interface {
	Convert(html string) (string, error)
}
