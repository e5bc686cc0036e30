// Package htmltomarkdown converts HTML fragments scraped from pages, such
// as abstracts, into Markdown text for BibTeX field values.
package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/bibfetch"
)

// Ensure Converter implements bibfetch.Converter at compile time.
var _ bibfetch.Converter = (*Converter)(nil)

// jatsPrefix strips the namespace from JATS tags (<jats:p>, <jats:italic>)
// used in Crossref abstracts so they are treated as plain HTML.
var jatsPrefix = strings.NewReplacer("<jats:", "<", "</jats:", "</")

// blankLines matches runs of blank lines left behind by block elements.
var blankLines = regexp.MustCompile(`\n{3,}`)

// abstractHeading matches a leading "Abstract" heading, which publishers
// often place inside the abstract container itself.
var abstractHeading = regexp.MustCompile(`(?i)^(?:#+\s*|\*\*)?abstract(?:\*\*)?[.:]?\s*\n+`)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms an HTML fragment into Markdown. A leading "Abstract"
// heading is dropped and paragraphs are separated by a single blank line.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", bibfetch.Errorf(bibfetch.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(jatsPrefix.Replace(html))
	if err != nil {
		return "", bibfetch.Wrapf(bibfetch.EINVALID, err, "converting HTML")
	}

	result = strings.TrimSpace(result)
	result = abstractHeading.ReplaceAllString(result, "")
	result = blankLines.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result), nil
}
