// Package translate runs translators against pages. It provides the
// single-translator Runner, the candidate-iterating Service, lazily
// loaded translators and bounded preloading of their code.
package translate

import (
	"context"
	"fmt"

	"github.com/fwojciec/bibfetch"
)

// Ensure Runner implements bibfetch.TranslatorRunner at compile time.
var _ bibfetch.TranslatorRunner = (*Runner)(nil)

// Runner executes one translator against one page. Every run parses the
// page into its own document.
type Runner struct {
	parser bibfetch.DocumentParser
}

// NewRunner creates a Runner that parses pages with p.
func NewRunner(p bibfetch.DocumentParser) *Runner {
	return &Runner{parser: p}
}

// Run parses the page, applies the translator's detector and extracts
// items. Failures are typed so a caller iterating candidates can decide
// whether to continue: EMISSING, EMALFORMED, EREJECTED or EEXTRACT.
// Items failing validation are dropped; no remaining items yields nil, nil.
func (r *Runner) Run(ctx context.Context, t bibfetch.Translator, page *bibfetch.Page) (items []*bibfetch.Item, err error) {
	if t == nil {
		return nil, bibfetch.Errorf(bibfetch.EMISSING, "translator required")
	}
	id := t.Info().ID

	if page == nil {
		return nil, &bibfetch.Error{Code: bibfetch.EMALFORMED, Message: "page required", Translator: id}
	}
	doc, err := r.parser.Parse(page)
	if err != nil {
		return nil, &bibfetch.Error{Code: bibfetch.EMALFORMED, Message: "cannot parse page " + page.URL, Translator: id, Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			items = nil
			err = &bibfetch.Error{Code: bibfetch.EEXTRACT, Message: "translator panicked", Translator: id, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	if d, ok := t.(bibfetch.Detector); ok && !d.Detect(ctx, doc) {
		return nil, &bibfetch.Error{Code: bibfetch.EREJECTED, Message: "detection rejected " + page.URL, Translator: id}
	}

	extracted, err := t.Extract(ctx, doc)
	if err != nil {
		if bibfetch.ErrorCode(err) == bibfetch.EMISSING {
			if bibfetch.ErrorTranslator(err) != "" {
				return nil, err
			}
			return nil, &bibfetch.Error{Code: bibfetch.EMISSING, Message: bibfetch.ErrorMessage(err), Translator: id, Err: err}
		}
		return nil, &bibfetch.Error{Code: bibfetch.EEXTRACT, Message: "extraction failed", Translator: id, Err: err}
	}

	for _, item := range extracted {
		if item == nil || item.Validate() != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
