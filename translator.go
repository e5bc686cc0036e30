package bibfetch

import (
	"context"
	"strings"
)

// TranslatorInfo describes a translator and the URLs it applies to.
type TranslatorInfo struct {
	// ID uniquely identifies the translator within a registry.
	ID string `json:"id" yaml:"id"`

	// Label is a human readable name.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// Target is a regular expression (JavaScript syntax) matched against
	// the root URL of the page. An empty or catch-all Target marks a
	// generic translator that applies to every page.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	// TargetAll is an optional regular expression matched against the
	// frame URL for translators that run in every frame of a page.
	TargetAll string `json:"targetAll,omitempty" yaml:"targetAll,omitempty"`
}

// Generic reports whether the translator only has a catch-all pattern.
func (i TranslatorInfo) Generic() bool {
	switch strings.TrimSpace(i.Target) {
	case "", ".", ".*", ".+", "^.*", "^.*$", "^.+$":
		return true
	}
	return false
}

// Translator extracts bibliographic items from a parsed page document.
// Translators may additionally implement Detector and Preloader.
type Translator interface {
	// Info returns the translator's identity and URL patterns.
	Info() TranslatorInfo

	// Extract returns the items found on the page.
	// A nil or empty slice with a nil error means "no items found here".
	Extract(ctx context.Context, doc *Document) ([]*Item, error)
}

// Detector is implemented by translators with a cheap applicability check
// that runs before Extract. Returning false is a normal "not applicable"
// outcome, not an error.
type Detector interface {
	Detect(ctx context.Context, doc *Document) bool
}

// Preloader is implemented by translators whose code is loaded lazily.
type Preloader interface {
	// Preload loads the translator's code ahead of its first use.
	Preload(ctx context.Context) error
}

// Ensure Module implements Translator and Detector at compile time.
var (
	_ Translator = (*Module)(nil)
	_ Detector   = (*Module)(nil)
)

// Module is a translator assembled from functions, typically produced by a
// TranslatorLoader. A nil DetectFn accepts every page; a nil ExtractFn is a
// missing capability and fails with EMISSING.
type Module struct {
	Meta      TranslatorInfo
	DetectFn  func(ctx context.Context, doc *Document) bool
	ExtractFn func(ctx context.Context, doc *Document) ([]*Item, error)
}

// Info returns the module's metadata.
func (m *Module) Info() TranslatorInfo {
	return m.Meta
}

// Detect runs DetectFn, accepting the page when it is not set.
func (m *Module) Detect(ctx context.Context, doc *Document) bool {
	if m.DetectFn == nil {
		return true
	}
	return m.DetectFn(ctx, doc)
}

// Extract runs ExtractFn.
func (m *Module) Extract(ctx context.Context, doc *Document) ([]*Item, error) {
	if m.ExtractFn == nil {
		return nil, &Error{Code: EMISSING, Message: "translator does not implement extract", Translator: m.Meta.ID}
	}
	return m.ExtractFn(ctx, doc)
}

// TranslatorRegistry holds the translators known to the application and
// selects the candidates for a page.
type TranslatorRegistry interface {
	// Register adds a translator. Returns EINVALID for an empty ID and
	// ECONFLICT if the ID is already registered.
	Register(t Translator) error

	// Get returns the translator with the given ID, or nil.
	Get(id string) Translator

	// List returns all translators in registration order.
	List() []Translator

	// Match returns the translators applicable to url, most specific first.
	// rootURL is the URL of the top-level page; pass an empty string or url
	// itself for top-level pages. Returns an empty slice when nothing matches.
	Match(url, rootURL string) []Translator
}

// TranslatorLoader loads translator code by identifier.
type TranslatorLoader interface {
	// Load returns the translator with the given ID.
	// Returns ENOTFOUND if no such translator exists.
	Load(ctx context.Context, id string) (Translator, error)
}

// TranslatorRunner executes exactly one translator against one page.
type TranslatorRunner interface {
	// Run parses the page, runs detection and extraction, and returns the
	// extracted items. Failures are returned as *Error values with codes
	// EMISSING, EREJECTED, EMALFORMED or EEXTRACT.
	Run(ctx context.Context, t Translator, page *Page) ([]*Item, error)
}

// TranslationRequest asks for the bibliographic items of a page.
type TranslationRequest struct {
	URL string

	// RootURL is the top-level page URL for framed pages.
	// Defaults to URL.
	RootURL string

	// Markup is the page HTML. When empty the page is fetched.
	Markup string

	// Translators overrides candidate selection when non-empty.
	Translators []Translator
}

// TranslationService converts a page into bibliographic items by trying
// candidate translators in rank order.
type TranslationService interface {
	// Translate returns the items of the first candidate that succeeds.
	// Returns ENOTRANSLATOR when no candidate applies, or the last
	// substantive candidate error when every candidate failed.
	Translate(ctx context.Context, req *TranslationRequest) (*Result, error)
}
