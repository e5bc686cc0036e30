package translate

import (
	"context"
	"sync"

	"github.com/fwojciec/bibfetch"
)

// Ensure Lazy implements the translator capabilities at compile time.
var (
	_ bibfetch.Translator = (*Lazy)(nil)
	_ bibfetch.Detector   = (*Lazy)(nil)
	_ bibfetch.Preloader  = (*Lazy)(nil)
)

// Lazy is a translator whose code is loaded through a bibfetch.TranslatorLoader
// on first use. Its metadata is known up front so it can be registered and
// matched before loading. Loaded code is kept for the life of the value.
// Failures that cannot succeed later (ENOTFOUND, EINVALID, EMISSING) are
// remembered; any other failure is retried on the next use.
type Lazy struct {
	info   bibfetch.TranslatorInfo
	loader bibfetch.TranslatorLoader

	mu         sync.Mutex
	translator bibfetch.Translator
	err        error
}

// NewLazy creates a lazily loaded translator.
func NewLazy(info bibfetch.TranslatorInfo, loader bibfetch.TranslatorLoader) *Lazy {
	return &Lazy{info: info, loader: loader}
}

// Info returns the metadata the translator was registered with.
func (l *Lazy) Info() bibfetch.TranslatorInfo {
	return l.info
}

// Preload loads the translator code.
func (l *Lazy) Preload(ctx context.Context) error {
	_, err := l.load(ctx)
	return err
}

// Detect loads the code and delegates to its detector. A load failure or
// a translator without detector accepts the page, so the failure surfaces
// from Extract.
func (l *Lazy) Detect(ctx context.Context, doc *bibfetch.Document) bool {
	t, err := l.load(ctx)
	if err != nil {
		return true
	}
	if d, ok := t.(bibfetch.Detector); ok {
		return d.Detect(ctx, doc)
	}
	return true
}

// Extract loads the code and delegates to it.
func (l *Lazy) Extract(ctx context.Context, doc *bibfetch.Document) ([]*bibfetch.Item, error) {
	t, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return t.Extract(ctx, doc)
}

func (l *Lazy) load(ctx context.Context) (bibfetch.Translator, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.translator != nil || l.err != nil {
		return l.translator, l.err
	}

	t, err := l.loader.Load(ctx, l.info.ID)
	if err == nil && t == nil {
		err = &bibfetch.Error{Code: bibfetch.EMISSING, Message: "loader returned no translator", Translator: l.info.ID}
	}
	if err != nil {
		if permanent(err) {
			l.err = err
		}
		return nil, err
	}
	l.translator = t
	return t, nil
}

func permanent(err error) bool {
	switch bibfetch.ErrorCode(err) {
	case bibfetch.ENOTFOUND, bibfetch.EINVALID, bibfetch.EMISSING:
		return true
	}
	return false
}
