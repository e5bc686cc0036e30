package mock

import (
	"context"

	"github.com/fwojciec/bibfetch"
)

var (
	_ bibfetch.TranslatorRegistry = (*Registry)(nil)
	_ bibfetch.TranslatorLoader   = (*Loader)(nil)
)

// Registry is a mock implementation of bibfetch.TranslatorRegistry.
type Registry struct {
	RegisterFn func(t bibfetch.Translator) error
	GetFn      func(id string) bibfetch.Translator
	ListFn     func() []bibfetch.Translator
	MatchFn    func(url, rootURL string) []bibfetch.Translator
}

func (r *Registry) Register(t bibfetch.Translator) error {
	return r.RegisterFn(t)
}

func (r *Registry) Get(id string) bibfetch.Translator {
	return r.GetFn(id)
}

func (r *Registry) List() []bibfetch.Translator {
	return r.ListFn()
}

func (r *Registry) Match(url, rootURL string) []bibfetch.Translator {
	return r.MatchFn(url, rootURL)
}

// Loader is a mock implementation of bibfetch.TranslatorLoader.
type Loader struct {
	LoadFn func(ctx context.Context, id string) (bibfetch.Translator, error)
}

func (l *Loader) Load(ctx context.Context, id string) (bibfetch.Translator, error) {
	return l.LoadFn(ctx, id)
}
