package mock

import (
	"context"

	"github.com/fwojciec/bibfetch"
)

var (
	_ bibfetch.Translator = (*Translator)(nil)
	_ bibfetch.Translator = (*PreloadTranslator)(nil)
	_ bibfetch.Preloader  = (*PreloadTranslator)(nil)
)

// Translator is a mock implementation of bibfetch.Translator without
// optional capabilities. Use bibfetch.Module for a translator with Detect.
type Translator struct {
	InfoFn    func() bibfetch.TranslatorInfo
	ExtractFn func(ctx context.Context, doc *bibfetch.Document) ([]*bibfetch.Item, error)
}

func (t *Translator) Info() bibfetch.TranslatorInfo {
	return t.InfoFn()
}

func (t *Translator) Extract(ctx context.Context, doc *bibfetch.Document) ([]*bibfetch.Item, error) {
	return t.ExtractFn(ctx, doc)
}

// PreloadTranslator is a mock translator that also implements bibfetch.Preloader.
type PreloadTranslator struct {
	Translator
	PreloadFn func(ctx context.Context) error
}

func (t *PreloadTranslator) Preload(ctx context.Context) error {
	return t.PreloadFn(ctx)
}
