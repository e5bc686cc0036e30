package mock

import (
	"context"

	"github.com/fwojciec/bibfetch"
)

var (
	_ bibfetch.TranslatorRunner   = (*Runner)(nil)
	_ bibfetch.TranslationService = (*Service)(nil)
	_ bibfetch.DocumentParser     = (*Parser)(nil)
)

// Runner is a mock implementation of bibfetch.TranslatorRunner.
type Runner struct {
	RunFn func(ctx context.Context, t bibfetch.Translator, page *bibfetch.Page) ([]*bibfetch.Item, error)
}

func (r *Runner) Run(ctx context.Context, t bibfetch.Translator, page *bibfetch.Page) ([]*bibfetch.Item, error) {
	return r.RunFn(ctx, t, page)
}

// Service is a mock implementation of bibfetch.TranslationService.
type Service struct {
	TranslateFn func(ctx context.Context, req *bibfetch.TranslationRequest) (*bibfetch.Result, error)
}

func (s *Service) Translate(ctx context.Context, req *bibfetch.TranslationRequest) (*bibfetch.Result, error) {
	return s.TranslateFn(ctx, req)
}

// Parser is a mock implementation of bibfetch.DocumentParser.
type Parser struct {
	ParseFn func(page *bibfetch.Page) (*bibfetch.Document, error)
}

func (p *Parser) Parse(page *bibfetch.Page) (*bibfetch.Document, error) {
	return p.ParseFn(page)
}
