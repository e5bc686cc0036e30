package translate

import (
	"context"
	"time"

	"github.com/fwojciec/bibfetch"
)

// Ensure Service implements bibfetch.TranslationService at compile time.
var _ bibfetch.TranslationService = (*Service)(nil)

// Service converts a page into items by running candidate translators in
// rank order until one produces items.
type Service struct {
	Registry           bibfetch.TranslatorRegistry
	Runner             bibfetch.TranslatorRunner
	Fetcher            bibfetch.Fetcher
	RetryDelays        []time.Duration
	PreloadConcurrency int

	// Log, if set, receives retry and preload diagnostics.
	Log LogFunc
}

// Translate fetches the page when no markup is given, selects candidates
// and runs them sequentially. The first candidate returning items wins and
// later candidates are never run. Rejections and empty results move on
// silently; other failures are remembered and the last one is returned
// once every candidate has been tried. With nothing remembered the result
// is ENOTRANSLATOR.
func (s *Service) Translate(ctx context.Context, req *bibfetch.TranslationRequest) (*bibfetch.Result, error) {
	if req == nil || req.URL == "" {
		return nil, bibfetch.Errorf(bibfetch.EINVALID, "request URL required")
	}

	markup := req.Markup
	if markup == "" {
		if s.Fetcher == nil {
			return nil, bibfetch.Errorf(bibfetch.EINVALID, "no markup for %s and no fetcher configured", req.URL)
		}
		delays := s.RetryDelays
		if delays == nil {
			delays = DefaultRetryDelays()
		}
		body, err := FetchWithRetryDelays(ctx, req.URL, s.Fetcher.Fetch, s.Log, delays)
		if err != nil {
			return nil, err
		}
		markup = body
	}

	candidates := req.Translators
	if len(candidates) == 0 && s.Registry != nil {
		candidates = s.Registry.Match(req.URL, req.RootURL)
	}
	if len(candidates) == 0 {
		return nil, bibfetch.Errorf(bibfetch.ENOTRANSLATOR, "no translator matches %s", req.URL)
	}

	if err := Preload(ctx, candidates, s.PreloadConcurrency); err != nil && s.Log != nil {
		s.Log("preload for %s: %v", req.URL, err)
	}

	page := &bibfetch.Page{URL: req.URL, RootURL: req.RootURL, Markup: markup}
	var lastErr error
	for _, t := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, err := s.Runner.Run(ctx, t, page)
		if err != nil {
			if bibfetch.ErrorCode(err) != bibfetch.EREJECTED {
				lastErr = err
			}
			continue
		}
		if len(items) == 0 {
			continue
		}
		return &bibfetch.Result{URL: req.URL, Translator: t.Info().ID, Items: items}, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, bibfetch.Errorf(bibfetch.ENOTRANSLATOR, "no translator produced items for %s", req.URL)
}
