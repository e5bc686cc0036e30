package translate

import (
	"context"
	"errors"

	"github.com/fwojciec/bibfetch"
	"golang.org/x/sync/errgroup"
)

// DefaultPreloadConcurrency is the number of translators preloaded at once.
const DefaultPreloadConcurrency = 3

// Preload loads the code of every candidate implementing bibfetch.Preloader,
// at most limit at a time. One failure does not stop the others; all
// failures are returned joined.
func Preload(ctx context.Context, candidates []bibfetch.Translator, limit int) error {
	if limit <= 0 {
		limit = DefaultPreloadConcurrency
	}

	errs := make([]error, len(candidates))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, t := range candidates {
		p, ok := t.(bibfetch.Preloader)
		if !ok {
			continue
		}
		g.Go(func() error {
			errs[i] = p.Preload(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
