package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/bibtex"
	"github.com/fwojciec/bibfetch/fs"
	"github.com/gobwas/glob"
)

// Run executes the convert command.
func (c *ConvertCmd) Run(deps *Dependencies) error {
	req := &bibfetch.TranslationRequest{URL: c.URL, RootURL: c.RootURL}

	if c.File != "" {
		data, err := os.ReadFile(c.File)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
		req.Markup = string(data)
	}

	if len(c.Translator) > 0 {
		candidates, err := filterTranslators(deps.Registry.Match(c.URL, c.RootURL), c.Translator)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", bibfetch.ErrorMessage(err))
			return err
		}
		if len(candidates) == 0 {
			err := bibfetch.Errorf(bibfetch.ENOTRANSLATOR, "no translator matching %v applies to %s", c.Translator, c.URL)
			fmt.Fprintf(deps.Stderr, "error: %s\n", bibfetch.ErrorMessage(err))
			return err
		}
		req.Translators = candidates
	}

	res, err := deps.Service.Translate(deps.Ctx, req)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bibfetch.ErrorMessage(err))
		return err
	}

	entries, err := entriesFor(res.Items, dialect(c.BibLaTeX))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bibfetch.ErrorMessage(err))
		return err
	}

	if c.Output == "" {
		return writeEntries(deps, newStdoutWriter(deps.Stdout), entries)
	}

	var opts []fs.BibFileOption
	if c.Append {
		opts = append(opts, fs.WithAppend())
	}
	if err := writeEntries(deps, fs.NewBibFile(c.Output, opts...), entries); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Wrote %d entries to %s (translator: %s)\n", len(entries), c.Output, res.Translator)
	return nil
}

// filterTranslators keeps the candidates whose ID matches any of the glob
// patterns. Candidate order is preserved.
func filterTranslators(candidates []bibfetch.Translator, patterns []string) ([]bibfetch.Translator, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, bibfetch.Wrapf(bibfetch.EINVALID, err, "invalid translator pattern %q", p)
		}
		globs = append(globs, g)
	}

	var out []bibfetch.Translator
	for _, t := range candidates {
		for _, g := range globs {
			if g.Match(t.Info().ID) {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

// entriesFor serializes items to BibTeX entry texts.
func entriesFor(items []*bibfetch.Item, d bibtex.Dialect) ([]string, error) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		e, err := bibtex.FromItem(item, d)
		if err != nil {
			return nil, err
		}
		if err := e.Validate(); err != nil {
			return nil, err
		}
		out = append(out, e.String())
	}
	return out, nil
}

// writeEntries stages every entry and commits, aborting on the first failure.
func writeEntries(deps *Dependencies, w bibfetch.EntryWriter, entries []string) error {
	for _, e := range entries {
		if err := w.Write(deps.Ctx, e); err != nil {
			_ = w.Abort()
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
	}
	if err := w.Commit(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}
