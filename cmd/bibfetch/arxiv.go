package main

import (
	"fmt"

	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/bibtex"
)

// Run executes the arxiv command.
func (c *ArxivCmd) Run(deps *Dependencies) error {
	entries, err := deps.Arxiv.LookupAll(deps.Ctx, c.IDs)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bibfetch.ErrorMessage(err))
		return err
	}

	out := make([]*bibtex.Entry, 0, len(entries))
	for _, e := range entries {
		if !c.BibLaTeX {
			out = append(out, e.BibTeX())
			continue
		}
		be, err := bibtex.FromItem(e.Item(), bibtex.BibLaTeX)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", bibfetch.ErrorMessage(err))
			return err
		}
		out = append(out, be)
	}

	text, err := bibtex.Marshal(out...)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bibfetch.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, text)
	return nil
}
