package main

import (
	"fmt"

	"github.com/fwojciec/bibfetch"
)

// Run executes the translators command.
func (c *TranslatorsCmd) Run(deps *Dependencies) error {
	translators := deps.Registry.List()
	if c.URL != "" {
		translators = deps.Registry.Match(c.URL, "")
	}

	if c.Pattern != "" {
		var err error
		translators, err = filterTranslators(translators, []string{c.Pattern})
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", bibfetch.ErrorMessage(err))
			return err
		}
	}

	if len(translators) == 0 {
		fmt.Fprintln(deps.Stdout, "No translators found.")
		return nil
	}

	for _, t := range translators {
		info := t.Info()
		kind := "specific"
		if info.Generic() {
			kind = "generic"
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s\n", info.ID, kind, info.Label, info.Target)
	}
	return nil
}
