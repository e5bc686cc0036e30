package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/ris"
)

// Run executes the ris command.
func (c *RISCmd) Run(deps *Dependencies) error {
	var r io.Reader = deps.Stdin
	if c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	text, err := ris.Convert(string(data))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bibfetch.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, text)
	return nil
}
