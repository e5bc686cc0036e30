package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/bloom"
	"github.com/fwojciec/bibfetch/fs"
	"golang.org/x/sync/errgroup"
)

// batchFalsePositiveRate bounds how often a new URL needs the exact-set
// check.
const batchFalsePositiveRate = 0.0001

type batchResult struct {
	url   string
	items []*bibfetch.Item
	err   error
}

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	if c.Output != "" && c.Dir != "" {
		err := bibfetch.Errorf(bibfetch.EINVALID, "--output and --dir are mutually exclusive")
		fmt.Fprintf(deps.Stderr, "error: %s\n", bibfetch.ErrorMessage(err))
		return err
	}

	lines, err := c.readURLs(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	seen := bloom.NewSet(uint(max(len(lines), 1)), batchFalsePositiveRate)
	var urls []string
	for _, u := range lines {
		if !seen.Add(u) {
			continue
		}
		urls = append(urls, u)
	}
	duplicates := len(lines) - len(urls)

	results := make([]batchResult, len(urls))
	var g errgroup.Group
	g.SetLimit(max(c.Concurrency, 1))
	for i, u := range urls {
		g.Go(func() error {
			res, err := deps.Service.Translate(deps.Ctx, &bibfetch.TranslationRequest{URL: u})
			results[i] = batchResult{url: u, err: err}
			if err == nil {
				results[i].items = res.Items
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := deps.Ctx.Err(); err != nil {
		return err
	}

	var (
		entries   []string
		converted int
		hashes    = make(map[uint64]bool)
	)
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s: %s\n", r.url, bibfetch.ErrorMessage(r.err))
			continue
		}
		texts, err := entriesFor(r.items, dialect(c.BibLaTeX))
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s: %s\n", r.url, bibfetch.ErrorMessage(err))
			continue
		}
		converted++
		for _, text := range texts {
			// The same work is often reachable from several URLs.
			h := xxhash.Sum64String(text)
			if hashes[h] {
				continue
			}
			hashes[h] = true
			entries = append(entries, text)
		}
	}

	if err := writeEntries(deps, c.writer(deps), entries); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stderr, "Converted %d of %d URLs (%d entries, %d duplicate URLs skipped)\n", converted, len(urls), len(entries), duplicates)
	if converted == 0 && len(urls) > 0 {
		return fmt.Errorf("no URL could be converted")
	}
	return nil
}

func (c *BatchCmd) writer(deps *Dependencies) bibfetch.EntryWriter {
	switch {
	case c.Dir != "":
		dir := filepath.Clean(c.Dir)
		return fs.NewDir(filepath.Dir(dir), filepath.Base(dir))
	case c.Output != "":
		var opts []fs.BibFileOption
		if c.Append {
			opts = append(opts, fs.WithAppend())
		}
		return fs.NewBibFile(c.Output, opts...)
	}
	return newStdoutWriter(deps.Stdout)
}

// readURLs returns the non-blank lines of the input that are not
// #-comments.
func (c *BatchCmd) readURLs(deps *Dependencies) ([]string, error) {
	var r io.Reader = deps.Stdin
	if c.Input != "-" {
		f, err := os.Open(c.Input)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
