// Package fs provides file-based storage for serialized BibTeX entries.
// Writers stage entries in a temporary location and publish them with an
// atomic rename on Commit.
package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fwojciec/bibfetch"
)

// Ensure BibFile implements bibfetch.EntryWriter at compile time.
var _ bibfetch.EntryWriter = (*BibFile)(nil)

// BibFile writes entries into a single .bib file. Entries are appended to
// path.tmp and the temporary file replaces path on Commit.
type BibFile struct {
	path   string
	append bool

	mu      sync.Mutex
	started bool
	size    int64
}

// BibFileOption configures a BibFile.
type BibFileOption func(*BibFile)

// WithAppend keeps the existing contents of the target file and adds new
// entries after them.
func WithAppend() BibFileOption {
	return func(f *BibFile) {
		f.append = true
	}
}

// NewBibFile creates a BibFile targeting path.
func NewBibFile(path string, opts ...BibFileOption) *BibFile {
	f := &BibFile{path: path}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *BibFile) tempPath() string {
	return f.path + ".tmp"
}

// Write stages an entry. Entries are separated by a blank line.
func (f *BibFile) Write(ctx context.Context, entry string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return bibfetch.Errorf(bibfetch.EINVALID, "empty entry")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.started {
		if err := f.start(); err != nil {
			return err
		}
	}

	out, err := os.OpenFile(f.tempPath(), os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer out.Close()

	if f.size > 0 {
		entry = "\n" + entry
	}
	n, err := out.WriteString(entry + "\n")
	f.size += int64(n)
	return err
}

// start creates the temporary file, seeding it with the current contents
// of the target in append mode. Must be called with mu held.
func (f *BibFile) start() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}

	out, err := os.Create(f.tempPath())
	if err != nil {
		return err
	}
	defer out.Close()

	if f.append {
		in, err := os.Open(f.path)
		switch {
		case err == nil:
			defer in.Close()
			n, err := io.Copy(out, in)
			if err != nil {
				return err
			}
			f.size = n
		case !os.IsNotExist(err):
			return err
		}
	}

	f.started = true
	return nil
}

// Commit replaces the target file with the staged entries. Committing
// without any writes leaves the target untouched.
func (f *BibFile) Commit() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.started {
		return nil
	}
	if err := os.Rename(f.tempPath(), f.path); err != nil {
		return err
	}
	f.started = false
	f.size = 0
	return nil
}

// Abort discards the staged entries.
func (f *BibFile) Abort() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.started = false
	f.size = 0
	if err := os.Remove(f.tempPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
