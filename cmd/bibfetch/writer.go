package main

import (
	"context"
	"io"
	"strings"

	"github.com/fwojciec/bibfetch"
)

// Ensure stdoutWriter implements bibfetch.EntryWriter at compile time.
var _ bibfetch.EntryWriter = (*stdoutWriter)(nil)

// stdoutWriter prints entries as they are written, separated by blank
// lines. Commit and Abort have nothing to do.
type stdoutWriter struct {
	w     io.Writer
	count int
}

func newStdoutWriter(w io.Writer) *stdoutWriter {
	return &stdoutWriter{w: w}
}

func (s *stdoutWriter) Write(_ context.Context, entry string) error {
	sep := ""
	if s.count > 0 {
		sep = "\n"
	}
	s.count++
	_, err := io.WriteString(s.w, sep+strings.TrimSpace(entry)+"\n")
	return err
}

func (s *stdoutWriter) Commit() error { return nil }

func (s *stdoutWriter) Abort() error { return nil }
