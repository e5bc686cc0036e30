package mock

import (
	"context"

	"github.com/fwojciec/bibfetch"
)

var _ bibfetch.EntryWriter = (*EntryWriter)(nil)

// EntryWriter is a mock implementation of bibfetch.EntryWriter.
type EntryWriter struct {
	WriteFn  func(ctx context.Context, entry string) error
	CommitFn func() error
	AbortFn  func() error
}

func (w *EntryWriter) Write(ctx context.Context, entry string) error {
	return w.WriteFn(ctx, entry)
}

func (w *EntryWriter) Commit() error {
	return w.CommitFn()
}

func (w *EntryWriter) Abort() error {
	return w.AbortFn()
}
