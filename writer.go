package bibfetch

import "context"

// EntryWriter persists serialized bibliography entries with atomic semantics.
// Write stages an entry; Commit makes staged entries permanent;
// Abort discards them.
type EntryWriter interface {
	Write(ctx context.Context, entry string) error
	Commit() error
	Abort() error
}
