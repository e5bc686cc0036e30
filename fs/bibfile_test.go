package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Atomic Bibliography File
// Entries are staged in path.tmp and published on commit.

const (
	entryA = "@article{Smith2020,\n  title = {A}\n}"
	entryB = "@book{Doe2019,\n  title = {B}\n}"
)

func TestBibFile_WriteStagesInTempFile(t *testing.T) {
	t.Parallel()

	// Given a bib file target
	path := filepath.Join(t.TempDir(), "refs.bib")
	f := fs.NewBibFile(path)

	// When I write an entry
	err := f.Write(context.Background(), entryA)

	// Then the entry is staged
	require.NoError(t, err)
	staged, err := os.ReadFile(path + ".tmp")
	require.NoError(t, err)
	assert.Equal(t, entryA+"\n", string(staged))

	// And the target does not exist yet
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "target should not exist until commit")
}

func TestBibFile_CommitPublishesEntries(t *testing.T) {
	t.Parallel()

	// Given two staged entries
	path := filepath.Join(t.TempDir(), "refs.bib")
	f := fs.NewBibFile(path)
	require.NoError(t, f.Write(context.Background(), entryA))
	require.NoError(t, f.Write(context.Background(), entryB))

	// When I commit
	err := f.Commit()

	// Then the file holds both entries separated by a blank line
	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, entryA+"\n\n"+entryB+"\n", string(got))

	// And the temp file is gone
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestBibFile_CommitReplacesExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "refs.bib")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))
	f := fs.NewBibFile(path)
	require.NoError(t, f.Write(context.Background(), entryB))

	require.NoError(t, f.Commit())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, entryB+"\n", string(got))
}

func TestBibFile_AppendKeepsExistingEntries(t *testing.T) {
	t.Parallel()

	// Given an existing bibliography
	path := filepath.Join(t.TempDir(), "refs.bib")
	require.NoError(t, os.WriteFile(path, []byte(entryA+"\n"), 0644))
	f := fs.NewBibFile(path, fs.WithAppend())

	// When I append an entry and commit
	require.NoError(t, f.Write(context.Background(), entryB))
	require.NoError(t, f.Commit())

	// Then both entries are present
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, entryA+"\n\n"+entryB+"\n", string(got))
}

func TestBibFile_AbortLeavesTargetUntouched(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "refs.bib")
	require.NoError(t, os.WriteFile(path, []byte(entryA+"\n"), 0644))
	f := fs.NewBibFile(path)
	require.NoError(t, f.Write(context.Background(), entryB))

	err := f.Abort()

	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, entryA+"\n", string(got))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestBibFile_CommitWithoutWritesIsNoop(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "refs.bib")
	f := fs.NewBibFile(path)

	require.NoError(t, f.Commit())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestBibFile_RejectsEmptyEntry(t *testing.T) {
	t.Parallel()

	f := fs.NewBibFile(filepath.Join(t.TempDir(), "refs.bib"))

	err := f.Write(context.Background(), "  \n")

	assert.Equal(t, bibfetch.EINVALID, bibfetch.ErrorCode(err))
}
