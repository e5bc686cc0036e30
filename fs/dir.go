package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/bibtex"
)

// Ensure Dir implements bibfetch.EntryWriter at compile time.
var _ bibfetch.EntryWriter = (*Dir)(nil)

// Dir writes each entry to its own <key>.bib file. Files are saved to
// baseDir/name.tmp and the directory is moved to baseDir/name on Commit.
type Dir struct {
	baseDir string
	name    string
}

// NewDir creates a new Dir.
func NewDir(baseDir, name string) *Dir {
	return &Dir{
		baseDir: baseDir,
		name:    name,
	}
}

func (d *Dir) tempDir() string {
	return filepath.Join(d.baseDir, d.name+".tmp")
}

func (d *Dir) finalDir() string {
	return filepath.Join(d.baseDir, d.name)
}

// KeyToPath returns the file name for an entry's citation key.
// Returns EINVALID if the key would escape the output directory.
func KeyToPath(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", bibfetch.Errorf(bibfetch.EINVALID, "invalid citation key %q: path traversal", key)
	}
	return key + ".bib", nil
}

// Write stages an entry. Entries whose citation keys collide get a
// numeric suffix (Smith2020b, Smith2020c, ...).
func (d *Dir) Write(ctx context.Context, entry string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := bibtex.Parse(entry)
	if err != nil {
		return err
	}
	if len(entries) != 1 {
		return bibfetch.Errorf(bibfetch.EINVALID, "expected one entry, got %d", len(entries))
	}

	name, err := KeyToPath(entries[0].Key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d.tempDir(), 0755); err != nil {
		return err
	}

	path := filepath.Join(d.tempDir(), name)
	stem := strings.TrimSuffix(name, ".bib")
	for suffix := 'b'; fileExists(path); suffix++ {
		if suffix > 'z' {
			return bibfetch.Errorf(bibfetch.ECONFLICT, "too many entries with key %q", stem)
		}
		path = filepath.Join(d.tempDir(), stem+string(suffix)+".bib")
	}
	return os.WriteFile(path, []byte(strings.TrimSpace(entry)+"\n"), 0644)
}

// Commit replaces the output directory with the staged one.
func (d *Dir) Commit() error {
	if !fileExists(d.tempDir()) {
		return nil
	}
	if err := os.RemoveAll(d.finalDir()); err != nil {
		return err
	}
	return os.Rename(d.tempDir(), d.finalDir())
}

// Abort discards the staged directory.
func (d *Dir) Abort() error {
	return os.RemoveAll(d.tempDir())
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
