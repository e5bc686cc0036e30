// Package yaml loads declarative translator definitions. A definition maps
// item fields to CSS selectors and is compiled into a goquery.Selector.
// Definitions are read on demand, so the registry holds lazy translators
// built from an index until a page actually needs one.
package yaml

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/goquery"
	"gopkg.in/yaml.v3"
)

// IndexFile is the name of the index listing the available definitions.
const IndexFile = "index.yaml"

// Decode reads a translator definition. Unknown keys are rejected so typos
// in field rules surface early. Returns EINVALID for malformed documents.
func Decode(r io.Reader) (*bibfetch.TranslatorDefinition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var def bibfetch.TranslatorDefinition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, bibfetch.Errorf(bibfetch.EINVALID, "empty translator definition")
		}
		return nil, bibfetch.Wrapf(bibfetch.EINVALID, err, "decoding translator definition")
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// index is the on-disk shape of index.yaml.
type index struct {
	Translators []bibfetch.TranslatorInfo `yaml:"translators"`
}

// LoadIndex reads translator metadata from an index document.
// Entries without an ID are EINVALID.
func LoadIndex(r io.Reader) ([]bibfetch.TranslatorInfo, error) {
	var idx index
	if err := yaml.NewDecoder(r).Decode(&idx); err != nil && !errors.Is(err, io.EOF) {
		return nil, bibfetch.Wrapf(bibfetch.EINVALID, err, "decoding translator index")
	}
	for i, info := range idx.Translators {
		if info.ID == "" {
			return nil, bibfetch.Errorf(bibfetch.EINVALID, "translator index entry %d: ID required", i)
		}
	}
	return idx.Translators, nil
}

// compile turns a definition into a translator, checking that it is the
// one that was asked for.
func compile(def *bibfetch.TranslatorDefinition, id string, conv bibfetch.Converter) (bibfetch.Translator, error) {
	if def.ID != id {
		return nil, bibfetch.Errorf(bibfetch.EINVALID, "definition %q declares ID %q", id, def.ID)
	}
	return goquery.NewSelector(def, conv)
}

// validID rejects identifiers that cannot name a definition file.
func validID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return bibfetch.Errorf(bibfetch.EINVALID, "invalid translator ID %q", id)
	}
	return nil
}

// Ensure Loader implements bibfetch.TranslatorLoader at compile time.
var _ bibfetch.TranslatorLoader = (*Loader)(nil)

// Loader reads <id>.yaml definitions from a file system.
type Loader struct {
	fsys fs.FS
	conv bibfetch.Converter
}

// NewLoader creates a Loader. conv converts HTML-valued fields and may be
// nil when no definition uses them.
func NewLoader(fsys fs.FS, conv bibfetch.Converter) *Loader {
	return &Loader{fsys: fsys, conv: conv}
}

// Load compiles the definition with the given ID.
// Returns ENOTFOUND if no definition file exists.
func (l *Loader) Load(ctx context.Context, id string) (bibfetch.Translator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validID(id); err != nil {
		return nil, err
	}

	f, err := l.fsys.Open(id + ".yaml")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, bibfetch.Errorf(bibfetch.ENOTFOUND, "translator %q not found", id)
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	def, err := Decode(f)
	if err != nil {
		return nil, err
	}
	return compile(def, id, l.conv)
}

// Index returns the translators listed in index.yaml. Without an index,
// every *.yaml definition in the root is decoded for its metadata.
func (l *Loader) Index() ([]bibfetch.TranslatorInfo, error) {
	f, err := l.fsys.Open(IndexFile)
	if err == nil {
		defer f.Close()
		return LoadIndex(f)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	names, err := fs.Glob(l.fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	infos := make([]bibfetch.TranslatorInfo, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(l.fsys, name)
		if err != nil {
			return nil, err
		}
		def, err := Decode(bytes.NewReader(data))
		if err != nil {
			return nil, bibfetch.Wrapf(bibfetch.EINVALID, err, "%s", path.Base(name))
		}
		infos = append(infos, def.TranslatorInfo)
	}
	return infos, nil
}

// Ensure RemoteLoader implements bibfetch.TranslatorLoader at compile time.
var _ bibfetch.TranslatorLoader = (*RemoteLoader)(nil)

// RemoteLoader fetches <base>/<id>.yaml definitions through a Fetcher.
type RemoteLoader struct {
	fetcher bibfetch.Fetcher
	base    string
	conv    bibfetch.Converter
}

// NewRemoteLoader creates a RemoteLoader for definitions published under
// base.
func NewRemoteLoader(f bibfetch.Fetcher, base string, conv bibfetch.Converter) *RemoteLoader {
	return &RemoteLoader{fetcher: f, base: strings.TrimSuffix(base, "/"), conv: conv}
}

// Load fetches and compiles the definition with the given ID. A missing
// definition surfaces the fetcher's ENOTFOUND.
func (l *RemoteLoader) Load(ctx context.Context, id string) (bibfetch.Translator, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	body, err := l.fetcher.Fetch(ctx, l.base+"/"+id+".yaml")
	if err != nil {
		return nil, err
	}

	def, err := Decode(strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	return compile(def, id, l.conv)
}

// Index fetches <base>/index.yaml.
func (l *RemoteLoader) Index(ctx context.Context) ([]bibfetch.TranslatorInfo, error) {
	body, err := l.fetcher.Fetch(ctx, l.base+"/"+IndexFile)
	if err != nil {
		return nil, err
	}
	return LoadIndex(strings.NewReader(body))
}
