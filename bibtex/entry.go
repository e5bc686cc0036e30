// Package bibtex models BibTeX/BibLaTeX entries. It serializes entries to
// the `@type{key,\n  name = {value}\n}` text consumed by reference managers
// and parses that text back into fields.
package bibtex

import (
	"strings"

	"github.com/fwojciec/bibfetch"
)

// Field is a single `name = {value}` pair.
type Field struct {
	Name  string
	Value string
}

// Entry is a BibTeX entry. Fields keep insertion order.
type Entry struct {
	Type   string
	Key    string
	Fields []Field
}

// NewEntry creates an entry with the given type and citation key.
func NewEntry(typ, key string) *Entry {
	return &Entry{Type: typ, Key: SanitizeKey(key)}
}

// Add appends a field. The value is sanitized first; fields whose value is
// empty after sanitization are omitted.
func (e *Entry) Add(name, value string) {
	value = SanitizeValue(value)
	if value == "" {
		return
	}
	e.Fields = append(e.Fields, Field{Name: name, Value: value})
}

// Get returns the value of the first field with the given name
// (case-insensitive), or an empty string.
func (e *Entry) Get(name string) string {
	for _, f := range e.Fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

// Validate returns ESERIALIZE if the entry cannot be written as well-formed BibTeX.
func (e *Entry) Validate() error {
	if e.Type == "" {
		return bibfetch.Errorf(bibfetch.ESERIALIZE, "entry type required")
	}
	if e.Key == "" {
		return bibfetch.Errorf(bibfetch.ESERIALIZE, "entry key required")
	}
	for _, f := range e.Fields {
		if f.Name == "" {
			return bibfetch.Errorf(bibfetch.ESERIALIZE, "entry %s: field name required", e.Key)
		}
		if !balanced(f.Value) {
			return bibfetch.Errorf(bibfetch.ESERIALIZE, "entry %s: unbalanced braces in %s", e.Key, f.Name)
		}
	}
	return nil
}

// String renders the entry. The last field carries no trailing comma.
func (e *Entry) String() string {
	var b strings.Builder
	b.WriteString("@")
	b.WriteString(e.Type)
	b.WriteString("{")
	b.WriteString(e.Key)
	b.WriteString(",\n")
	for i, f := range e.Fields {
		b.WriteString("  ")
		b.WriteString(f.Name)
		b.WriteString(" = {")
		b.WriteString(f.Value)
		b.WriteString("}")
		if i < len(e.Fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// Marshal validates and renders entries separated by blank lines.
func Marshal(entries ...*Entry) (string, error) {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return "", err
		}
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "\n\n"), nil
}

// SanitizeValue trims the value, collapses whitespace and drops braces
// that would leave the value unbalanced.
func SanitizeValue(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if balanced(s) {
		return s
	}

	// Keep only braces that pair up.
	var b strings.Builder
	open := make([]int, 0)
	drop := make(map[int]bool)
	for i, r := range s {
		switch r {
		case '{':
			open = append(open, i)
		case '}':
			if len(open) == 0 {
				drop[i] = true
			} else {
				open = open[:len(open)-1]
			}
		}
	}
	for _, i := range open {
		drop[i] = true
	}
	for i, r := range s {
		if drop[i] {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// SanitizeKey removes characters that are not allowed in citation keys.
func SanitizeKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '-' || r == ':' || r == '.':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func balanced(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
