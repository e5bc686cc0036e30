package bibtex

import (
	"strings"
	"unicode"

	"github.com/fwojciec/bibfetch"
)

// Parse reads BibTeX entries from text. Braced, quoted and bare values are
// supported, as is `#` concatenation. @comment, @preamble and @string
// blocks are skipped. Whitespace inside values is collapsed.
func Parse(text string) ([]*Entry, error) {
	p := &parser{src: text}
	var entries []*Entry
	for {
		at := strings.IndexByte(p.src[p.pos:], '@')
		if at < 0 {
			return entries, nil
		}
		p.pos += at + 1

		entry, err := p.entry()
		if err != nil {
			return nil, err
		}
		if entry != nil {
			entries = append(entries, entry)
		}
	}
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return bibfetch.Errorf(bibfetch.EINVALID, "bibtex offset %d: "+format, append([]any{p.pos}, args...)...)
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte { return p.src[p.pos] }

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(rune(p.peek())) {
		p.pos++
	}
}

func (p *parser) ident() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if c == '=' || c == ',' || c == '{' || c == '}' || c == '(' || c == ')' || c == '"' || c == '#' || unicode.IsSpace(rune(c)) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) entry() (*Entry, error) {
	typ := strings.ToLower(p.ident())
	p.skipSpace()
	if typ == "" || p.eof() {
		return nil, nil
	}

	var closing byte
	switch p.peek() {
	case '{':
		closing = '}'
	case '(':
		closing = ')'
	default:
		// Text outside entries is a comment.
		return nil, nil
	}

	if typ == "comment" || typ == "preamble" || typ == "string" {
		if _, err := p.braced(p.peek(), closing); err != nil {
			return nil, err
		}
		return nil, nil
	}
	p.pos++

	p.skipSpace()
	e := &Entry{Type: typ, Key: strings.TrimSpace(p.ident())}
	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.errorf("unterminated entry %q", e.Key)
		}
		switch p.peek() {
		case closing:
			p.pos++
			return e, nil
		case ',':
			p.pos++
			continue
		}

		name := p.ident()
		if name == "" {
			return nil, p.errorf("expected field name in entry %q", e.Key)
		}
		p.skipSpace()
		if p.eof() || p.peek() != '=' {
			return nil, p.errorf("expected = after field %q", name)
		}
		p.pos++

		value, err := p.value(closing)
		if err != nil {
			return nil, err
		}
		e.Fields = append(e.Fields, Field{Name: strings.ToLower(name), Value: strings.Join(strings.Fields(value), " ")})
	}
}

// value reads a possibly concatenated field value.
func (p *parser) value(closing byte) (string, error) {
	var b strings.Builder
	for {
		p.skipSpace()
		if p.eof() {
			return "", p.errorf("unexpected end of input in value")
		}
		switch p.peek() {
		case '{':
			s, err := p.braced('{', '}')
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case '"':
			s, err := p.quoted()
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		default:
			start := p.pos
			for !p.eof() && p.peek() != ',' && p.peek() != closing && p.peek() != '#' {
				p.pos++
			}
			b.WriteString(strings.TrimSpace(p.src[start:p.pos]))
		}
		p.skipSpace()
		if !p.eof() && p.peek() == '#' {
			p.pos++
			continue
		}
		return b.String(), nil
	}
}

// braced reads a balanced block starting at the opening delimiter and
// returns its content without the outer delimiters.
func (p *parser) braced(open, closing byte) (string, error) {
	start := p.pos + 1
	depth := 0
	for ; !p.eof(); p.pos++ {
		switch p.peek() {
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				s := p.src[start:p.pos]
				p.pos++
				return s, nil
			}
		}
	}
	return "", p.errorf("unbalanced braces")
}

func (p *parser) quoted() (string, error) {
	p.pos++
	start := p.pos
	depth := 0
	for ; !p.eof(); p.pos++ {
		switch p.peek() {
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				s := p.src[start:p.pos]
				p.pos++
				return s, nil
			}
		}
	}
	return "", p.errorf("unterminated quoted value")
}
