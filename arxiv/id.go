package arxiv

import (
	"regexp"
	"strings"

	"github.com/fwojciec/bibfetch"
)

var idRe = regexp.MustCompile(`^(\d{4}\.\d{4,5}|[a-z][a-z\-]*(?:\.[A-Z]{2})?/\d{7})(?:v\d+)?$`)

// ParseID extracts a versionless arXiv identifier from an identifier,
// an `arXiv:` reference or an arxiv.org abs/pdf URL.
// Returns EINVALID when s does not contain an identifier.
func ParseID(s string) (string, error) {
	id := strings.TrimSpace(s)
	if len(id) > 6 && strings.EqualFold(id[:6], "arxiv:") {
		id = id[6:]
	}
	if i := strings.Index(id, "arxiv.org/"); i >= 0 {
		id = id[i+len("arxiv.org/"):]
		if j := strings.IndexAny(id, "?#"); j >= 0 {
			id = id[:j]
		}
		kind, rest, ok := strings.Cut(id, "/")
		if !ok || (kind != "abs" && kind != "pdf") {
			return "", bibfetch.Errorf(bibfetch.EINVALID, "not an arXiv article URL: %s", s)
		}
		id = strings.TrimSuffix(strings.TrimSuffix(rest, "/"), ".pdf")
	}

	m := idRe.FindStringSubmatch(id)
	if m == nil {
		return "", bibfetch.Errorf(bibfetch.EINVALID, "invalid arXiv identifier: %s", s)
	}
	return m[1], nil
}

// keyFromID turns an identifier into a citation key.
func keyFromID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == ':', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
