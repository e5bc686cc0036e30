package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// metaTags collects <meta> values keyed by lowercased name or property,
// in document order.
type metaTags map[string][]string

func collectMeta(doc *goquery.Document) metaTags {
	tags := make(metaTags)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key, ok := s.Attr("name")
		if !ok || key == "" {
			key, ok = s.Attr("property")
		}
		if !ok || key == "" {
			return
		}
		content := strings.Join(strings.Fields(s.AttrOr("content", "")), " ")
		if content == "" {
			return
		}
		key = strings.ToLower(strings.TrimSpace(key))
		tags[key] = append(tags[key], content)
	})
	return tags
}

// first returns the first value of the first key present.
func (m metaTags) first(keys ...string) string {
	for _, k := range keys {
		if vals := m[k]; len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}

// all returns every value of the first key present.
func (m metaTags) all(keys ...string) []string {
	for _, k := range keys {
		if vals := m[k]; len(vals) > 0 {
			return vals
		}
	}
	return nil
}

// has reports whether any of the keys is present.
func (m metaTags) has(keys ...string) bool {
	for _, k := range keys {
		if len(m[k]) > 0 {
			return true
		}
	}
	return false
}
