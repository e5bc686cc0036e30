package gjson_test

import (
	"context"
	"testing"

	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/gjson"
	"github.com/fwojciec/bibfetch/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, url, markup string) *bibfetch.Document {
	t.Helper()
	doc, err := goquery.NewParser().Parse(&bibfetch.Page{URL: url, Markup: markup})
	require.NoError(t, err)
	return doc
}

const scholarlyPage = `<html><head>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "ScholarlyArticle",
  "headline": "Deep   Residual Learning",
  "author": [
    {"@type": "Person", "familyName": "He", "givenName": "Kaiming"},
    {"@type": "Person", "name": "Xiangyu Zhang"},
    "Ren, Shaoqing"
  ],
  "datePublished": "2016-06-27",
  "description": "We present a residual learning framework.",
  "pageStart": "770",
  "pageEnd": "778",
  "keywords": "residual, deep learning",
  "sameAs": "https://doi.org/10.1109/CVPR.2016.90",
  "publisher": {"@type": "Organization", "name": "IEEE"},
  "isPartOf": {
    "@type": "PublicationIssue",
    "issueNumber": "1",
    "isPartOf": {
      "@type": "PublicationVolume",
      "volumeNumber": "2016",
      "isPartOf": {"@type": "Periodical", "name": "Proceedings of CVPR", "issn": "1063-6919"}
    }
  }
}
</script>
</head><body></body></html>`

func TestJSONLD_Info(t *testing.T) {
	t.Parallel()

	info := gjson.NewJSONLD().Info()

	assert.Equal(t, "json-ld", info.ID)
	assert.True(t, info.Generic())
}

func TestJSONLD_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts a scholarly article", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, "https://example.org/paper", scholarlyPage)
		tr := gjson.NewJSONLD()

		require.True(t, tr.Detect(context.Background(), doc))
		items, err := tr.Extract(context.Background(), doc)

		require.NoError(t, err)
		require.Len(t, items, 1)
		item := items[0]
		assert.Equal(t, bibfetch.ItemJournalArticle, item.Type)
		assert.Equal(t, "Deep Residual Learning", item.Title)
		assert.Equal(t, []bibfetch.Creator{
			{Family: "He", Given: "Kaiming"},
			{Family: "Zhang", Given: "Xiangyu"},
			{Family: "Ren", Given: "Shaoqing"},
		}, item.Authors)
		assert.Equal(t, "2016", item.Year)
		assert.Equal(t, "06", item.Month)
		assert.Equal(t, "770-778", item.Pages)
		assert.Equal(t, "IEEE", item.Publisher)
		assert.Equal(t, "1", item.Issue)
		assert.Equal(t, "2016", item.Volume)
		assert.Equal(t, "Proceedings of CVPR", item.Container)
		assert.Equal(t, "1063-6919", item.ISSN)
		assert.Equal(t, "10.1109/CVPR.2016.90", item.Identifiers.DOI)
		assert.Equal(t, []string{"residual", "deep learning"}, item.Keywords)
	})

	t.Run("reads nodes from a graph", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, "https://example.org/book", `<script type="application/ld+json">
{"@context": "https://schema.org", "@graph": [
  {"@type": "WebSite", "name": "Example Press"},
  {"@type": ["Book"], "name": "The Go Programming Language", "isbn": "9780134190440",
   "author": [{"name": "Alan Donovan"}, {"name": "Brian Kernighan"}], "datePublished": "2015"}
]}
</script>`)

		items, err := gjson.NewJSONLD().Extract(context.Background(), doc)

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, bibfetch.ItemBook, items[0].Type)
		assert.Equal(t, "9780134190440", items[0].ISBN)
		assert.Equal(t, "2015", items[0].Year)
		assert.Empty(t, items[0].Month)
		assert.Equal(t, "https://example.org/book", items[0].Identifiers.URL)
	})

	t.Run("treats an article in a periodical as a journal article", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, "https://example.org/a", `<script type="application/ld+json">
{"@type": "Article", "headline": "Plain", "isPartOf": {"@type": "Periodical", "name": "Journal"}}
</script>`)

		items, err := gjson.NewJSONLD().Extract(context.Background(), doc)

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, bibfetch.ItemJournalArticle, items[0].Type)
	})

	t.Run("treats a standalone article as a web page", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, "https://example.org/a", `<script type="application/ld+json">
{"@type": "NewsArticle", "headline": "Plain", "author": {"@type": "Organization", "name": "Reuters Staff"}}
</script>`)

		items, err := gjson.NewJSONLD().Extract(context.Background(), doc)

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, bibfetch.ItemWebPage, items[0].Type)
		assert.Equal(t, []bibfetch.Creator{{Family: "Reuters Staff"}}, items[0].Authors)
	})

	t.Run("reads a thesis institution", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, "https://example.org/t", `<script type="application/ld+json">
{"@type": "Thesis", "name": "On Things", "sourceOrganization": {"name": "MIT"}}
</script>`)

		items, err := gjson.NewJSONLD().Extract(context.Background(), doc)

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, bibfetch.ItemThesis, items[0].Type)
		assert.Equal(t, "MIT", items[0].Container)
	})

	t.Run("skips invalid and unsupported blocks", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, "https://example.org/", `<script type="application/ld+json">{not json</script>
<script type="application/ld+json">{"@type": "Organization", "name": "Example"}</script>
<script type="application/ld+json">{"@type": "ScholarlyArticle"}</script>`)
		tr := gjson.NewJSONLD()

		items, err := tr.Extract(context.Background(), doc)

		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("does not detect pages without JSON-LD", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, "https://example.org/", `<html><body><p>hi</p></body></html>`)

		assert.False(t, gjson.NewJSONLD().Detect(context.Background(), doc))
	})

	t.Run("deduplicates repeated nodes", func(t *testing.T) {
		t.Parallel()

		block := `<script type="application/ld+json">{"@type": "ScholarlyArticle", "name": "Twice"}</script>`
		doc := parse(t, "https://example.org/", block+block)

		items, err := gjson.NewJSONLD().Extract(context.Background(), doc)

		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}
