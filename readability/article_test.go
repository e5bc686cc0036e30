package readability_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parse(t *testing.T, url, markup string) *bibfetch.Document {
	t.Helper()
	root, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	return &bibfetch.Document{URL: url, RootURL: url, Root: root}
}

func TestArticle_Info(t *testing.T) {
	t.Parallel()

	info := readability.NewArticle().Info()

	assert.Equal(t, readability.ArticleID, info.ID)
	assert.True(t, info.Generic())
}

func TestArticle_Extract(t *testing.T) {
	t.Parallel()

	t.Run("rejects missing document", func(t *testing.T) {
		t.Parallel()

		_, err := readability.NewArticle().Extract(context.Background(), nil)

		require.Error(t, err)
		assert.Equal(t, bibfetch.EMALFORMED, bibfetch.ErrorCode(err))
	})

	t.Run("describes the article as a webpage", func(t *testing.T) {
		t.Parallel()

		paragraph := "<p>" + strings.Repeat("Tide pools hold a surprising variety of life between the rocks. ", 12) + "</p>"
		markup := `<!DOCTYPE html>
<html>
<head>
<title>Life in Tide Pools</title>
<meta name="author" content="Jane Doe">
</head>
<body>
<nav><a href="/">Home</a><a href="/about">About</a></nav>
<article>` + paragraph + paragraph + paragraph + `</article>
</body>
</html>`

		items, err := readability.NewArticle().Extract(context.Background(), parse(t, "https://blog.example.com/tide-pools", markup))

		require.NoError(t, err)
		require.Len(t, items, 1)
		item := items[0]
		assert.Equal(t, bibfetch.ItemWebPage, item.Type)
		assert.Equal(t, "Life in Tide Pools", item.Title)
		assert.Equal(t, "https://blog.example.com/tide-pools", item.Identifiers.URL)
		require.Len(t, item.Authors, 1)
		assert.Equal(t, bibfetch.Creator{Family: "Doe", Given: "Jane"}, item.Authors[0])
	})
}
