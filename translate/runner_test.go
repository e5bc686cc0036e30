package translate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/goquery"
	"github.com/fwojciec/bibfetch/mock"
	"github.com/fwojciec/bibfetch/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPage = &bibfetch.Page{URL: "https://example.com/article", Markup: "<html><body><h1>Title</h1></body></html>"}

func module(id string, items []*bibfetch.Item, err error) *bibfetch.Module {
	return &bibfetch.Module{
		Meta: bibfetch.TranslatorInfo{ID: id},
		ExtractFn: func(context.Context, *bibfetch.Document) ([]*bibfetch.Item, error) {
			return items, err
		},
	}
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("returns extracted items", func(t *testing.T) {
		t.Parallel()

		want := []*bibfetch.Item{{Title: "A"}, {Title: "B"}}
		r := translate.NewRunner(goquery.NewParser())

		items, err := r.Run(context.Background(), module("t", want, nil), testPage)

		require.NoError(t, err)
		assert.Equal(t, want, items)
	})

	t.Run("passes the parsed document to the translator", func(t *testing.T) {
		t.Parallel()

		var got *bibfetch.Document
		tr := &mock.Translator{
			InfoFn: func() bibfetch.TranslatorInfo { return bibfetch.TranslatorInfo{ID: "t"} },
			ExtractFn: func(_ context.Context, doc *bibfetch.Document) ([]*bibfetch.Item, error) {
				got = doc
				return nil, nil
			},
		}

		_, err := translate.NewRunner(goquery.NewParser()).Run(context.Background(), tr, testPage)

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, testPage.URL, got.URL)
		assert.NotNil(t, got.Root)
	})

	t.Run("nil translator is a missing capability", func(t *testing.T) {
		t.Parallel()

		_, err := translate.NewRunner(goquery.NewParser()).Run(context.Background(), nil, testPage)

		assert.Equal(t, bibfetch.EMISSING, bibfetch.ErrorCode(err))
	})

	t.Run("missing extract is a missing capability", func(t *testing.T) {
		t.Parallel()

		tr := &bibfetch.Module{Meta: bibfetch.TranslatorInfo{ID: "detect-only"}}

		_, err := translate.NewRunner(goquery.NewParser()).Run(context.Background(), tr, testPage)

		assert.Equal(t, bibfetch.EMISSING, bibfetch.ErrorCode(err))
		assert.Equal(t, "detect-only", bibfetch.ErrorTranslator(err))
	})

	t.Run("malformed markup", func(t *testing.T) {
		t.Parallel()

		_, err := translate.NewRunner(goquery.NewParser()).Run(context.Background(), module("t", nil, nil), &bibfetch.Page{URL: "https://x", Markup: " "})

		assert.Equal(t, bibfetch.EMALFORMED, bibfetch.ErrorCode(err))
		assert.Equal(t, "t", bibfetch.ErrorTranslator(err))
	})

	t.Run("detection rejected", func(t *testing.T) {
		t.Parallel()

		extracted := false
		tr := &bibfetch.Module{
			Meta:     bibfetch.TranslatorInfo{ID: "picky"},
			DetectFn: func(context.Context, *bibfetch.Document) bool { return false },
			ExtractFn: func(context.Context, *bibfetch.Document) ([]*bibfetch.Item, error) {
				extracted = true
				return nil, nil
			},
		}

		_, err := translate.NewRunner(goquery.NewParser()).Run(context.Background(), tr, testPage)

		assert.Equal(t, bibfetch.EREJECTED, bibfetch.ErrorCode(err))
		assert.False(t, extracted)
	})

	t.Run("extraction error wraps the cause with translator ID", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("selector blew up")

		_, err := translate.NewRunner(goquery.NewParser()).Run(context.Background(), module("site", nil, cause), testPage)

		assert.Equal(t, bibfetch.EEXTRACT, bibfetch.ErrorCode(err))
		assert.Equal(t, "site", bibfetch.ErrorTranslator(err))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, cause, errors.Unwrap(err))
	})

	t.Run("recovers panics as extraction errors", func(t *testing.T) {
		t.Parallel()

		tr := &bibfetch.Module{
			Meta: bibfetch.TranslatorInfo{ID: "crashy"},
			ExtractFn: func(context.Context, *bibfetch.Document) ([]*bibfetch.Item, error) {
				panic("boom")
			},
		}

		items, err := translate.NewRunner(goquery.NewParser()).Run(context.Background(), tr, testPage)

		assert.Nil(t, items)
		assert.Equal(t, bibfetch.EEXTRACT, bibfetch.ErrorCode(err))
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("drops invalid items", func(t *testing.T) {
		t.Parallel()

		tr := module("t", []*bibfetch.Item{nil, {Abstract: "no title"}, {Title: "Kept"}}, nil)

		items, err := translate.NewRunner(goquery.NewParser()).Run(context.Background(), tr, testPage)

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Kept", items[0].Title)
	})

	t.Run("no valid items is nil without error", func(t *testing.T) {
		t.Parallel()

		items, err := translate.NewRunner(goquery.NewParser()).Run(context.Background(), module("t", []*bibfetch.Item{{}}, nil), testPage)

		require.NoError(t, err)
		assert.Nil(t, items)
	})

	t.Run("parses a fresh document for every run", func(t *testing.T) {
		t.Parallel()

		calls := 0
		parser := &mock.Parser{ParseFn: func(page *bibfetch.Page) (*bibfetch.Document, error) {
			calls++
			return goquery.NewParser().Parse(page)
		}}
		r := translate.NewRunner(parser)

		_, _ = r.Run(context.Background(), module("a", nil, nil), testPage)
		_, _ = r.Run(context.Background(), module("b", nil, nil), testPage)

		assert.Equal(t, 2, calls)
	})
}
