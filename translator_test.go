package bibfetch_test

import (
	"context"
	"testing"

	"github.com/fwojciec/bibfetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModule(t *testing.T) {
	t.Parallel()

	t.Run("detect accepts when DetectFn is nil", func(t *testing.T) {
		t.Parallel()

		m := &bibfetch.Module{Meta: bibfetch.TranslatorInfo{ID: "m"}}

		assert.True(t, m.Detect(context.Background(), &bibfetch.Document{}))
	})

	t.Run("extract without ExtractFn is a missing capability", func(t *testing.T) {
		t.Parallel()

		m := &bibfetch.Module{Meta: bibfetch.TranslatorInfo{ID: "m"}}

		items, err := m.Extract(context.Background(), &bibfetch.Document{})

		assert.Nil(t, items)
		assert.Equal(t, bibfetch.EMISSING, bibfetch.ErrorCode(err))
		assert.Equal(t, "m", bibfetch.ErrorTranslator(err))
	})

	t.Run("delegates to functions", func(t *testing.T) {
		t.Parallel()

		m := &bibfetch.Module{
			Meta:     bibfetch.TranslatorInfo{ID: "m"},
			DetectFn: func(_ context.Context, doc *bibfetch.Document) bool { return doc.URL == "https://example.com" },
			ExtractFn: func(_ context.Context, doc *bibfetch.Document) ([]*bibfetch.Item, error) {
				return []*bibfetch.Item{{Title: doc.URL}}, nil
			},
		}
		doc := &bibfetch.Document{URL: "https://example.com"}

		assert.True(t, m.Detect(context.Background(), doc))
		items, err := m.Extract(context.Background(), doc)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "https://example.com", items[0].Title)
	})
}

func TestTranslatorDefinition_Validate(t *testing.T) {
	t.Parallel()

	t.Run("requires an ID", func(t *testing.T) {
		t.Parallel()

		def := &bibfetch.TranslatorDefinition{}

		assert.Equal(t, bibfetch.EINVALID, bibfetch.ErrorCode(def.Validate()))
	})

	t.Run("requires field and selector on every rule", func(t *testing.T) {
		t.Parallel()

		def := &bibfetch.TranslatorDefinition{
			TranslatorInfo: bibfetch.TranslatorInfo{ID: "journal"},
			Fields:         []bibfetch.FieldRule{{Field: "title"}},
		}

		assert.Equal(t, bibfetch.EINVALID, bibfetch.ErrorCode(def.Validate()))
	})

	t.Run("accepts a definition without fields", func(t *testing.T) {
		t.Parallel()

		def := &bibfetch.TranslatorDefinition{TranslatorInfo: bibfetch.TranslatorInfo{ID: "journal"}}

		assert.NoError(t, def.Validate())
	})
}
