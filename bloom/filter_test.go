package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/bibfetch/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_AddAndTest(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	// URL not yet added should return false
	assert.False(t, f.Test("https://example.com/page1"))

	// Add URL
	f.Add("https://example.com/page1")

	// Now it should return true
	assert.True(t, f.Test("https://example.com/page1"))

	// Different URL should still return false
	assert.False(t, f.Test("https://example.com/page2"))
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	// Empty filter should have count near 0
	assert.Equal(t, uint(0), f.EstimatedCount())

	// Add some URLs
	f.Add("https://example.com/page1")
	f.Add("https://example.com/page2")
	f.Add("https://example.com/page3")

	// Estimated count should be approximately 3
	count := f.EstimatedCount()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}

func TestFilter_AddIsIdempotent(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	url := "https://example.com/page1"

	f.Add(url)
	countAfterFirst := f.EstimatedCount()

	// Adding the same URL multiple times should not change the filter
	f.Add(url)
	f.Add(url)
	f.Add(url)

	assert.Equal(t, countAfterFirst, f.EstimatedCount())
	assert.True(t, f.Test(url))
}

func TestFilter_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	const (
		numItems   = 10000
		fpRate     = 0.01
		testProbes = 10000
	)

	f := bloom.NewFilter(numItems, fpRate)

	// Add 10k URLs
	for i := range numItems {
		f.Add(fmt.Sprintf("https://example.com/added/%d", i))
	}

	// Test with 10k URLs that were NOT added
	falsePositives := 0
	for i := range testProbes {
		url := fmt.Sprintf("https://example.com/notadded/%d", i)
		if f.Test(url) {
			falsePositives++
		}
	}

	// False positive rate should be approximately 1%
	// Allow up to 2% to account for statistical variance
	actualRate := float64(falsePositives) / float64(testProbes)
	assert.Less(t, actualRate, 0.02, "false positive rate %f exceeds 2%%", actualRate)
}

func TestFilter_Seen(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(100, 0.01)

	assert.False(t, f.Seen("https://arxiv.org/abs/1706.03762"))
	assert.True(t, f.Seen("https://arxiv.org/abs/1706.03762"))
	assert.True(t, f.Seen("HTTPS://ARXIV.org/abs/1706.03762#comments"))
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases host", in: "https://Example.COM/Paper", want: "https://example.com/Paper"},
		{name: "drops fragment", in: "https://example.com/a#sec2", want: "https://example.com/a"},
		{name: "drops trailing slash", in: "https://example.com/a/", want: "https://example.com/a"},
		{name: "keeps root slash", in: "https://example.com/", want: "https://example.com/"},
		{name: "drops tracking params", in: "https://example.com/a?utm_source=x&id=5", want: "https://example.com/a?id=5"},
		{name: "trims whitespace", in: "  https://example.com/a \n", want: "https://example.com/a"},
		{name: "returns non URLs as is", in: "not a url", want: "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, bloom.NormalizeURL(tt.in))
		})
	}
}

func TestSet_Add(t *testing.T) {
	t.Parallel()

	t.Run("reports repeats after normalization", func(t *testing.T) {
		t.Parallel()

		s := bloom.NewSet(10, 0.01)

		assert.True(t, s.Add("https://example.com/paper"))
		assert.False(t, s.Add("https://EXAMPLE.com/paper/#abstract"))
		assert.True(t, s.Add("https://example.com/other"))
	})

	t.Run("never drops a new URL on a saturated filter", func(t *testing.T) {
		t.Parallel()

		// Sized for one URL with a high error rate, the filter answers
		// "maybe seen" for nearly everything.
		s := bloom.NewSet(1, 0.5)

		for i := range 200 {
			assert.True(t, s.Add(fmt.Sprintf("https://example.com/paper/%d", i)))
		}
	})
}
