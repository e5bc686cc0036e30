package bibtex_test

import (
	"testing"

	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/bibtex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromItem(t *testing.T) {
	t.Parallel()

	t.Run("journal article in BibTeX dialect", func(t *testing.T) {
		t.Parallel()

		item := &bibfetch.Item{
			Type:        bibfetch.ItemJournalArticle,
			Title:       "A Study",
			Authors:     []bibfetch.Creator{{Family: "Smith", Given: "John"}, {Family: "Doe", Given: "Jane"}},
			Year:        "2020-03-01",
			Container:   "Journal of Things",
			Volume:      "12",
			Issue:       "3",
			Pages:       "1 – 10",
			Identifiers: bibfetch.Identifiers{DOI: "10.1000/xyz"},
		}

		e, err := bibtex.FromItem(item, bibtex.BibTeX)

		require.NoError(t, err)
		want := "@article{Smith2020,\n" +
			"  author = {Smith, John and Doe, Jane},\n" +
			"  title = {A Study},\n" +
			"  journal = {Journal of Things},\n" +
			"  year = {2020},\n" +
			"  volume = {12},\n" +
			"  number = {3},\n" +
			"  pages = {1--10},\n" +
			"  doi = {10.1000/xyz}\n" +
			"}"
		assert.Equal(t, want, e.String())
	})

	t.Run("preprint in BibLaTeX dialect", func(t *testing.T) {
		t.Parallel()

		item := &bibfetch.Item{
			Type:          bibfetch.ItemPreprint,
			Title:         "Strings",
			Authors:       []bibfetch.Creator{{Family: "Witten", Given: "Edward"}},
			Year:          "1999",
			Month:         "01",
			Identifiers:   bibfetch.Identifiers{Eprint: "hep-th/9901001"},
			ArchivePrefix: "arXiv",
			PrimaryClass:  "hep-th",
		}

		e, err := bibtex.FromItem(item, bibtex.BibLaTeX)

		require.NoError(t, err)
		assert.Equal(t, "article", e.Type)
		assert.Equal(t, "1999-01", e.Get("date"))
		assert.Equal(t, "arxiv", e.Get("eprinttype"))
		assert.Equal(t, "hep-th", e.Get("eprintclass"))
		assert.Empty(t, e.Get("archivePrefix"))
	})

	t.Run("container field follows entry type", func(t *testing.T) {
		t.Parallel()

		item := &bibfetch.Item{Type: bibfetch.ItemConferencePaper, Title: "T", Container: "Proc. X"}

		e, err := bibtex.FromItem(item, bibtex.BibTeX)

		require.NoError(t, err)
		assert.Equal(t, "inproceedings", e.Type)
		assert.Equal(t, "Proc. X", e.Get("booktitle"))
		assert.Equal(t, "T", e.Key)
	})

	t.Run("rejects item without title or identifier", func(t *testing.T) {
		t.Parallel()

		_, err := bibtex.FromItem(&bibfetch.Item{Authors: []bibfetch.Creator{{Family: "X"}}}, bibtex.BibTeX)

		assert.Equal(t, bibfetch.ESERIALIZE, bibfetch.ErrorCode(err))
	})
}

func TestFromItems(t *testing.T) {
	t.Parallel()

	items := []*bibfetch.Item{
		{Title: "One", Year: "2001"},
		{Title: "Two", Year: "2002"},
	}

	got, err := bibtex.FromItems(items, bibtex.BibTeX)

	require.NoError(t, err)
	entries, err := bibtex.Parse(got)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "One2001", entries[0].Key)
	assert.Equal(t, "Two2002", entries[1].Key)
}

func TestEntryType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "phdthesis", bibtex.EntryType(bibfetch.ItemThesis, bibtex.BibTeX))
	assert.Equal(t, "thesis", bibtex.EntryType(bibfetch.ItemThesis, bibtex.BibLaTeX))
	assert.Equal(t, "techreport", bibtex.EntryType(bibfetch.ItemReport, bibtex.BibTeX))
	assert.Equal(t, "online", bibtex.EntryType(bibfetch.ItemWebPage, bibtex.BibLaTeX))
	assert.Equal(t, "incollection", bibtex.EntryType(bibfetch.ItemBookSection, bibtex.BibTeX))
	assert.Equal(t, "article", bibtex.EntryType("", bibtex.BibTeX))
}

func TestPages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1--10", bibtex.Pages("1-10"))
	assert.Equal(t, "1--10", bibtex.Pages("1--10"))
	assert.Equal(t, "100--110", bibtex.Pages(" 100 — 110 "))
	assert.Equal(t, "e1234", bibtex.Pages(" e1234 "))
}
