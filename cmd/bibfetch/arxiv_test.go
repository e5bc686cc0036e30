package main_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/arxiv"
	main "github.com/fwojciec/bibfetch/cmd/bibfetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type arxivClient struct {
	LookupAllFn func(ctx context.Context, ids []string) ([]*arxiv.Entry, error)
}

func (c *arxivClient) LookupAll(ctx context.Context, ids []string) ([]*arxiv.Entry, error) {
	return c.LookupAllFn(ctx, ids)
}

func attentionEntry() *arxiv.Entry {
	return &arxiv.Entry{
		ID:              "1706.03762",
		Title:           "Attention Is All You Need",
		Authors:         []string{"Ashish Vaswani", "Noam Shazeer"},
		Published:       time.Date(2017, 6, 12, 0, 0, 0, 0, time.UTC),
		PrimaryCategory: "cs.CL",
	}
}

func TestArxivCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints BibTeX for each identifier", func(t *testing.T) {
		t.Parallel()

		var got []string
		client := &arxivClient{
			LookupAllFn: func(_ context.Context, ids []string) ([]*arxiv.Entry, error) {
				got = ids
				return []*arxiv.Entry{attentionEntry()}, nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Arxiv: client}

		err := (&main.ArxivCmd{IDs: []string{"https://arxiv.org/abs/1706.03762v5"}}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://arxiv.org/abs/1706.03762v5"}, got)
		assert.Contains(t, stdout.String(), "@article{Vaswani2017,")
		assert.Contains(t, stdout.String(), "eprint = {1706.03762}")
		assert.Contains(t, stdout.String(), "archivePrefix = {arXiv}")
	})

	t.Run("uses BibLaTeX eprint fields", func(t *testing.T) {
		t.Parallel()

		client := &arxivClient{
			LookupAllFn: func(_ context.Context, _ []string) ([]*arxiv.Entry, error) {
				return []*arxiv.Entry{attentionEntry()}, nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Arxiv: client}

		err := (&main.ArxivCmd{IDs: []string{"1706.03762"}, BibLaTeX: true}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "eprinttype = {arxiv}")
		assert.Contains(t, stdout.String(), "eprintclass = {cs.CL}")
	})

	t.Run("reports lookup failure", func(t *testing.T) {
		t.Parallel()

		client := &arxivClient{
			LookupAllFn: func(_ context.Context, _ []string) ([]*arxiv.Entry, error) {
				return nil, bibfetch.Errorf(bibfetch.ENOTFOUND, "arXiv entry 9999.99999 not found")
			},
		}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Arxiv: client}

		err := (&main.ArxivCmd{IDs: []string{"9999.99999"}}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, bibfetch.ENOTFOUND, bibfetch.ErrorCode(err))
		assert.Equal(t, "error: arXiv entry 9999.99999 not found\n", stderr.String())
	})
}
