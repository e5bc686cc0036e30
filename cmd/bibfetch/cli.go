package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/arxiv"
	"github.com/fwojciec/bibfetch/bibtex"
)

// ArxivClient looks up arXiv entries by identifier.
type ArxivClient interface {
	LookupAll(ctx context.Context, ids []string) ([]*arxiv.Entry, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Service  bibfetch.TranslationService
	Registry bibfetch.TranslatorRegistry
	Arxiv    ArxivClient
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose       bool          `short:"v" help:"Log fetches, matches and translator runs to stderr"`
	Timeout       time.Duration `default:"10s" env:"BIBFETCH_TIMEOUT" help:"Timeout for a single fetch"`
	UserAgent     string        `default:"${user_agent}" env:"BIBFETCH_USER_AGENT" help:"User-Agent sent to remote servers"`
	Translators   string        `type:"existingdir" env:"BIBFETCH_TRANSLATORS" help:"Directory of YAML translator definitions"`
	TranslatorURL string        `name:"translator-url" env:"BIBFETCH_TRANSLATOR_URL" help:"Base URL of published YAML translator definitions"`
	Render        bool          `help:"Render pages in headless Chrome before translating"`

	Convert    ConvertCmd     `cmd:"" help:"Convert the references on a web page to BibTeX"`
	Batch      BatchCmd       `cmd:"" help:"Convert a list of web pages into one bibliography"`
	RIS        RISCmd         `cmd:"" name:"ris" help:"Convert RIS records to BibTeX"`
	Arxiv      ArxivCmd       `cmd:"" help:"Look up arXiv identifiers and print BibTeX"`
	List       TranslatorsCmd `cmd:"" name:"translators" help:"List registered translators"`
	Host       HostCmd        `cmd:"" help:"Serve browser native messaging requests on stdin/stdout"`
}

// ConvertCmd is the "convert" subcommand.
type ConvertCmd struct {
	URL        string   `arg:"" help:"Page URL"`
	File       string   `short:"f" type:"existingfile" help:"Read the page HTML from a file instead of fetching it"`
	RootURL    string   `name:"root-url" help:"Top-level page URL when the page is a frame"`
	Translator []string `short:"t" help:"Only try translators whose ID matches the glob (repeatable)"`
	BibLaTeX   bool     `name:"biblatex" help:"Use BibLaTeX field names"`
	Output     string   `short:"o" help:"Write entries to this .bib file instead of stdout"`
	Append     bool     `short:"a" help:"Keep existing entries in the output file"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	Input       string `arg:"" default:"-" help:"File with one URL per line, - for stdin"`
	Output      string `short:"o" help:"Write entries to this .bib file instead of stdout"`
	Dir         string `help:"Write one <key>.bib file per entry into this directory"`
	Append      bool   `short:"a" help:"Keep existing entries in the output file"`
	BibLaTeX    bool   `name:"biblatex" help:"Use BibLaTeX field names"`
	Concurrency int    `short:"c" default:"3" help:"Concurrent page conversions"`
}

// RISCmd is the "ris" subcommand.
type RISCmd struct {
	File string `arg:"" default:"-" help:"RIS file, - for stdin"`
}

// ArxivCmd is the "arxiv" subcommand.
type ArxivCmd struct {
	IDs      []string `arg:"" name:"id" help:"arXiv identifiers or abs/pdf URLs"`
	BibLaTeX bool     `name:"biblatex" help:"Use BibLaTeX field names"`
}

// TranslatorsCmd is the "translators" subcommand.
type TranslatorsCmd struct {
	Pattern string `arg:"" optional:"" help:"Glob matched against translator IDs"`
	URL     string `help:"Only show translators that apply to this URL, in rank order"`
}

// HostCmd is the "host" subcommand.
type HostCmd struct{}

func dialect(biblatex bool) bibtex.Dialect {
	if biblatex {
		return bibtex.BibLaTeX
	}
	return bibtex.BibTeX
}
