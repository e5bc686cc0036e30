package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/arxiv"
	"github.com/fwojciec/bibfetch/gjson"
	"github.com/fwojciec/bibfetch/goquery"
	"github.com/fwojciec/bibfetch/htmltomarkdown"
	bibhttp "github.com/fwojciec/bibfetch/http"
	"github.com/fwojciec/bibfetch/readability"
	"github.com/fwojciec/bibfetch/regexp2"
	"github.com/fwojciec/bibfetch/ris"
	"github.com/fwojciec/bibfetch/rod"
	bibslog "github.com/fwojciec/bibfetch/slog"
	"github.com/fwojciec/bibfetch/trafilatura"
	"github.com/fwojciec/bibfetch/translate"
	"github.com/fwojciec/bibfetch/yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Default request rates.
const (
	// defaultDomainRate applies to every host without an override.
	defaultDomainRate = 2.0

	// arxivDomainRate follows the arXiv API terms: one request every three seconds.
	arxivDomainRate = 1.0 / 3
)

// Main represents the program.
type Main struct {
	// Stdin is read by the host and ris commands. Set before calling Run().
	Stdin io.Reader

	// Services for end-to-end testing. Wired from flags when nil.
	Service  bibfetch.TranslationService
	Registry bibfetch.TranslatorRegistry
	Arxiv    ArxivClient

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Stdin: os.Stdin}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	m.closers = nil
	return err
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("bibfetch"),
		kong.Description("Convert bibliographic references on web pages to BibTeX"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Vars{"user_agent": bibhttp.DefaultUserAgent},
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'bibfetch --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger = slog.New(slog.DiscardHandler)
	if cli.Verbose {
		deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	// Offline conversion needs no translation stack.
	if !strings.HasPrefix(kongCtx.Command(), "ris") {
		if err := m.wire(ctx, cli, deps); err != nil {
			return err
		}
		defer m.Close()
	}

	return kongCtx.Run(deps)
}

// wire builds the translation stack from the global flags. Services set
// on Main take precedence.
func (m *Main) wire(ctx context.Context, cli *CLI, deps *Dependencies) error {
	logger := deps.Logger

	timeout := cli.Timeout
	if timeout <= 0 {
		timeout = bibhttp.DefaultFetchTimeout
	}
	apiFetcher := bibhttp.NewFetcher(bibhttp.WithTimeout(timeout), bibhttp.WithUserAgent(cli.UserAgent))
	doiFetcher := bibhttp.NewFetcher(bibhttp.WithTimeout(timeout), bibhttp.WithUserAgent(cli.UserAgent), bibhttp.WithAccept(ris.ContentType))

	limiter := bibhttp.NewDomainLimiter(defaultDomainRate)
	limiter.SetDomainRate("export.arxiv.org", arxivDomainRate)

	client := arxiv.NewClient(bibslog.NewLoggingFetcher(apiFetcher, logger), arxiv.WithLimiter(limiter))
	deps.Arxiv = m.Arxiv
	if deps.Arxiv == nil {
		deps.Arxiv = client
	}

	deps.Registry = m.Registry
	if deps.Registry == nil {
		registry := bibslog.NewLoggingRegistry(regexp2.NewRegistry(), logger)
		if err := m.register(ctx, cli, registry, deps, client, apiFetcher, doiFetcher); err != nil {
			return err
		}
		deps.Registry = registry
	}

	deps.Service = m.Service
	if deps.Service != nil {
		return nil
	}

	var pageFetcher bibfetch.Fetcher = apiFetcher
	if cli.Render {
		rf, err := rod.NewFetcher(rod.WithFetchTimeout(timeout))
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed for --render")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		m.closers = append(m.closers, rf)
		pageFetcher = rf
	}

	service := &translate.Service{
		Registry:           deps.Registry,
		Runner:             bibslog.NewLoggingRunner(translate.NewRunner(goquery.NewParser()), logger),
		Fetcher:            bibslog.NewLoggingFetcher(bibhttp.NewLimitedFetcher(pageFetcher, limiter), logger),
		PreloadConcurrency: translate.DefaultPreloadConcurrency,
		Log: func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		},
	}
	deps.Service = bibslog.NewLoggingService(service, logger)
	return nil
}

// register adds the built-in translators and any translator definitions.
// Specific translators rank by registration order, so arXiv comes first;
// the web page and readability fallbacks are registered last.
func (m *Main) register(ctx context.Context, cli *CLI, registry bibfetch.TranslatorRegistry, deps *Dependencies, client *arxiv.Client, apiFetcher, doiFetcher bibfetch.Fetcher) error {
	conv := htmltomarkdown.NewConverter()

	translators := []bibfetch.Translator{arxiv.NewTranslator(client)}

	defs, err := m.definitions(ctx, cli, conv, apiFetcher, deps.Logger)
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Check BIBFETCH_TRANSLATORS / BIBFETCH_TRANSLATOR_URL")
		return fmt.Errorf("failed to load translator definitions: %w", err)
	}
	translators = append(translators, defs...)

	translators = append(translators,
		goquery.NewEmbeddedMetadata(goquery.WithConverter(conv)),
		gjson.NewJSONLD(),
		goquery.NewRISLink(apiFetcher),
		goquery.NewDOI(doiFetcher),
		trafilatura.NewWebPage(),
		readability.NewArticle(),
	)

	for _, t := range translators {
		if err := registry.Register(t); err != nil {
			return fmt.Errorf("failed to register translator %q: %w", t.Info().ID, err)
		}
	}
	return nil
}

// definitions returns lazy translators for the declarative definitions in
// the translator directory or at the translator URL.
func (m *Main) definitions(ctx context.Context, cli *CLI, conv bibfetch.Converter, fetcher bibfetch.Fetcher, logger *slog.Logger) ([]bibfetch.Translator, error) {
	var (
		infos  []bibfetch.TranslatorInfo
		loader bibfetch.TranslatorLoader
		err    error
	)
	switch {
	case cli.Translators != "":
		l := yaml.NewLoader(os.DirFS(cli.Translators), conv)
		infos, err = l.Index()
		loader = l
	case cli.TranslatorURL != "":
		l := yaml.NewRemoteLoader(fetcher, cli.TranslatorURL, conv)
		infos, err = l.Index(ctx)
		loader = l
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	loader = bibslog.NewLoggingLoader(loader, logger)
	out := make([]bibfetch.Translator, 0, len(infos))
	for _, info := range infos {
		out = append(out, translate.NewLazy(info, loader))
	}
	return out, nil
}
