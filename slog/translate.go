package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/bibfetch"
)

// Ensure the decorators implement their interfaces.
var (
	_ bibfetch.TranslatorRunner   = (*LoggingRunner)(nil)
	_ bibfetch.TranslationService = (*LoggingService)(nil)
	_ bibfetch.TranslatorLoader   = (*LoggingLoader)(nil)
)

// LoggingRunner wraps a TranslatorRunner with debug logging.
type LoggingRunner struct {
	next   bibfetch.TranslatorRunner
	logger *slog.Logger
}

// NewLoggingRunner creates a new LoggingRunner.
func NewLoggingRunner(next bibfetch.TranslatorRunner, logger *slog.Logger) *LoggingRunner {
	return &LoggingRunner{next: next, logger: logger}
}

// Run logs the outcome of one translator run. Rejected detection is a
// normal outcome and is logged without an error.
func (r *LoggingRunner) Run(ctx context.Context, t bibfetch.Translator, page *bibfetch.Page) (items []*bibfetch.Item, err error) {
	defer func(begin time.Time) {
		var id, url string
		if t != nil {
			id = t.Info().ID
		}
		if page != nil {
			url = page.URL
		}
		if bibfetch.ErrorCode(err) == bibfetch.EREJECTED {
			r.logger.Info("translator run", "translator", id, "url", url, "rejected", true, "duration", time.Since(begin))
			return
		}
		r.logger.Info("translator run",
			"translator", id,
			"url", url,
			"items", len(items),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Run(ctx, t, page)
}

// LoggingService wraps a TranslationService with debug logging.
type LoggingService struct {
	next   bibfetch.TranslationService
	logger *slog.Logger
}

// NewLoggingService creates a new LoggingService.
func NewLoggingService(next bibfetch.TranslationService, logger *slog.Logger) *LoggingService {
	return &LoggingService{next: next, logger: logger}
}

// Translate logs the winning translator or the final error.
func (s *LoggingService) Translate(ctx context.Context, req *bibfetch.TranslationRequest) (res *bibfetch.Result, err error) {
	defer func(begin time.Time) {
		var url, translator string
		var items int
		if req != nil {
			url = req.URL
		}
		if res != nil {
			translator = res.Translator
			items = len(res.Items)
		}
		s.logger.Info("translate",
			"url", url,
			"translator", translator,
			"items", items,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Translate(ctx, req)
}

// LoggingLoader wraps a TranslatorLoader with debug logging.
type LoggingLoader struct {
	next   bibfetch.TranslatorLoader
	logger *slog.Logger
}

// NewLoggingLoader creates a new LoggingLoader.
func NewLoggingLoader(next bibfetch.TranslatorLoader, logger *slog.Logger) *LoggingLoader {
	return &LoggingLoader{next: next, logger: logger}
}

// Load logs translator code loading.
func (l *LoggingLoader) Load(ctx context.Context, id string) (t bibfetch.Translator, err error) {
	defer func(begin time.Time) {
		l.logger.Info("translator load",
			"translator", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return l.next.Load(ctx, id)
}
