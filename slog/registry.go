package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/bibfetch"
)

// Ensure LoggingRegistry implements bibfetch.TranslatorRegistry.
var _ bibfetch.TranslatorRegistry = (*LoggingRegistry)(nil)

// LoggingRegistry wraps a TranslatorRegistry with debug logging for
// registration and candidate matching.
type LoggingRegistry struct {
	next   bibfetch.TranslatorRegistry
	logger *slog.Logger
}

// NewLoggingRegistry creates a new LoggingRegistry.
func NewLoggingRegistry(next bibfetch.TranslatorRegistry, logger *slog.Logger) *LoggingRegistry {
	return &LoggingRegistry{next: next, logger: logger}
}

// Register delegates to the wrapped registry and logs failures.
func (r *LoggingRegistry) Register(t bibfetch.Translator) error {
	err := r.next.Register(t)
	if err != nil {
		r.logger.Warn("translator registration", "err", err)
	}
	return err
}

// Get delegates to the wrapped registry.
func (r *LoggingRegistry) Get(id string) bibfetch.Translator {
	return r.next.Get(id)
}

// List delegates to the wrapped registry.
func (r *LoggingRegistry) List() []bibfetch.Translator {
	return r.next.List()
}

// Match logs the candidates selected for the URL.
func (r *LoggingRegistry) Match(url, rootURL string) (candidates []bibfetch.Translator) {
	defer func(begin time.Time) {
		ids := make([]string, 0, len(candidates))
		for _, t := range candidates {
			ids = append(ids, t.Info().ID)
		}
		r.logger.Info("translator match",
			"url", url,
			"candidates", ids,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return r.next.Match(url, rootURL)
}
