// Package regexp2 implements bibfetch.TranslatorRegistry on top of
// github.com/dlclark/regexp2. Translator URL patterns are written in
// JavaScript regular expression syntax, which Go's regexp package does not
// accept (lookaheads, backreferences), so they are compiled in ECMAScript
// mode with a match timeout.
package regexp2

import (
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/fwojciec/bibfetch"
)

// MaxURLLength is the longest URL that patterns are evaluated against.
// Longer inputs never match.
const MaxURLLength = 8192

// DefaultMatchTimeout bounds a single pattern evaluation.
const DefaultMatchTimeout = 100 * time.Millisecond

var _ bibfetch.TranslatorRegistry = (*Registry)(nil)

type entry struct {
	translator bibfetch.Translator
	generic    bool
	emptyRoot  bool
	target     *regexp2.Regexp
	targetAll  *regexp2.Regexp
}

// Registry holds translators in registration order and matches them
// against page URLs. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries []*entry
	byID    map[string]*entry
	timeout time.Duration
}

// Option configures a Registry.
type Option func(*Registry)

// WithMatchTimeout sets the timeout for a single pattern evaluation.
// Defaults to DefaultMatchTimeout.
func WithMatchTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.timeout = d
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byID:    make(map[string]*entry),
		timeout: DefaultMatchTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a translator. Its patterns are compiled once here;
// a pattern that fails to compile is kept but never matches.
func (r *Registry) Register(t bibfetch.Translator) error {
	if t == nil {
		return bibfetch.Errorf(bibfetch.EINVALID, "translator required")
	}
	info := t.Info()
	if info.ID == "" {
		return bibfetch.Errorf(bibfetch.EINVALID, "translator ID required")
	}

	e := &entry{
		translator: t,
		generic:    info.Generic(),
		emptyRoot:  info.Target == "",
		target:     r.compile(info.Target),
		targetAll:  r.compile(info.TargetAll),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[info.ID]; ok {
		return bibfetch.Errorf(bibfetch.ECONFLICT, "translator %q already registered", info.ID)
	}
	r.byID[info.ID] = e
	r.entries = append(r.entries, e)
	return nil
}

func (r *Registry) compile(pattern string) *regexp2.Regexp {
	if pattern == "" {
		return nil
	}
	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err != nil {
		return nil
	}
	re.MatchTimeout = r.timeout
	return re
}

// Get returns the translator with the given ID, or nil.
func (r *Registry) Get(id string) bibfetch.Translator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.byID[id]; ok {
		return e.translator
	}
	return nil
}

// List returns all translators in registration order.
func (r *Registry) List() []bibfetch.Translator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]bibfetch.Translator, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.translator)
	}
	return out
}

// Match returns the translators applicable to url. A translator applies
// when its target matches rootURL or its all-frames target matches url.
// An empty rootURL means url is the top-level page. Root-specific
// translators come before generic ones; registration order is kept
// within each group.
func (r *Registry) Match(url, rootURL string) []bibfetch.Translator {
	if rootURL == "" {
		rootURL = url
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	specific := make([]bibfetch.Translator, 0)
	var generic []bibfetch.Translator
	for _, e := range r.entries {
		if !e.matches(url, rootURL) {
			continue
		}
		if e.generic {
			generic = append(generic, e.translator)
		} else {
			specific = append(specific, e.translator)
		}
	}
	return append(specific, generic...)
}

func (e *entry) matches(url, rootURL string) bool {
	if len(rootURL) <= MaxURLLength {
		if e.emptyRoot || matchString(e.target, rootURL) {
			return true
		}
	}
	if len(url) <= MaxURLLength && matchString(e.targetAll, url) {
		return true
	}
	return false
}

// matchString treats a missing pattern, a timeout or an evaluation error
// as no match.
func matchString(re *regexp2.Regexp, s string) bool {
	if re == nil {
		return false
	}
	ok, err := re.MatchString(s)
	return err == nil && ok
}
