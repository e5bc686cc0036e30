package rod

import (
	"sync"
	"sync/atomic"

	"github.com/fwojciec/bibfetch"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the default number of rendered pages before the
// browser is restarted.
const DefaultMaxPages = 75

// BrowserManager owns the Chrome process behind a Fetcher and restarts it
// after a fixed number of pages. Chrome's resident memory grows with every
// page and is never fully released.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	rendered atomic.Int64
	maxPages int64
	headless bool
	mu       sync.Mutex
	closed   atomic.Bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the number of pages rendered before a restart.
// Values below one disable recycling.
func WithMaxPages(n int64) ManagerOption {
	return func(m *BrowserManager) {
		m.maxPages = n
	}
}

// WithHeadful shows the browser window. Useful when debugging a
// translator against a page that behaves differently when headless.
func WithHeadful() ManagerOption {
	return func(m *BrowserManager) {
		m.headless = false
	}
}

// NewBrowserManager launches a headless Chrome browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	m := &BrowserManager{
		maxPages: DefaultMaxPages,
		headless: true,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.launch(); err != nil {
		return nil, err
	}
	return m, nil
}

// Browser returns the current browser, restarting it first when the page
// budget is used up. Callers report finished pages with IncrementPageCount.
func (m *BrowserManager) Browser() *rod.Browser {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxPages > 0 && m.rendered.Load() >= m.maxPages {
		m.recycle()
	}
	return m.browser
}

// IncrementPageCount records one rendered page.
func (m *BrowserManager) IncrementPageCount() {
	m.rendered.Add(1)
}

// Close shuts the browser down. Close is safe to call multiple times.
func (m *BrowserManager) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutdown()
}

func (m *BrowserManager) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(m.headless)

	u, err := l.Launch()
	if err != nil {
		return bibfetch.Wrapf(bibfetch.EINTERNAL, err, "launching browser")
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return bibfetch.Wrapf(bibfetch.EINTERNAL, err, "connecting to browser")
	}

	m.browser = browser
	m.launcher = l
	return nil
}

// shutdown must be called with mu held.
func (m *BrowserManager) shutdown() error {
	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	if m.launcher != nil {
		m.launcher.Kill()
		m.launcher = nil
	}
	return err
}

// recycle swaps in a fresh browser. The old one is kept if the new one
// fails to start. Must be called with mu held.
func (m *BrowserManager) recycle() {
	oldBrowser, oldLauncher := m.browser, m.launcher
	m.browser, m.launcher = nil, nil

	if err := m.launch(); err != nil {
		m.browser, m.launcher = oldBrowser, oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	m.rendered.Store(0)
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (m *BrowserManager) LauncherPID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.launcher == nil {
		return 0
	}
	return m.launcher.PID()
}
