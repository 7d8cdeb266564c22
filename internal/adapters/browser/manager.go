// Package browser drives a Chromium page through Playwright. It provides the
// page the renderers scroll and the facts the page classifier reads.
package browser

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/okian/eyeflow/pkg/logger"
)

// Default session settings.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultTimeoutMS      = 30000
)

// Options describes the page to open.
type Options struct {
	URL       string
	Headless  bool
	Width     int
	Height    int
	TimeoutMS float64
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultViewportWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultViewportHeight
	}
	if o.TimeoutMS <= 0 {
		o.TimeoutMS = DefaultTimeoutMS
	}
	return o
}

// Manager owns the Playwright driver and at most one open session.
type Manager struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	session *Session
	log     logger.Logger
}

// NewManager returns a manager; nothing is started until Launch.
func NewManager() *Manager {
	return &Manager{log: logger.Named("browser")}
}

// Launch installs the driver if needed, starts Chromium and opens opts.URL.
// A second Launch closes the previous session first.
func (m *Manager) Launch(ctx context.Context, opts Options) (*Session, error) {
	opts = opts.withDefaults()
	if strings.TrimSpace(opts.URL) == "" {
		return nil, ErrNoURL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		m.session.close()
		m.session = nil
	}

	if m.pw == nil {
		runOpts := &playwright.RunOptions{
			Browsers: []string{"chromium"},
			Verbose:  false,
			Stdout:   io.Discard,
			Stderr:   io.Discard,
		}
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("%w: install playwright: %v", ErrBrowserUnavailable, err)
		}
		pw, err := playwright.Run(runOpts)
		if err != nil {
			return nil, fmt.Errorf("%w: start playwright: %v", ErrBrowserUnavailable, err)
		}
		m.pw = pw
	}

	b, err := m.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: launch chromium: %v", ErrBrowserUnavailable, err)
	}

	bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: opts.Width, Height: opts.Height},
	})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("%w: new context: %v", ErrBrowserUnavailable, err)
	}

	pg, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = b.Close()
		return nil, fmt.Errorf("%w: new page: %v", ErrBrowserUnavailable, err)
	}
	pg.SetDefaultTimeout(opts.TimeoutMS)

	resp, err := pg.Goto(opts.URL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		_ = pg.Close()
		_ = bctx.Close()
		_ = b.Close()
		return nil, fmt.Errorf("navigate to %s: %w", opts.URL, err)
	}

	s := &Session{
		browser: b,
		context: bctx,
		page:    pg,
	}
	if resp != nil {
		s.contentType = resp.Headers()["content-type"]
	}

	m.session = s
	m.log.Info(ctx, "page opened",
		logger.String("url", pg.URL()),
		logger.String("contentType", s.contentType),
		logger.Bool("headless", opts.Headless),
	)
	return s, nil
}

// Close closes the open session and stops the driver.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		m.session.close()
		m.session = nil
	}
	if m.pw != nil {
		if err := m.pw.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.pw = nil
	}
	return nil
}
