// Package browser captures live board pages through Chrome DevTools, so a
// board can be reported on without saving it by hand first.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"scrumtool/internal/board"
	"scrumtool/internal/logging"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Config controls how Chrome is reached and how pages are loaded.
type Config struct {
	// DebuggerURL connects to an already running Chrome. Empty launches one.
	DebuggerURL       string
	Bin               string
	Headless          bool
	ViewportWidth     int
	ViewportHeight    int
	NavigationTimeout time.Duration
	// WaitSelector is a CSS selector that must appear before capture.
	WaitSelector string
}

// DefaultConfig returns headless capture that waits for the first list.
func DefaultConfig() Config {
	return Config{
		Headless:          true,
		ViewportWidth:     1600,
		ViewportHeight:    1000,
		NavigationTimeout: 30 * time.Second,
		WaitSelector:      ".list",
	}
}

func (c Config) viewport() (int, int) {
	w, h := c.ViewportWidth, c.ViewportHeight
	if w <= 0 {
		w = 1600
	}
	if h <= 0 {
		h = 1000
	}
	return w, h
}

func (c Config) navigationTimeout() time.Duration {
	if c.NavigationTimeout <= 0 {
		return 30 * time.Second
	}
	return c.NavigationTimeout
}

// Snapshot is the rendered HTML of a board page.
type Snapshot struct {
	URL        string    `json:"url"`
	Origin     string    `json:"origin"`
	Title      string    `json:"title"`
	HTML       string    `json:"-"`
	CapturedAt time.Time `json:"captured_at"`
}

// Board parses the snapshot with sel and stamps the page origin on it.
func (s *Snapshot) Board(sel board.Selectors) (*board.Board, error) {
	bd, err := board.Read(strings.NewReader(s.HTML), sel)
	if err != nil {
		return nil, err
	}
	bd.Origin = s.Origin
	return bd, nil
}

// Origin returns scheme://host of an absolute http(s) URL.
func Origin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %q: missing host", raw)
	}
	return u.Scheme + "://" + u.Host, nil
}

// Capturer owns one Chrome connection.
type Capturer struct {
	cfg        Config
	mu         sync.Mutex
	browser    *rod.Browser
	launch     *launcher.Launcher
	controlURL string
}

// NewCapturer creates a Capturer. Chrome is not contacted until Start or
// the first Capture.
func NewCapturer(cfg Config) *Capturer {
	return &Capturer{cfg: cfg}
}

// Start connects to DebuggerURL or launches Chrome.
func (c *Capturer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	log := logging.Get(logging.CategoryBrowser)

	if c.browser != nil {
		if _, err := c.browser.Version(); err == nil {
			return nil
		}
		log.Warn("stale browser connection, reconnecting")
		_ = c.browser.Close()
		c.browser = nil
		c.controlURL = ""
	}

	controlURL := c.cfg.DebuggerURL
	if controlURL == "" {
		l := launcher.New().Headless(c.cfg.Headless)
		if c.cfg.Bin != "" {
			l = l.Bin(c.cfg.Bin)
		}
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		c.launch = l
		controlURL = u
		log.Debugf("launched chrome at %s", u)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		c.cleanupLauncher()
		return fmt.Errorf("connect to chrome: %w", err)
	}
	c.browser = b
	c.controlURL = controlURL
	return nil
}

// ControlURL returns the DevTools WebSocket URL in use.
func (c *Capturer) ControlURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controlURL
}

// Capture loads rawURL in a fresh incognito context and returns its HTML
// once the page has loaded and WaitSelector is present.
func (c *Capturer) Capture(ctx context.Context, rawURL string) (*Snapshot, error) {
	if _, err := Origin(rawURL); err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	b := c.browser
	c.mu.Unlock()
	if b == nil {
		return nil, errors.New("browser not connected")
	}
	log := logging.Get(logging.CategoryBrowser)

	incognito, err := b.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}
	defer incognito.Close()

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer page.Close()

	w, h := c.cfg.viewport()
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             w,
		Height:            h,
		DeviceScaleFactor: 1.0,
	}).Call(page); err != nil {
		log.Warnf("failed to set viewport: %v", err)
	}

	p := page.Context(ctx).Timeout(c.cfg.navigationTimeout())
	if err := p.Navigate(rawURL); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", rawURL, err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for %s to load: %w", rawURL, err)
	}
	if c.cfg.WaitSelector != "" {
		if _, err := p.Element(c.cfg.WaitSelector); err != nil {
			return nil, fmt.Errorf("wait for %q on %s: %w", c.cfg.WaitSelector, rawURL, err)
		}
	}

	doc, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("read page html: %w", err)
	}
	info, err := p.Info()
	if err != nil {
		return nil, fmt.Errorf("read page info: %w", err)
	}

	final := info.URL
	origin, err := Origin(final)
	if err != nil {
		final = rawURL
		origin, _ = Origin(rawURL)
	}
	log.Infof("captured %s (%d bytes)", final, len(doc))

	return &Snapshot{
		URL:        final,
		Origin:     origin,
		Title:      info.Title,
		HTML:       doc,
		CapturedAt: time.Now(),
	}, nil
}

// Shutdown closes the browser and any Chrome this Capturer launched.
func (c *Capturer) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.browser != nil {
		err = c.browser.Close()
		c.browser = nil
	}
	c.cleanupLauncher()
	c.controlURL = ""
	return err
}

func (c *Capturer) cleanupLauncher() {
	if c.launch != nil {
		c.launch.Kill()
		c.launch.Cleanup()
		c.launch = nil
	}
}
