// Package browser wraps playwright-go with the page helpers the restore
// suite drives the catalog UI through.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/playwright-community/playwright-go"

	"github.com/praxisllmlab/catalogcheck/internal/config"
	"github.com/praxisllmlab/catalogcheck/internal/intercept"
	"github.com/praxisllmlab/catalogcheck/internal/logging"
)

// TB is the subset of *testing.T and *runner.T the page helpers need.
type TB interface {
	Helper()
	Errorf(format string, args ...any)
	FailNow()
	Logf(format string, args ...any)
	Cleanup(func())
	Context() context.Context
}

// Options configures the browser and every page it opens.
type Options struct {
	Browser        string
	Headless       bool
	SlowMo         time.Duration
	BaseURL        string
	Width          int
	Height         int
	CommandTimeout time.Duration
	NetworkTimeout time.Duration
	TokenKey       string
	Logger         *log.Logger
}

// OptionsFromConfig maps the browser, timeout and auth sections of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Browser:        cfg.Browser.Name,
		Headless:       cfg.Browser.IsHeadless(),
		SlowMo:         cfg.Browser.SlowMo,
		BaseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		Width:          cfg.Browser.Width,
		Height:         cfg.Browser.Height,
		CommandTimeout: cfg.Timeouts.Command,
		NetworkTimeout: cfg.Timeouts.Network,
		TokenKey:       cfg.Auth.TokenKey,
	}
}

func (o *Options) setDefaults() {
	if o.Browser == "" {
		o.Browser = config.DefaultBrowser
	}
	if o.Width == 0 {
		o.Width = config.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = config.DefaultHeight
	}
	if o.CommandTimeout == 0 {
		o.CommandTimeout = config.DefaultCommand
	}
	if o.NetworkTimeout == 0 {
		o.NetworkTimeout = config.DefaultNetwork
	}
	if o.TokenKey == "" {
		o.TokenKey = config.DefaultTokenKey
	}
	if o.Logger == nil {
		o.Logger = logging.Component("browser")
	}
}

// Driver owns the playwright process and one browser instance.
type Driver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
}

// Launch starts playwright and the configured browser.
func Launch(opts Options) (*Driver, error) {
	opts.setDefaults()

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	bt, err := browserType(pw, opts.Browser)
	if err != nil {
		_ = pw.Stop()
		return nil, err
	}
	b, err := bt.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch %s: %w", opts.Browser, err)
	}
	opts.Logger.Info("browser launched", "browser", opts.Browser, "version", b.Version(), "headless", opts.Headless)
	return &Driver{pw: pw, browser: b, opts: opts}, nil
}

func browserType(pw *playwright.Playwright, name string) (playwright.BrowserType, error) {
	switch name {
	case "chromium":
		return pw.Chromium, nil
	case "firefox":
		return pw.Firefox, nil
	case "webkit":
		return pw.WebKit, nil
	}
	return nil, fmt.Errorf("unsupported browser %q", name)
}

// Options returns the effective options.
func (d *Driver) Options() Options { return d.opts }

// Close shuts the browser and the playwright driver down.
func (d *Driver) Close() error {
	return errors.Join(d.browser.Close(), d.pw.Stop())
}

// NewPage opens an isolated browser context with one page. Every response
// the page sees is fed into a fresh intercept registry. The context is
// closed by tb's cleanup.
func (d *Driver) NewPage(tb TB) *Page {
	tb.Helper()

	bctx, err := d.browser.NewContext(playwright.BrowserNewContextOptions{
		BaseURL:  playwright.String(d.opts.BaseURL),
		Viewport: &playwright.Size{Width: d.opts.Width, Height: d.opts.Height},
	})
	if err != nil {
		tb.Errorf("new browser context: %v", err)
		tb.FailNow()
	}
	tb.Cleanup(func() {
		if err := bctx.Close(); err != nil {
			d.opts.Logger.Warn("close browser context", "err", err)
		}
	})
	bctx.SetDefaultTimeout(float64(d.opts.CommandTimeout.Milliseconds()))

	pg, err := bctx.NewPage()
	if err != nil {
		tb.Errorf("new page: %v", err)
		tb.FailNow()
	}
	return newPage(tb, pg, d.opts)
}

func observe(reg *intercept.Registry, logger *log.Logger) func(playwright.Response) {
	return func(resp playwright.Response) {
		ex := intercept.Exchange{
			Method: resp.Request().Method(),
			URL:    resp.URL(),
			Status: resp.Status(),
			At:     time.Now(),
		}
		if strings.Contains(ex.URL, "/api/") {
			logger.Debug("response", "method", ex.Method, "url", ex.URL, "status", ex.Status)
		}
		reg.Observe(ex)
	}
}
