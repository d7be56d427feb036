package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/playwright-community/playwright-go"

	"github.com/praxisllmlab/catalogcheck/internal/auth"
	"github.com/praxisllmlab/catalogcheck/internal/intercept"
)

// Toast selectors of the catalog UI.
const (
	ToastBody  = ".Toastify__toast-body"
	ToastClose = ".Toastify__close-button"
)

const storageScript = `() => {
	const out = {};
	for (let i = 0; i < window.localStorage.length; i++) {
		const k = window.localStorage.key(i);
		out[k] = window.localStorage.getItem(k);
	}
	return out;
}`

// Page is one isolated browser page bound to a TB. Every helper fails the
// TB and stops the step on error, like require.
type Page struct {
	tb       TB
	page     playwright.Page
	registry *intercept.Registry
	expect   playwright.PlaywrightAssertions
	opts     Options
	logger   *log.Logger
}

func newPage(tb TB, pg playwright.Page, opts Options) *Page {
	reg := intercept.NewRegistry()
	pg.OnResponse(observe(reg, opts.Logger))
	return &Page{
		tb:       tb,
		page:     pg,
		registry: reg,
		expect:   playwright.NewPlaywrightAssertions(float64(opts.CommandTimeout.Milliseconds())),
		opts:     opts,
		logger:   opts.Logger,
	}
}

// Raw exposes the underlying playwright page.
func (p *Page) Raw() playwright.Page { return p.page }

// Registry returns the page's intercept registry.
func (p *Page) Registry() *intercept.Registry { return p.registry }

func (p *Page) check(err error, format string, args ...any) {
	if err == nil {
		return
	}
	p.tb.Helper()
	p.tb.Errorf("%s: %v", fmt.Sprintf(format, args...), err)
	p.tb.FailNow()
}

// TestID returns the CSS selector for a data-testid value.
func TestID(id string) string { return fmt.Sprintf(`[data-testid="%s"]`, id) }

// Locator returns a locator for selector.
func (p *Page) Locator(selector string) playwright.Locator { return p.page.Locator(selector) }

// Visit navigates to path, relative to the base URL.
func (p *Page) Visit(path string) {
	p.tb.Helper()
	_, err := p.page.Goto(path, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	p.check(err, "visit %s", path)
}

// Login signs in through the login form and waits for the login call.
func (p *Page) Login(username, password string) {
	p.tb.Helper()
	p.Intercept("POST", "/api/v1/users/login", "login")
	p.Visit("/signin")
	p.Fill("#email", username)
	p.Fill("#password", password)
	p.ClickText(".ant-btn", "Login")
	p.WaitStatus("login", 200)
	p.ExpectVisible(TestID("app-bar-item-explore"))
	p.tb.Logf("logged in as %s", username)
}

// SessionToken reads the session token the UI stored after login.
func (p *Page) SessionToken() auth.Token {
	p.tb.Helper()
	deadline := time.Now().Add(p.opts.CommandTimeout)
	for {
		raw, err := p.page.Evaluate(storageScript)
		p.check(err, "read local storage")

		tok, err := auth.FromStorage(stringMap(raw), p.opts.TokenKey, time.Now())
		if err == nil {
			p.logger.Debug("session token", "principal", tok.Principal())
			return tok
		}
		if !errors.Is(err, auth.ErrNoToken) || time.Now().After(deadline) {
			p.check(err, "session token %q", p.opts.TokenKey)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func stringMap(v any) map[string]string {
	m, _ := v.(map[string]any)
	out := make(map[string]string, len(m))
	for k, val := range m {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}

func (p *Page) Click(selector string) {
	p.tb.Helper()
	p.check(p.page.Locator(selector).First().Click(), "click %s", selector)
}

func (p *Page) ClickTestID(id string) {
	p.tb.Helper()
	p.Click(TestID(id))
}

// ClickText clicks the first element matching selector that contains text.
func (p *Page) ClickText(selector, text string) {
	p.tb.Helper()
	loc := p.page.Locator(selector).Filter(playwright.LocatorFilterOptions{HasText: text}).First()
	p.check(loc.Click(), "click %s containing %q", selector, text)
}

// ClickBlank clicks the top-left corner of the page to dismiss popovers.
func (p *Page) ClickBlank() {
	p.tb.Helper()
	p.check(p.page.Mouse().Click(1, 1), "click page corner")
}

func (p *Page) Fill(selector, value string) {
	p.tb.Helper()
	p.check(p.page.Locator(selector).Fill(value), "fill %s", selector)
}

func (p *Page) Press(selector, key string) {
	p.tb.Helper()
	p.check(p.page.Locator(selector).Press(key), "press %s on %s", key, selector)
}

func (p *Page) ScrollIntoView(selector string) {
	p.tb.Helper()
	p.check(p.page.Locator(selector).First().ScrollIntoViewIfNeeded(), "scroll %s into view", selector)
}

// Appears reports whether selector becomes visible within timeout. It never
// fails the TB.
func (p *Page) Appears(selector string, timeout time.Duration) bool {
	err := p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return err == nil
}

// Count returns how many elements match selector right now.
func (p *Page) Count(selector string) int {
	p.tb.Helper()
	n, err := p.page.Locator(selector).Count()
	p.check(err, "count %s", selector)
	return n
}

func (p *Page) ExpectContains(selector, text string) {
	p.tb.Helper()
	err := p.expect.Locator(p.page.Locator(selector).First()).ToContainText(text)
	p.check(err, "expect %s to contain %q", selector, text)
}

func (p *Page) ExpectVisible(selector string) {
	p.tb.Helper()
	p.check(p.expect.Locator(p.page.Locator(selector).First()).ToBeVisible(), "expect %s visible", selector)
}

// ExpectExists waits until selector is attached to the DOM.
func (p *Page) ExpectExists(selector string) {
	p.tb.Helper()
	p.check(p.expect.Locator(p.page.Locator(selector).First()).ToBeAttached(), "expect %s to exist", selector)
}

// ExpectAbsent waits until nothing matches selector.
func (p *Page) ExpectAbsent(selector string) {
	p.tb.Helper()
	p.check(p.expect.Locator(p.page.Locator(selector)).ToHaveCount(0), "expect %s to be absent", selector)
}

func (p *Page) ExpectDisabled(selector string) {
	p.tb.Helper()
	p.check(p.expect.Locator(p.page.Locator(selector)).ToBeDisabled(), "expect %s disabled", selector)
}

func (p *Page) ExpectEnabled(selector string) {
	p.tb.Helper()
	p.check(p.expect.Locator(p.page.Locator(selector)).ToBeEnabled(), "expect %s enabled", selector)
}

// ExpectCount waits until exactly n elements match selector.
func (p *Page) ExpectCount(selector string, n int) {
	p.tb.Helper()
	p.check(p.expect.Locator(p.page.Locator(selector)).ToHaveCount(n), "expect %d of %s", n, selector)
}

// Intercept registers alias for requests matching glob. Register before the
// action that triggers the request.
func (p *Page) Intercept(method, glob, alias string) {
	p.tb.Helper()
	p.check(p.registry.Intercept(method, glob, alias), "intercept %s", alias)
}

// WaitStatus waits for the next exchange on alias and requires status.
func (p *Page) WaitStatus(alias string, status int) intercept.Exchange {
	p.tb.Helper()
	ex, err := p.registry.ExpectStatus(p.tb.Context(), alias, status, p.opts.NetworkTimeout)
	p.check(err, "wait @%s", alias)
	p.logger.Debug("alias resolved", "alias", alias, "status", ex.Status, "url", ex.URL)
	return ex
}

// ExpectToast checks a notification with message is shown and optionally
// closes it.
func (p *Page) ExpectToast(message string, closeToast bool) {
	p.tb.Helper()
	p.ExpectContains(ToastBody, message)
	if closeToast {
		p.Click(ToastClose)
	}
}

// Pause waits a fixed duration for UI refreshes nothing observable signals.
func (p *Page) Pause(d time.Duration) {
	p.page.WaitForTimeout(float64(d.Milliseconds()))
}

// Screenshot captures the full page. It does not fail the TB so it can run
// from after-each hooks of failed scenarios.
func (p *Page) Screenshot() ([]byte, error) {
	return p.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
}

// URL returns the current page URL.
func (p *Page) URL() string { return p.page.URL() }
