package browser

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto"
	"github.com/pkg/errors"

	"github.com/nikita55612/BrowserBridge/cdp"
	"github.com/nikita55612/BrowserBridge/log"
	"github.com/nikita55612/BrowserBridge/storage"
)

// BlankPageURL is what new pages start on.
const BlankPageURL = "about:blank"

// Page is one open browser tab, addressed through its own CDP session.
// A Page stays valid until Close or until the browser discards its target.
type Page struct {
	session   *Session
	targetID  string
	sessionID string
	logger    *log.Logger

	closed int64

	persister storage.FilePersister
}

func newPage(s *Session, targetID, sessionID string) *Page {
	return &Page{
		session:   s,
		targetID:  targetID,
		sessionID: sessionID,
		logger:    s.logger,
		persister: &storage.LocalFilePersister{},
	}
}

// TargetID returns the page's CDP target ID.
func (p *Page) TargetID() string { return p.targetID }

// sctx routes CDP commands to this page's session.
func (p *Page) sctx(ctx context.Context) context.Context {
	return cdp.WithSessionID(ctx, p.sessionID)
}

func (p *Page) isClosed() bool {
	return atomic.LoadInt64(&p.closed) != 0
}

func (p *Page) markClosed() {
	atomic.StoreInt64(&p.closed, 1)
}

// navigate loads url in the page and waits for the load event, bounded by
// the page timings. A load event that never fires is not an error; slow
// pages are still returned to the caller after the timeout.
func (p *Page) navigate(ctx context.Context, url string) error {
	if p.isClosed() {
		return ErrPageClosed
	}
	p.logger.Debugf("Page:navigate", "tid:%v url:%q", p.targetID, url)

	sctx := p.sctx(ctx)
	if err := p.session.client.Page.Enable(sctx); err != nil {
		return err
	}

	evtCh, cancel := p.session.client.Subscribe(sctx, "", cdproto.EventPageLoadEventFired)
	defer cancel()

	if _, err := p.session.client.Page.Navigate(sctx, url, "", ""); err != nil {
		return fmt.Errorf("navigating to %q: %w", url, err)
	}

	timings := p.session.Timings()
	select {
	case <-evtCh:
	case <-time.After(timings.WaitPageTimeout):
		p.logger.Debugf("Page:navigate", "tid:%v no load event within %s", p.targetID, timings.WaitPageTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	if timings.PageSettle > 0 {
		select {
		case <-time.After(timings.PageSettle):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Navigate loads url in this page, reusing the tab.
func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.navigate(ctx, url)
}

// Content returns the page's current HTML, serialized from the live DOM.
func (p *Page) Content(ctx context.Context) (string, error) {
	if p.isClosed() {
		return "", ErrPageClosed
	}
	return p.session.client.DOM.GetDocumentOuterHTML(p.sctx(ctx))
}

// Title returns the page's current title. A page without a title yields an
// empty string.
func (p *Page) Title(ctx context.Context) (string, error) {
	if p.isClosed() {
		return "", ErrPageClosed
	}
	info, err := p.session.client.Target.GetTargetInfo(p.sctx(ctx), p.targetID)
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

// URL returns the page's current URL as the browser reports it.
func (p *Page) URL(ctx context.Context) (string, error) {
	if p.isClosed() {
		return "", ErrPageClosed
	}
	info, err := p.session.client.Target.GetTargetInfo(p.sctx(ctx), p.targetID)
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

// InnerText returns the innerText of the first element matching the CSS
// selector, or an empty string when nothing matches.
func (p *Page) InnerText(ctx context.Context, selector string) (string, error) {
	if p.isClosed() {
		return "", ErrPageClosed
	}
	expr := fmt.Sprintf(
		`(document.querySelector(%q) || {}).innerText || ""`, selector)
	return p.session.client.Runtime.EvaluateString(p.sctx(ctx), expr)
}

// Evaluate runs the JavaScript expression in the page and returns its JSON
// encoded result.
func (p *Page) Evaluate(ctx context.Context, expression string) ([]byte, error) {
	if p.isClosed() {
		return nil, ErrPageClosed
	}
	raw, err := p.session.client.Runtime.Evaluate(p.sctx(ctx), expression)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// SetCookies injects the cookies into the page's browser context. Cookies
// without a URL or domain are scoped to pageURL.
func (p *Page) SetCookies(ctx context.Context, cookies []CookieParam, pageURL string) error {
	if p.isClosed() {
		return ErrPageClosed
	}
	if len(cookies) == 0 {
		return nil
	}
	sctx := p.sctx(ctx)
	if err := p.session.client.Network.Enable(sctx); err != nil {
		return err
	}
	return p.session.client.Network.SetCookies(sctx, cdpCookies(cookies, pageURL))
}

// SetUserAgent overrides the user agent the page sends with its requests.
func (p *Page) SetUserAgent(ctx context.Context, userAgent string) error {
	if p.isClosed() {
		return ErrPageClosed
	}
	return p.session.client.Emulation.SetUserAgentOverride(p.sctx(ctx), userAgent)
}

// Screenshot captures the page as a PNG and writes it to path.
func (p *Page) Screenshot(ctx context.Context, path string) error {
	if p.isClosed() {
		return ErrPageClosed
	}
	buf, err := p.session.client.Page.CaptureScreenshot(p.sctx(ctx))
	if err != nil {
		return err
	}
	if err := p.persister.Persist(ctx, path, bytes.NewBuffer(buf)); err != nil {
		return errors.Wrap(err, "persisting the screenshot")
	}
	return nil
}

// Close closes the page's tab. After Close all operations on the page fail
// with ErrPageClosed; closing an already closed page is an ErrPageClosed
// too.
func (p *Page) Close(ctx context.Context) error {
	if !atomic.CompareAndSwapInt64(&p.closed, 0, 1) {
		return ErrPageClosed
	}
	p.logger.Debugf("Page:Close", "tid:%v", p.targetID)

	p.session.pagesMu.Lock()
	delete(p.session.pages, p.targetID)
	p.session.pagesMu.Unlock()

	if err := p.session.client.Target.CloseTarget(ctx, p.targetID); err != nil {
		return err
	}
	return nil
}
