package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto"
	cdpt "github.com/chromedp/cdproto/target"
	"github.com/gorilla/websocket"

	"github.com/nikita55612/BrowserBridge/cdp"
	"github.com/nikita55612/BrowserBridge/extension"
	"github.com/nikita55612/BrowserBridge/log"
)

// Session lifecycle states.
const (
	sessionOpen int64 = iota
	sessionClosing
	sessionClosed
)

// Session is a running browser with a CDP connection to it. All methods
// are safe for concurrent use; a Session must be released with Close.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc

	client  *cdp.Client
	process *BrowserProcess
	logger  *log.Logger

	state int64

	timingsMu sync.RWMutex
	timings   Timings

	ipCheckURL string

	// Pages attached to this session, by target ID.
	pagesMu sync.RWMutex
	pages   map[string]*Page

	evtSubCancel func()
}

// NewSession wires an already-launched browser process and its CDP client
// into a Session: it registers for target attach/detach events, turns on
// auto-attach and waits out the launch settle. chromium.Launch is the usual
// way to get here.
func NewSession(
	ctx context.Context, cancel context.CancelFunc,
	client *cdp.Client, process *BrowserProcess, cfg *SessionConfig,
) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewFromEnv()
	}

	s := &Session{
		ctx:        ctx,
		cancel:     cancel,
		client:     client,
		process:    process,
		logger:     logger,
		timings:    cfg.Timings,
		ipCheckURL: cfg.IPCheckURL,
		pages:      make(map[string]*Page),
	}
	if s.ipCheckURL == "" {
		s.ipCheckURL = DefaultIPCheckURL
	}

	s.initEvents()

	// Auto-attach in flatten mode: page targets get their own session IDs
	// on this one connection.
	if err := client.Target.SetAutoAttach(ctx, true, false, true); err != nil {
		return nil, fmt.Errorf("enabling auto-attach: %w", err)
	}

	if settle := s.Timings().LaunchSettle; settle > 0 {
		select {
		case <-time.After(settle):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	go func() {
		<-client.Done()
		process.didLoseConnection()
	}()

	return s, nil
}

func (s *Session) initEvents() {
	evtCh, cancel := s.client.Subscribe(s.ctx, "",
		cdproto.EventTargetAttachedToTarget,
		cdproto.EventTargetDetachedFromTarget,
	)
	s.evtSubCancel = cancel

	go func() {
		for {
			select {
			case evt, ok := <-evtCh:
				if !ok {
					return
				}
				switch data := evt.Data.(type) {
				case *cdpt.EventAttachedToTarget:
					s.onAttachedToTarget(data)
				case *cdpt.EventDetachedFromTarget:
					s.onDetachedFromTarget(data)
				}
			case <-s.client.Done():
				return
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

func (s *Session) onAttachedToTarget(evt *cdpt.EventAttachedToTarget) {
	ti := evt.TargetInfo
	s.logger.Debugf("Session:onAttachedToTarget",
		"sid:%v tid:%v type:%q url:%q", evt.SessionID, ti.TargetID, ti.Type, ti.URL)

	if ti.Type != "page" {
		return
	}

	// The attach event usually lands before NewPage gets to register the
	// target it created, so track every page target here; NewPage replaces
	// this entry with its own instance once it has the attach confirmed.
	s.pagesMu.Lock()
	if _, ok := s.pages[string(ti.TargetID)]; !ok {
		s.pages[string(ti.TargetID)] = newPage(s, string(ti.TargetID), string(evt.SessionID))
	}
	s.pagesMu.Unlock()
}

func (s *Session) onDetachedFromTarget(evt *cdpt.EventDetachedFromTarget) {
	s.logger.Debugf("Session:onDetachedFromTarget", "sid:%v", evt.SessionID)

	// The detach event only carries the session ID, so find the page by it.
	sid := string(evt.SessionID)
	var p *Page
	s.pagesMu.Lock()
	for tid, q := range s.pages {
		if q.sessionID == sid {
			p = q
			delete(s.pages, tid)
			break
		}
	}
	s.pagesMu.Unlock()

	if p != nil {
		p.markClosed()
	}
}

// NewPage opens a blank page and returns once the browser has attached it
// to the session. The masking init script is installed before anything
// loads in it.
func (s *Session) NewPage(ctx context.Context) (*Page, error) {
	if !s.isOpen() {
		return nil, ErrSessionClosed
	}

	// Subscribe before creating the target so the attach event cannot be
	// missed.
	evtCh, cancel := s.client.Subscribe(s.ctx, "", cdproto.EventTargetAttachedToTarget)
	defer cancel()

	targetID, err := s.client.Target.CreateTarget(ctx, BlankPageURL, "")
	if err != nil {
		return nil, fmt.Errorf("opening a new page: %w", err)
	}

	var p *Page
	timeout := time.NewTimer(s.Timings().WaitPageTimeout + time.Second)
	defer timeout.Stop()
loop:
	for {
		select {
		case evt := <-evtCh:
			data, ok := evt.Data.(*cdpt.EventAttachedToTarget)
			if !ok || string(data.TargetInfo.TargetID) != targetID {
				continue
			}
			p = newPage(s, targetID, string(data.SessionID))
			break loop
		case <-timeout.C:
			return nil, fmt.Errorf("waiting for page %q to attach: timed out", targetID)
		case <-s.client.Done():
			return nil, ErrSessionClosed
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// Replaces the placeholder the attach handler may have stored already.
	s.pagesMu.Lock()
	s.pages[targetID] = p
	s.pagesMu.Unlock()

	if err := p.installStealth(ctx); err != nil {
		s.logger.Warnf("Session:NewPage", "tid:%v installing init script: %v", targetID, err)
	}
	// Each page gets a fresh identity; OpenWithParam overrides it when the
	// caller picked their own.
	if err := p.SetUserAgent(ctx, RandomUserAgent()); err != nil {
		s.logger.Warnf("Session:NewPage", "tid:%v setting user agent: %v", targetID, err)
	}

	return p, nil
}

// Open opens url in a new page and returns the page after its load settled.
func (s *Session) Open(ctx context.Context, url string) (*Page, error) {
	return s.OpenWithParam(ctx, url, nil)
}

// OpenWithCookies opens url with the given cookies injected before
// navigation.
func (s *Session) OpenWithCookies(ctx context.Context, url string, cookies []CookieParam) (*Page, error) {
	return s.OpenWithParam(ctx, url, &PageParam{Cookies: cookies})
}

// OpenWithDuration opens url and keeps the call blocked until at least
// duration has passed since navigation started.
func (s *Session) OpenWithDuration(ctx context.Context, url string, duration time.Duration) (*Page, error) {
	return s.OpenWithParam(ctx, url, &PageParam{Duration: duration})
}

// OpenWithParam opens url in a new page applying the given parameters:
// proxy switch first (it is session-wide), then user agent override and
// cookies, then navigation. A nil param opens the page plain.
func (s *Session) OpenWithParam(ctx context.Context, url string, param *PageParam) (*Page, error) {
	if param != nil && param.Proxy != "" {
		if err := s.SetProxy(ctx, param.Proxy); err != nil {
			return nil, err
		}
	}

	p, err := s.NewPage(ctx)
	if err != nil {
		return nil, err
	}

	closeOnErr := func(err error) (*Page, error) {
		if cerr := p.Close(ctx); cerr != nil {
			s.logger.Warnf("Session:OpenWithParam", "closing page after error: %v", cerr)
		}
		return nil, err
	}

	if param != nil {
		if param.UserAgent != "" {
			if err := p.SetUserAgent(ctx, param.UserAgent); err != nil {
				return closeOnErr(err)
			}
		}
		if len(param.Cookies) > 0 {
			if err := p.SetCookies(ctx, param.Cookies, url); err != nil {
				return closeOnErr(err)
			}
		}
	}

	if err := p.navigate(ctx, url); err != nil {
		return closeOnErr(err)
	}

	// The page settle already elapsed inside navigate; sleep out whatever
	// remains of the requested duration.
	if param != nil && param.Duration > 0 {
		wait := param.Duration - s.Timings().PageSettle
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return closeOnErr(ctx.Err())
		}
	}

	return p, nil
}

// WithOpen opens url, runs fn on the page and closes the page when fn
// returns, no matter how it returns. The page is closed exactly once, also
// when fn panics. Errors from fn and from the close are joined.
func (s *Session) WithOpen(ctx context.Context, url string, fn func(context.Context, *Page) error) error {
	return s.WithOpenParam(ctx, url, nil, fn)
}

// WithOpenParam is WithOpen with page parameters.
func (s *Session) WithOpenParam(
	ctx context.Context, url string, param *PageParam, fn func(context.Context, *Page) error,
) (err error) {
	p, oerr := s.OpenWithParam(ctx, url, param)
	if oerr != nil {
		return oerr
	}
	defer func() {
		cerr := p.Close(ctx)
		if cerr != nil && !errors.Is(cerr, ErrPageClosed) {
			err = errors.Join(err, cerr)
		}
	}()

	return fn(ctx, p)
}

// SetProxy parses spec ([scheme://][user:pass@]host:port) and switches the
// whole browser to it through the companion extension. The switch applies
// to pages opened afterwards. Does not work in the old headless mode, where
// extensions do not load.
func (s *Session) SetProxy(ctx context.Context, spec string) error {
	p, err := ParseProxy(spec)
	if err != nil {
		return err
	}
	s.logger.Debugf("Session:SetProxy", "proxy:%s://%s:%d", p.Scheme, p.Host, p.Port)

	return s.extensionCommand(ctx, extension.SetProxyURL(p.String()), s.Timings().SetProxySettle)
}

// ResetProxy reverts the browser to direct connections.
func (s *Session) ResetProxy(ctx context.Context) error {
	s.logger.Debugf("Session:ResetProxy", "")
	return s.extensionCommand(ctx, extension.ResetProxyURL(), resetProxySettle)
}

// ClearData wipes cookies, cache, local storage and the other browsing data
// through the companion extension.
func (s *Session) ClearData(ctx context.Context) error {
	s.logger.Debugf("Session:ClearData", "")
	return s.extensionCommand(ctx, extension.ClearDataURL(), clearDataSettle)
}

const (
	resetProxySettle = 100 * time.Millisecond
	clearDataSettle  = 150 * time.Millisecond
)

// extensionCommand delivers a command to the companion extension by opening
// a throwaway tab on the reserved command URL. The extension cancels the
// request and removes the tab itself; all that is left is waiting out the
// settle, since the extension gives no acknowledgment.
func (s *Session) extensionCommand(ctx context.Context, url string, settle time.Duration) error {
	if !s.isOpen() {
		return ErrSessionClosed
	}

	if _, err := s.client.Target.CreateTarget(ctx, url, ""); err != nil {
		return fmt.Errorf("delivering extension command: %w", err)
	}

	select {
	case <-time.After(settle):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// ClearCookies deletes all browser cookies over plain CDP, without going
// through the extension.
func (s *Session) ClearCookies(ctx context.Context) error {
	if !s.isOpen() {
		return ErrSessionClosed
	}
	p, err := s.NewPage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(ctx); cerr != nil {
			s.logger.Warnf("Session:ClearCookies", "closing helper page: %v", cerr)
		}
	}()

	sctx := cdp.WithSessionID(ctx, p.sessionID)
	if err := s.client.Network.Enable(sctx); err != nil {
		return err
	}
	return s.client.Network.ClearBrowserCookies(sctx)
}

// UserAgent returns the browser's default user agent string.
func (s *Session) UserAgent(ctx context.Context) (string, error) {
	if !s.isOpen() {
		return "", ErrSessionClosed
	}
	_, _, _, ua, _, err := s.client.Browser.GetVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("getting user agent: %w", err)
	}
	return ua, nil
}

// Version returns the browser's product version string.
func (s *Session) Version(ctx context.Context) (string, error) {
	if !s.isOpen() {
		return "", ErrSessionClosed
	}
	_, product, _, _, _, err := s.client.Browser.GetVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("getting browser version: %w", err)
	}
	return product, nil
}

// Timings returns the session's current settle durations.
func (s *Session) Timings() Timings {
	s.timingsMu.RLock()
	defer s.timingsMu.RUnlock()
	return s.timings
}

// SetTimings replaces the session's settle durations.
func (s *Session) SetTimings(t Timings) {
	s.timingsMu.Lock()
	s.timings = t
	s.timingsMu.Unlock()
}

// Pages returns the currently attached pages.
func (s *Session) Pages() []*Page {
	s.pagesMu.RLock()
	defer s.pagesMu.RUnlock()
	out := make([]*Page, 0, len(s.pages))
	for _, p := range s.pages {
		out = append(out, p)
	}
	return out
}

// IsConnected reports whether the CDP connection to the browser is still
// up.
func (s *Session) IsConnected() bool {
	return s.isOpen() && s.process.isConnected()
}

func (s *Session) isOpen() bool {
	return atomic.LoadInt64(&s.state) == sessionOpen
}

// Close shuts the browser down: it asks it to quit over CDP, waits a
// moment and kills the process if it does not oblige, then releases the
// CDP connection and the temporary profile directory. Safe to call more
// than once; operations after Close return ErrSessionClosed.
func (s *Session) Close() {
	if !atomic.CompareAndSwapInt64(&s.state, sessionOpen, sessionClosing) {
		return
	}
	defer atomic.StoreInt64(&s.state, sessionClosed)

	s.logger.Debugf("Session:Close", "pid:%d", s.process.Pid())
	s.process.GracefulClose()
	if s.evtSubCancel != nil {
		s.evtSubCancel()
	}

	// Outstanding page handles die with the session.
	s.pagesMu.Lock()
	for tid, p := range s.pages {
		p.markClosed()
		delete(s.pages, tid)
	}
	s.pagesMu.Unlock()

	// A clean quit drops the websocket from the browser side, which is
	// not an error here.
	var wsErr *websocket.CloseError
	if err := s.client.Browser.Close(s.ctx); err != nil && !errors.As(err, &wsErr) {
		s.logger.Debugf("Session:Close", "browser refused to close: %v", err)
	}

	if !s.process.WaitDone(5 * time.Second) {
		s.logger.Warnf("Session:Close", "browser did not exit, killing pid %d", s.process.Pid())
		s.process.Kill()
		s.process.WaitDone(time.Second)
	}

	s.client.Disconnect()
	s.cancel()
}
