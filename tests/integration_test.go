// Package tests holds end to end tests that drive a real browser. They are
// skipped when no Chrome/Chromium executable is installed.
package tests

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mccutchen/go-httpbin/httpbin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikita55612/BrowserBridge/browser"
	"github.com/nikita55612/BrowserBridge/chromium"
)

// testServer is a local httpbin instance pages can be pointed at, so the
// tests never need the network.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(httpbin.New().Handler())
	t.Cleanup(srv.Close)
	return srv
}

// launch starts a headless browser session or skips the test when no
// browser executable can be found.
func launch(t *testing.T) *browser.Session {
	t.Helper()

	cfg := browser.DefaultConfig()
	cfg.Headless = browser.HeadlessNew
	cfg.ExecutablePath = os.Getenv("BROWSER_BRIDGE_TEST_BROWSER")
	cfg.LaunchTimeout = 10 * time.Second

	s, err := chromium.Launch(context.Background(), cfg)
	if errors.Is(err, chromium.ErrNoExecutable) {
		t.Skip("no Chrome/Chromium executable installed")
	}
	require.NoError(t, err)
	t.Cleanup(s.Close)

	return s
}

func TestOpenAndContent(t *testing.T) {
	srv := testServer(t)
	s := launch(t)
	ctx := context.Background()

	p, err := s.Open(ctx, srv.URL+"/html")
	require.NoError(t, err)
	defer func() { _ = p.Close(ctx) }()

	content, err := p.Content(ctx)
	require.NoError(t, err)
	assert.Contains(t, content, "<body>")

	url, err := p.URL(ctx)
	require.NoError(t, err)
	assert.Contains(t, url, "/html")
}

func TestOpenWithCookies(t *testing.T) {
	srv := testServer(t)
	s := launch(t)
	ctx := context.Background()

	p, err := s.OpenWithCookies(ctx, srv.URL+"/cookies", []browser.CookieParam{
		{Name: "flavor", Value: "chocolate"},
	})
	require.NoError(t, err)
	defer func() { _ = p.Close(ctx) }()

	// The endpoint echoes the cookies it received as JSON.
	content, err := p.Content(ctx)
	require.NoError(t, err)
	assert.Contains(t, content, "flavor")
	assert.Contains(t, content, "chocolate")
}

func TestOpenWithUserAgent(t *testing.T) {
	srv := testServer(t)
	s := launch(t)
	ctx := context.Background()

	const ua = "browser-bridge-test/1.0"
	err := s.WithOpenParam(ctx, srv.URL+"/user-agent", &browser.PageParam{UserAgent: ua},
		func(ctx context.Context, p *browser.Page) error {
			content, err := p.Content(ctx)
			if err != nil {
				return err
			}
			assert.Contains(t, content, ua)
			return nil
		})
	require.NoError(t, err)
}

func TestWithOpen(t *testing.T) {
	srv := testServer(t)
	s := launch(t)
	ctx := context.Background()

	var content string
	err := s.WithOpen(ctx, srv.URL+"/html", func(ctx context.Context, p *browser.Page) error {
		var err error
		content, err = p.Content(ctx)
		return err
	})
	require.NoError(t, err)
	assert.NotEmpty(t, content)
	assert.Empty(t, s.Pages())
}

func TestVersionAndUserAgent(t *testing.T) {
	s := launch(t)
	ctx := context.Background()

	version, err := s.Version(ctx)
	require.NoError(t, err)
	assert.True(t, strings.Contains(version, "Chrome") || strings.Contains(version, "Chromium"),
		"got %q", version)

	ua, err := s.UserAgent(ctx)
	require.NoError(t, err)
	assert.Contains(t, ua, "Mozilla")
}

func TestScreenshot(t *testing.T) {
	srv := testServer(t)
	s := launch(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "shot.png")
	err := s.WithOpen(ctx, srv.URL+"/html", func(ctx context.Context, p *browser.Page) error {
		return p.Screenshot(ctx, path)
	})
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(b) > 8 && string(b[1:4]) == "PNG", "not a PNG, %d bytes", len(b))
}

func TestClearCookies(t *testing.T) {
	srv := testServer(t)
	s := launch(t)
	ctx := context.Background()

	_, err := s.OpenWithCookies(ctx, srv.URL+"/cookies", []browser.CookieParam{
		{Name: "flavor", Value: "chocolate"},
	})
	require.NoError(t, err)

	require.NoError(t, s.ClearCookies(ctx))

	err = s.WithOpen(ctx, srv.URL+"/cookies", func(ctx context.Context, p *browser.Page) error {
		content, err := p.Content(ctx)
		if err != nil {
			return err
		}
		assert.NotContains(t, content, "chocolate")
		return nil
	})
	require.NoError(t, err)
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	s := launch(t)

	require.True(t, s.IsConnected())
	s.Close()
	s.Close()
	assert.False(t, s.IsConnected())

	_, err := s.Open(context.Background(), "about:blank")
	require.ErrorIs(t, err, browser.ErrSessionClosed)
}
