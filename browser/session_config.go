package browser

import (
	"time"

	"github.com/nikita55612/BrowserBridge/log"
)

// HeadlessMode selects how the browser window is run.
type HeadlessMode string

// Valid headless modes.
const (
	// HeadlessOff runs the browser with a visible UI.
	HeadlessOff HeadlessMode = "false"
	// HeadlessOld runs the old fully headless mode.
	HeadlessOld HeadlessMode = "true"
	// HeadlessNew runs Chrome's new headless mode.
	HeadlessNew HeadlessMode = "new"
)

// Timings groups the settle and timeout durations a session applies around
// browser operations. Chrome acknowledges commands before their effects are
// observable, so the session waits these out at the relevant points.
type Timings struct {
	// LaunchSettle is waited after the browser process comes up.
	LaunchSettle time.Duration
	// SetProxySettle is waited after a proxy switch command.
	SetProxySettle time.Duration
	// PageSettle is waited after a page load.
	PageSettle time.Duration
	// WaitPageTimeout bounds the wait for a page's load event.
	WaitPageTimeout time.Duration
}

// DefaultTimings returns the timings a default session runs with.
func DefaultTimings() Timings {
	return Timings{
		LaunchSettle:    200 * time.Millisecond,
		SetProxySettle:  300 * time.Millisecond,
		PageSettle:      250 * time.Millisecond,
		WaitPageTimeout: 500 * time.Millisecond,
	}
}

// DefaultIPCheckURL is the service MyIP queries unless the session config
// overrides it. The response is JSON: {"ip": ..., "country": ..., "cc": ...}.
const DefaultIPCheckURL = "https://api.myip.com/"

// DefaultLaunchTimeout bounds browser startup: process spawn, DevTools URL
// discovery and the CDP connect.
const DefaultLaunchTimeout = 1500 * time.Millisecond

// defaultArgs are always passed to the browser, merged with (and
// deduplicated against) SessionConfig.Args.
var defaultArgs = []string{
	"--disable-background-networking",
	"--enable-features=NetworkService,NetworkServiceInProcess",
	"--disable-client-side-phishing-detection",
	"--disable-default-apps",
	"--disable-dev-shm-usage",
	"--disable-breakpad",
	"--disable-features=TranslateUI",
	"--disable-prompt-on-repost",
	"--no-first-run",
	"--disable-sync",
	"--force-color-profile=srgb",
	"--enable-blink-features=IdleDetection",
	"--lang=en_US",
	"--no-sandbox",
	"--disable-gpu",
	"--disable-smooth-scrolling",
}

// DefaultArgs returns a copy of the flags every launch starts from.
func DefaultArgs() []string {
	return append([]string(nil), defaultArgs...)
}

// SessionConfig configures a browser session launch. The zero value is not
// usable; start from DefaultConfig.
type SessionConfig struct {
	// ExecutablePath is the Chrome/Chromium binary to run. Empty means
	// look it up in well known locations and PATH.
	ExecutablePath string

	// Headless selects the headless mode. Note that the companion
	// extension (proxy switching, data clearing) does not load in the old
	// headless mode.
	Headless HeadlessMode

	// Args are additional browser launch arguments ("--flag" or
	// "--flag=value" form), merged with the built-in defaults.
	Args []string

	// Extensions are extra unpacked extension directories to load next to
	// the companion extension.
	Extensions []string

	// Incognito starts the browser in incognito mode.
	Incognito bool

	// UserDataDir is the profile directory. Empty means a temporary
	// directory that is removed when the session closes.
	UserDataDir string

	// LaunchTimeout bounds browser startup.
	LaunchTimeout time.Duration

	// Timings are the session's settle durations.
	Timings Timings

	// IPCheckURL overrides the service MyIP queries.
	IPCheckURL string

	// Logger receives the session's logs. Nil means logging configured
	// from the environment (BROWSER_BRIDGE_LOG).
	Logger *log.Logger
}

// DefaultConfig returns the stock session configuration: visible browser
// window, default Chrome args, temporary profile.
func DefaultConfig() *SessionConfig {
	return &SessionConfig{
		Headless:      HeadlessOff,
		LaunchTimeout: DefaultLaunchTimeout,
		Timings:       DefaultTimings(),
		IPCheckURL:    DefaultIPCheckURL,
	}
}
