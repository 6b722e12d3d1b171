// Package chromium launches a Chrome or Chromium browser process and hands
// it over as a browser.Session.
package chromium

import (
	"context"
	"fmt"
	"time"

	"github.com/nikita55612/BrowserBridge/browser"
	"github.com/nikita55612/BrowserBridge/cdp"
	"github.com/nikita55612/BrowserBridge/extension"
	"github.com/nikita55612/BrowserBridge/log"
	"github.com/nikita55612/BrowserBridge/storage"
)

// Launch starts a browser with the given configuration and connects to it
// over CDP. A nil cfg launches with the defaults. The returned session must
// be released with Close; cancelling ctx terminates the browser.
func Launch(ctx context.Context, cfg *browser.SessionConfig) (*browser.Session, error) {
	if cfg == nil {
		cfg = browser.DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewFromEnv()
		cfg.Logger = logger
	}

	path := cfg.ExecutablePath
	if path == "" {
		var err error
		if path, err = findExecutable(); err != nil {
			return nil, err
		}
	}

	timeout := cfg.LaunchTimeout
	if timeout <= 0 {
		timeout = browser.DefaultLaunchTimeout
	}

	ctx, cancel := context.WithCancel(ctx)
	ok := false
	defer func() {
		if !ok {
			cancel()
		}
	}()

	dataDir := &storage.Dir{}
	if err := dataDir.Make("", cfg.UserDataDir); err != nil {
		return nil, fmt.Errorf("preparing the user data directory: %w", err)
	}

	extDir, err := extension.Install(dataDir.Dir)
	if err != nil {
		cleanupDir(dataDir, logger)
		return nil, err
	}

	flags := buildFlags(cfg, dataDir.Dir, extDir)
	logger.Debugf("chromium:Launch", "path:%q flags:%v", path, flags)

	// The process runs on the session context; the launch timeout only
	// bounds how long we wait for it to come up.
	type result struct {
		process *browser.BrowserProcess
		err     error
	}
	resCh := make(chan result, 1)
	go func() {
		p, err := browser.NewBrowserProcess(ctx, path, flags, nil, dataDir, cancel, logger)
		resCh <- result{p, err}
	}()

	var process *browser.BrowserProcess
	select {
	case res := <-resCh:
		if res.err != nil {
			cleanupDir(dataDir, logger)
			return nil, res.err
		}
		process = res.process
	case <-time.After(timeout):
		cancel()
		cleanupDir(dataDir, logger)
		return nil, fmt.Errorf("%w after %s", browser.ErrLaunchTimeout, timeout)
	case <-ctx.Done():
		cleanupDir(dataDir, logger)
		return nil, ctx.Err()
	}

	client := cdp.NewClient(ctx, logger)
	if err := client.Connect(process.WsURL()); err != nil {
		process.Terminate()
		return nil, fmt.Errorf("connecting to the browser: %w", err)
	}

	sess, err := browser.NewSession(ctx, cancel, client, process, cfg)
	if err != nil {
		client.Disconnect()
		process.Terminate()
		return nil, err
	}

	ok = true
	return sess, nil
}

func cleanupDir(dataDir *storage.Dir, logger *log.Logger) {
	if err := dataDir.Cleanup(); err != nil {
		logger.Warnf("chromium:Launch", "cleaning up the user data directory: %v", err)
	}
}
