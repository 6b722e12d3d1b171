// Package extension carries the companion browser extension that gives a
// running session capabilities CDP alone does not provide: switching the
// proxy at runtime and wiping browsing data. The extension is embedded in
// the binary and unpacked into the session's profile directory at launch.
package extension

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

//go:embed manifest.json background.js
var assets embed.FS

// CommandHost is the reserved host the extension watches. Requests to it
// are cancelled inside the browser before any network activity happens.
const CommandHost = "command.browser-bridge.internal"

const dirName = "bridge-extension"

// Install unpacks the extension into baseDir and returns the unpacked
// extension's directory, suitable for Chrome's --load-extension flag.
func Install(baseDir string) (string, error) {
	dir := filepath.Join(baseDir, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating extension directory %q: %w", dir, err)
	}

	entries, err := assets.ReadDir(".")
	if err != nil {
		return "", fmt.Errorf("reading embedded extension assets: %w", err)
	}
	for _, e := range entries {
		buf, err := assets.ReadFile(e.Name())
		if err != nil {
			return "", fmt.Errorf("reading embedded asset %q: %w", e.Name(), err)
		}
		path := filepath.Join(dir, e.Name())
		if err := os.WriteFile(path, buf, 0o644); err != nil {
			return "", fmt.Errorf("writing extension file %q: %w", path, err)
		}
	}

	return dir, nil
}

// SetProxyURL returns the command URL that switches the browser to the
// given proxy spec ([scheme://][user:pass@]host:port).
func SetProxyURL(spec string) string {
	return commandURL("set_proxy", spec)
}

// ResetProxyURL returns the command URL that reverts the browser to direct
// connections.
func ResetProxyURL() string {
	return commandURL("reset_proxy", "")
}

// ClearDataURL returns the command URL that wipes cookies, cache and
// storage.
func ClearDataURL() string {
	return commandURL("clear_data", "")
}

func commandURL(command, argument string) string {
	s := "http://" + CommandHost + "/" + command
	if argument != "" {
		// The argument must stay a single path segment: a scheme-qualified
		// proxy spec like socks5://host:1080 would otherwise be split on its
		// slashes by the extension. It decodes the segment on arrival.
		s += "/" + url.PathEscape(argument)
	}
	return s
}
