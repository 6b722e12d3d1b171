package chromium

import (
	"errors"
	"os"
	"os/exec"
)

// Well known browser install locations and command names, probed in order.
var executableCandidates = []string{
	// Linux
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/snap/bin/chromium",
	// macOS
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	// PATH lookups
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
}

// ErrNoExecutable is returned when no browser binary could be located.
var ErrNoExecutable = errors.New("no Chrome/Chromium executable found, set ExecutablePath")

func findExecutable() (string, error) {
	for _, c := range executableCandidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
		if path, err := exec.LookPath(c); err == nil {
			return path, nil
		}
	}
	return "", ErrNoExecutable
}
