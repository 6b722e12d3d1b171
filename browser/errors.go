package browser

import "errors"

var (
	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("browser session is closed")

	// ErrPageClosed is returned by operations on a closed page.
	ErrPageClosed = errors.New("page is closed")

	// ErrLaunchTimeout is returned when the browser did not come up within
	// the configured launch timeout.
	ErrLaunchTimeout = errors.New("browser launch timed out")

	// ErrInvalidProxy is returned when a proxy spec cannot be parsed.
	ErrInvalidProxy = errors.New("invalid proxy spec")

	// ErrParseIP is returned when the IP check service response cannot be
	// decoded.
	ErrParseIP = errors.New("cannot parse IP check response")
)
