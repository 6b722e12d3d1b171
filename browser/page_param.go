package browser

import (
	"time"

	"github.com/chromedp/cdproto/network"
)

// CookieParam is one cookie to inject into a page before navigation. Name
// and Value are required; when URL, Domain and Path are all empty the
// cookie is scoped to the URL the page is opened with.
type CookieParam struct {
	Name     string
	Value    string
	URL      string
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
}

// PageParam bundles the optional knobs of a single page open call. The
// zero value applies nothing.
type PageParam struct {
	// Proxy switches the session-wide proxy before the page opens.
	Proxy string
	// UserAgent overrides the page's user agent.
	UserAgent string
	// Cookies are injected, in order, before navigation.
	Cookies []CookieParam
	// Duration keeps the page open at least this long after the load
	// settled, e.g. to let proxy-dependent content arrive.
	Duration time.Duration
}

// cdpCookies converts the cookies to their CDP form, defaulting the scope
// to pageURL.
func cdpCookies(cookies []CookieParam, pageURL string) []*network.CookieParam {
	out := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		cp := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			URL:      c.URL,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		if cp.URL == "" && cp.Domain == "" {
			cp.URL = pageURL
		}
		out = append(out, cp)
	}
	return out
}
