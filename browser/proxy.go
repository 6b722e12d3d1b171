package browser

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ProxySpec is a parsed proxy address.
type ProxySpec struct {
	Scheme   string // http, https, socks4 or socks5; defaults to http
	Host     string
	Port     int
	Username string
	Password string
}

// String renders the spec back to [scheme://][user:pass@]host:port form.
// The scheme is omitted when it is the http default.
func (p ProxySpec) String() string {
	var b strings.Builder
	if p.Scheme != "" && p.Scheme != "http" {
		b.WriteString(p.Scheme)
		b.WriteString("://")
	}
	if p.Username != "" {
		b.WriteString(p.Username)
		if p.Password != "" {
			b.WriteByte(':')
			b.WriteString(p.Password)
		}
		b.WriteByte('@')
	}
	b.WriteString(net.JoinHostPort(p.Host, strconv.Itoa(p.Port)))
	return b.String()
}

// ParseProxy parses a proxy spec of the form
// [scheme://][user:pass@]host:port. All errors wrap ErrInvalidProxy.
func ParseProxy(spec string) (ProxySpec, error) {
	p := ProxySpec{Scheme: "http"}
	rest := spec

	if i := strings.Index(rest, "://"); i != -1 {
		p.Scheme = rest[:i]
		rest = rest[i+3:]
		switch p.Scheme {
		case "http", "https", "socks4", "socks5":
		default:
			return ProxySpec{}, fmt.Errorf("%w %q: unsupported scheme %q", ErrInvalidProxy, spec, p.Scheme)
		}
	}

	if i := strings.LastIndexByte(rest, '@'); i != -1 {
		userInfo := rest[:i]
		rest = rest[i+1:]
		if j := strings.IndexByte(userInfo, ':'); j != -1 {
			p.Username, p.Password = userInfo[:j], userInfo[j+1:]
		} else {
			p.Username = userInfo
		}
		if p.Username == "" {
			return ProxySpec{}, fmt.Errorf("%w %q: empty username", ErrInvalidProxy, spec)
		}
	}

	host, portStr, err := net.SplitHostPort(rest)
	if err != nil {
		return ProxySpec{}, fmt.Errorf("%w %q: %v", ErrInvalidProxy, spec, err)
	}
	if host == "" {
		return ProxySpec{}, fmt.Errorf("%w %q: empty host", ErrInvalidProxy, spec)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return ProxySpec{}, fmt.Errorf("%w %q: bad port %q", ErrInvalidProxy, spec, portStr)
	}
	p.Host, p.Port = host, port

	return p, nil
}
