package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// IPInfo is the outbound IP as seen by the IP check service, i.e. through
// whatever proxy the session currently runs.
type IPInfo struct {
	IP      string `json:"ip"`
	Country string `json:"country"`
	CC      string `json:"cc"`
}

// parseIPInfo decodes the IP check service's JSON body. The body arrives as
// the page's rendered text, so it may be padded with whitespace.
func parseIPInfo(body string) (*IPInfo, error) {
	body = strings.TrimSpace(body)
	var info IPInfo
	if err := json.Unmarshal([]byte(body), &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseIP, err)
	}
	if info.IP == "" {
		return nil, fmt.Errorf("%w: no ip field in %q", ErrParseIP, body)
	}
	return &info, nil
}

// MyIP reports the session's effective outbound IP by loading the
// configured IP check service in a throwaway page and decoding its
// response. Combined with SetProxy it verifies the proxy actually took.
func (s *Session) MyIP(ctx context.Context) (*IPInfo, error) {
	var info *IPInfo
	err := s.WithOpen(ctx, s.ipCheckURL, func(ctx context.Context, p *Page) error {
		body, err := p.InnerText(ctx, "body")
		if err != nil {
			return fmt.Errorf("reading IP check response: %w", err)
		}
		info, err = parseIPInfo(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}
