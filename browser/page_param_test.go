package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCDPCookies(t *testing.T) {
	t.Parallel()

	cookies := []CookieParam{
		{Name: "sid", Value: "abc"},
		{Name: "pref", Value: "1", Domain: "example.com", Path: "/"},
		{Name: "pinned", Value: "x", URL: "https://other.example/"},
	}

	out := cdpCookies(cookies, "https://example.com/page")
	require.Len(t, out, 3)

	// Unscoped cookies pick up the page URL.
	assert.Equal(t, "https://example.com/page", out[0].URL)
	assert.Empty(t, out[0].Domain)

	// Cookies that carry their own scope keep it.
	assert.Empty(t, out[1].URL)
	assert.Equal(t, "example.com", out[1].Domain)
	assert.Equal(t, "https://other.example/", out[2].URL)

	for i, c := range cookies {
		assert.Equal(t, c.Name, out[i].Name)
		assert.Equal(t, c.Value, out[i].Value)
	}
}

func TestCDPCookiesEmpty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, cdpCookies(nil, "https://example.com"))
}
