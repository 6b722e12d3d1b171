package chromium

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikita55612/BrowserBridge/browser"
)

func findFlag(t *testing.T, flags []string, name string) (string, bool) {
	t.Helper()
	for _, f := range flags {
		if f == name || strings.HasPrefix(f, name+"=") {
			return f, true
		}
	}
	return "", false
}

func TestBuildFlagsDefaults(t *testing.T) {
	t.Parallel()

	cfg := browser.DefaultConfig()
	flags := buildFlags(cfg, "/tmp/profile", "/tmp/profile/ext")

	f, ok := findFlag(t, flags, "--user-data-dir")
	require.True(t, ok)
	assert.Equal(t, "--user-data-dir=/tmp/profile", f)

	f, ok = findFlag(t, flags, "--remote-debugging-port")
	require.True(t, ok)
	assert.Equal(t, "--remote-debugging-port=0", f)

	f, ok = findFlag(t, flags, "--load-extension")
	require.True(t, ok)
	assert.Equal(t, "--load-extension=/tmp/profile/ext", f)

	_, ok = findFlag(t, flags, "--headless")
	assert.False(t, ok)
	_, ok = findFlag(t, flags, "--incognito")
	assert.False(t, ok)

	_, ok = findFlag(t, flags, "--no-first-run")
	assert.True(t, ok)
}

func TestBuildFlagsHeadless(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mode browser.HeadlessMode
		want string
	}{
		{name: "old", mode: browser.HeadlessOld, want: "--headless"},
		{name: "new", mode: browser.HeadlessNew, want: "--headless=new"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := browser.DefaultConfig()
			cfg.Headless = tt.mode
			flags := buildFlags(cfg, "/tmp/profile", "/tmp/profile/ext")

			f, ok := findFlag(t, flags, "--headless")
			require.True(t, ok)
			assert.Equal(t, tt.want, f)

			_, ok = findFlag(t, flags, "--mute-audio")
			assert.True(t, ok)
		})
	}
}

func TestBuildFlagsUserArgsOverride(t *testing.T) {
	t.Parallel()

	cfg := browser.DefaultConfig()
	cfg.Args = []string{"--lang=de_DE", "window-size=1280,720"}
	flags := buildFlags(cfg, "/tmp/profile", "/tmp/profile/ext")

	f, ok := findFlag(t, flags, "--lang")
	require.True(t, ok)
	assert.Equal(t, "--lang=de_DE", f)

	// Bare args get the -- prefix.
	f, ok = findFlag(t, flags, "--window-size")
	require.True(t, ok)
	assert.Equal(t, "--window-size=1280,720", f)

	// No duplicates after an override.
	var langs int
	for _, fl := range flags {
		if strings.HasPrefix(fl, "--lang") {
			langs++
		}
	}
	assert.Equal(t, 1, langs)
}

func TestBuildFlagsExtraExtensions(t *testing.T) {
	t.Parallel()

	cfg := browser.DefaultConfig()
	cfg.Extensions = []string{"/opt/ext-a", "/opt/ext-b"}
	cfg.Incognito = true
	flags := buildFlags(cfg, "/tmp/profile", "/tmp/profile/ext")

	f, ok := findFlag(t, flags, "--load-extension")
	require.True(t, ok)
	assert.Equal(t, "--load-extension=/tmp/profile/ext,/opt/ext-a,/opt/ext-b", f)

	_, ok = findFlag(t, flags, "--incognito")
	assert.True(t, ok)
}
