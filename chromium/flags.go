package chromium

import (
	"strings"

	"github.com/nikita55612/BrowserBridge/browser"
)

// buildFlags assembles the browser's command line: the built-in defaults
// first, then the launch-specific flags, then the user's args. A later flag
// with the same name replaces an earlier one.
func buildFlags(cfg *browser.SessionConfig, dataDir, extensionDir string) []string {
	set := newFlagSet()

	for _, f := range browser.DefaultArgs() {
		set.add(f)
	}

	switch cfg.Headless {
	case browser.HeadlessOld:
		set.add("--headless")
	case browser.HeadlessNew:
		set.add("--headless=new")
	}
	if cfg.Headless != browser.HeadlessOff {
		set.add("--hide-scrollbars")
		set.add("--mute-audio")
	}

	if cfg.Incognito {
		set.add("--incognito")
	}

	exts := append([]string{extensionDir}, cfg.Extensions...)
	set.add("--load-extension=" + strings.Join(exts, ","))

	set.add("--user-data-dir=" + dataDir)
	// Port 0 makes the browser pick a free port and write it to the
	// DevToolsActivePort file in the data directory.
	set.add("--remote-debugging-port=0")

	for _, f := range cfg.Args {
		if !strings.HasPrefix(f, "--") {
			f = "--" + f
		}
		set.add(f)
	}

	return set.flags()
}

// flagSet keeps launch flags unique by name while preserving their order.
type flagSet struct {
	order []string
	byKey map[string]string
}

func newFlagSet() *flagSet {
	return &flagSet{byKey: make(map[string]string)}
}

func (s *flagSet) add(flag string) {
	key := flag
	if i := strings.IndexByte(flag, '='); i != -1 {
		key = flag[:i]
	}
	if _, ok := s.byKey[key]; !ok {
		s.order = append(s.order, key)
	}
	s.byKey[key] = flag
}

func (s *flagSet) flags() []string {
	out := make([]string, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.byKey[key])
	}
	return out
}
