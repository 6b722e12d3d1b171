package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomUserAgent(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		ua := RandomUserAgent()
		assert.NotEmpty(t, ua)
		assert.True(t, strings.HasPrefix(ua, "Mozilla/5.0"), "got %q", ua)
	}
}
