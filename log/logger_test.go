package log

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCapture() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	ll := logrus.New()
	ll.SetOutput(&buf)
	ll.SetLevel(logrus.DebugLevel)
	return New(ll, false, nil), &buf
}

func TestLoggerCategory(t *testing.T) {
	t.Parallel()

	l, buf := newCapture()
	l.Debugf("Session:Close", "pid:%d", 42)

	out := buf.String()
	assert.Contains(t, out, "Session:Close")
	assert.Contains(t, out, "pid:42")
	assert.Contains(t, out, "elapsed")
}

func TestLoggerCategoryFilter(t *testing.T) {
	t.Parallel()

	l, buf := newCapture()
	require.NoError(t, l.SetCategoryFilter("^Page:"))

	l.Debugf("Session:Close", "dropped")
	l.Debugf("Page:navigate", "kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
}

func TestLoggerDebugOverride(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ll := logrus.New()
	ll.SetOutput(&buf)
	ll.SetLevel(logrus.InfoLevel)

	l := New(ll, true, nil)
	l.Debugf("cdp:Execute", "forced through")
	assert.Contains(t, buf.String(), "forced through")
}

func TestLoggerLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ll := logrus.New()
	ll.SetOutput(&buf)
	ll.SetLevel(logrus.InfoLevel)

	l := New(ll, false, nil)
	l.Debugf("cdp:Execute", "suppressed")
	assert.Empty(t, buf.String())
	assert.False(t, l.DebugMode())
}

func TestSetLevel(t *testing.T) {
	t.Parallel()

	l := NewNullLogger()
	require.NoError(t, l.SetLevel("trace"))
	assert.True(t, l.DebugMode())
	require.Error(t, l.SetLevel("nope"))
}

func TestNewWithFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ll := logrus.New()
	ll.SetOutput(&buf)
	ll.SetLevel(logrus.DebugLevel)

	l := New(ll, false, regexp.MustCompile("^chromium"))
	l.Debugf("chromium:Launch", "kept")
	l.Debugf("Session:Close", "dropped")

	assert.Contains(t, buf.String(), "kept")
	assert.NotContains(t, buf.String(), "dropped")
}
