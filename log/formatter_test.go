package log

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleFormatter(t *testing.T) {
	t.Parallel()

	entry := &logrus.Entry{
		Time:    time.Date(2025, 3, 1, 12, 30, 45, 0, time.UTC),
		Level:   logrus.DebugLevel,
		Message: "navigating",
		Data: logrus.Fields{
			"category": "Page:navigate",
			"elapsed":  "12 ms",
		},
	}

	f := &ConsoleFormatter{NoColor: true}
	out, err := f.Format(entry)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "12:30:45.000")
	assert.Contains(t, s, "DEBUG")
	assert.Contains(t, s, "[Page:navigate]")
	assert.Contains(t, s, "navigating")
	assert.Contains(t, s, "(12 ms)")
}

func TestConsoleFormatterZeroElapsedOmitted(t *testing.T) {
	t.Parallel()

	entry := &logrus.Entry{
		Time:    time.Now(),
		Level:   logrus.InfoLevel,
		Message: "started",
		Data:    logrus.Fields{"category": "chromium:Launch", "elapsed": "0 ms"},
	}

	f := &ConsoleFormatter{NoColor: true}
	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "(0 ms)")
}
