package log

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// ConsoleFormatter is a logrus formatter for humans: a short timestamp, a
// colored level, the category in magenta and the elapsed time since the
// previous line. Field order is stable so the output lines up.
type ConsoleFormatter struct {
	// NoColor disables colored output, e.g. when not writing to a TTY.
	NoColor bool
}

var levelColors = map[logrus.Level]*color.Color{
	logrus.TraceLevel: color.New(color.FgWhite),
	logrus.DebugLevel: color.New(color.FgCyan),
	logrus.InfoLevel:  color.New(color.FgGreen),
	logrus.WarnLevel:  color.New(color.FgYellow),
	logrus.ErrorLevel: color.New(color.FgRed),
	logrus.FatalLevel: color.New(color.FgRed, color.Bold),
	logrus.PanicLevel: color.New(color.FgRed, color.Bold),
}

var categoryColor = color.New(color.FgMagenta)

// Format renders a single log entry.
func (f *ConsoleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	lvl := strings.ToUpper(entry.Level.String())
	category, _ := entry.Data["category"].(string)
	elapsed, _ := entry.Data["elapsed"].(string)

	if f.NoColor {
		fmt.Fprintf(&b, "%s %-5s", entry.Time.Format("15:04:05.000"), lvl)
		if category != "" {
			fmt.Fprintf(&b, " [%s]", category)
		}
	} else {
		c, ok := levelColors[entry.Level]
		if !ok {
			c = color.New(color.FgWhite)
		}
		fmt.Fprintf(&b, "%s %s", entry.Time.Format("15:04:05.000"), c.Sprintf("%-5s", lvl))
		if category != "" {
			fmt.Fprintf(&b, " [%s]", categoryColor.Sprint(category))
		}
	}

	fmt.Fprintf(&b, " %s", entry.Message)
	if elapsed != "" && elapsed != "0 ms" {
		fmt.Fprintf(&b, " (%s)", elapsed)
	}
	b.WriteByte('\n')

	return b.Bytes(), nil
}
