// Package log configures the logrus logger shared by hwgpg.
package log

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// FormatText is the human-readable key=value format.
	FormatText = "text"
	// FormatJSON emits one JSON object per line.
	FormatJSON = "json"
)

// Configure builds a logger writing to out with the given format and level.
// An empty format selects text, an empty level selects warning.
func Configure(out io.Writer, format, level string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	switch strings.ToLower(format) {
	case "", FormatText:
		logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp:       true,
			DisableLevelTruncation: true,
		})
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	if level == "" {
		level = logrus.WarnLevel.String()
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(lvl)

	return logger, nil
}

// LevelForVerbosity raises base by the number of -v flags: one selects info,
// two or more select debug. A quieter explicit level never overrides -v.
func LevelForVerbosity(base string, verbosity int) string {
	var wanted logrus.Level
	switch {
	case verbosity <= 0:
		return base
	case verbosity == 1:
		wanted = logrus.InfoLevel
	default:
		wanted = logrus.DebugLevel
	}
	if current, err := logrus.ParseLevel(base); err == nil && current > wanted {
		return base
	}
	return wanted.String()
}

// Discard returns a logger that drops everything. Intended for tests.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
