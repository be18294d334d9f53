// Package logger configures the zerolog logger used for stage tracing.
package logger

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLevel keeps the default output limited to the responder's notices.
const DefaultLevel = zerolog.WarnLevel

// ParseLevel maps a level name to a zerolog level. An empty or unknown name
// yields DefaultLevel and ok == false.
func ParseLevel(name string) (level zerolog.Level, ok bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultLevel, false
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return DefaultLevel, false
	}
	return level, true
}

// New builds a console logger writing to w with UTC timestamps.
func New(level string, w io.Writer) zerolog.Logger {
	lvl, _ := ParseLevel(level)

	consoleWriter := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: "2006-01-02 15:04:05",
		FormatTimestamp: func(i interface{}) string {
			if s, ok := i.(string); ok {
				if t, err := time.Parse(time.RFC3339, s); err == nil {
					return t.UTC().Format("2006-01-02 15:04:05")
				}
				return s
			}
			return ""
		},
	}

	return zerolog.New(consoleWriter).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// WithComponent tags every event of l with the component name.
func WithComponent(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
