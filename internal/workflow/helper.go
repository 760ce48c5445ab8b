package workflow

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// SetupLogger configures the application-wide logger.
// It uses "tint" for colorized, structured logging that is easy to read in terminals.
func SetupLogger(level string, component string) *slog.Logger {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      ParseLogLevel(level),
		TimeFormat: time.TimeOnly,
	})

	return slog.New(handler).With("component", component)
}

// ParseLogLevel maps the --log-level values to slog levels. Unknown values mean info.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FormatClock renders the minute and second of t in UTC as "mm:ss".
func FormatClock(t time.Time) string {
	return t.UTC().Format("04:05")
}
