package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const TIME_FORMAT = "2006-01-02T15:04:05.000Z07:00"

var once sync.Once
var Log zerolog.Logger

func configureLogger(out io.Writer) {
	zerolog.TimeFieldFormat = TIME_FORMAT

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: TIME_FORMAT,
	}

	Log = zerolog.New(output).With().Timestamp().Logger()
}

// GetLoggerConfigured configures the shared logger on first use and sets the global level.
// The level is applied on every call, so tests can silence logging regardless of init order.
func GetLoggerConfigured(level zerolog.Level) *zerolog.Logger {
	once.Do(func() {
		configureLogger(os.Stdout)
	})
	zerolog.SetGlobalLevel(level)
	return &Log
}

func GetLogger() *zerolog.Logger {
	once.Do(func() {
		configureLogger(os.Stdout)
	})
	return &Log
}

// ParseLevel maps a config/flag string to a zerolog level. Unknown strings give InfoLevel.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
