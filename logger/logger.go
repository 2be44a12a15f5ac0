// Package logger configures the daemon's zerolog output.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultLogFile is where Init writes when no destination is given.
const DefaultLogFile = "insight.log"

// Init opens the default file logger. The level comes from LOG_LEVEL.
func Init() (zerolog.Logger, error) {
	return InitWithOptions(DefaultLogFile, false)
}

// InitWithOptions builds the root logger. With a file path, output is JSON
// appended to that file; with pretty set, output is a human-readable console
// stream on stdout; otherwise JSON goes to stdout. The level comes from the
// LOG_LEVEL environment variable (trace, debug, info, warn, error).
func InitWithOptions(logFile string, pretty bool) (zerolog.Logger, error) {
	var out io.Writer = os.Stdout
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //#nosec 302 -- operator-chosen log path
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		out = f
	case pretty:
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	level := levelFromEnv()
	log := zerolog.New(out).Level(level).With().Timestamp().Logger()

	dest := "stdout"
	if logFile != "" {
		dest = logFile
	}
	log.Info().Str("destination", dest).Str("level", level.String()).Msg("Logger initialized")

	return log, nil
}

func levelFromEnv() zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
