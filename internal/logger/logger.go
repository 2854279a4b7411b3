package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with a fixed component field and loosely typed
// key/value pairs.
type Logger struct {
	base zerolog.Logger
}

// New creates a logger tagged with the component name. The level comes
// from OTC_LOG_LEVEL (debug/info/warn/error), defaulting to info.
func New(component string) *Logger {
	l := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("component", component).
		Logger().
		Level(levelFromEnv())
	zerolog.DurationFieldUnit = time.Millisecond
	return &Logger{base: l}
}

func levelFromEnv() zerolog.Level {
	switch strings.ToLower(os.Getenv("OTC_LOG_LEVEL")) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	l.base.Debug().Fields(fields(keyvals...)).Msg(msg)
}

func (l *Logger) Info(msg string, keyvals ...interface{}) {
	l.base.Info().Fields(fields(keyvals...)).Msg(msg)
}

func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	l.base.Warn().Fields(fields(keyvals...)).Msg(msg)
}

func (l *Logger) Error(msg string, keyvals ...interface{}) {
	l.base.Error().Fields(fields(keyvals...)).Msg(msg)
}

func fields(kv ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		m[k] = kv[i+1]
	}
	return m
}
