package logger

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

func init() {
	zlog = zerolog.New(os.Stdout).With().Timestamp().Str("service", serviceName).Logger()
}

// Info logs a printf-style message at info level
func Info(format string, args ...any) {
	zlog.Info().Msg(fmt.Sprintf(format, args...))
}

// Warn logs a printf-style message at warn level
func Warn(format string, args ...any) {
	zlog.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs a printf-style message at error level
func Error(format string, args ...any) {
	zlog.Error().Msg(fmt.Sprintf(format, args...))
}

// SetLogger replaces the global logger (tests use zerolog.Nop())
func SetLogger(l zerolog.Logger) {
	zlog = l
}
