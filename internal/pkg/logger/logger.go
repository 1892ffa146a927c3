package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Level = zerolog.Level

const (
	DEBUG = zerolog.DebugLevel
	INFO  = zerolog.InfoLevel
	WARN  = zerolog.WarnLevel
	ERROR = zerolog.ErrorLevel
	FATAL = zerolog.FatalLevel
)

var defaultLogger = New(os.Stdout, INFO, false)

// New builds a zerolog logger. Console output is human readable; otherwise JSON lines.
func New(w io.Writer, level Level, console bool) zerolog.Logger {
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Init configures the global logger from LOG_LEVEL and APP_ENV.
func Init(level, env string) {
	defaultLogger = New(os.Stdout, ParseLevel(level), env != "production")
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		return INFO
	}
	return l
}

// L returns the global logger for structured events.
func L() *zerolog.Logger {
	return &defaultLogger
}

// SetOutput redirects the global logger, mainly for tests.
func SetOutput(w io.Writer) {
	defaultLogger = defaultLogger.Output(w)
}

// SetGlobalLevel sets the level for the global logger
func SetGlobalLevel(level Level) {
	defaultLogger = defaultLogger.Level(level)
}

// Package-level functions for easy access
func Debug(format string, v ...interface{}) { defaultLogger.Debug().Msgf(format, v...) }
func Info(format string, v ...interface{})  { defaultLogger.Info().Msgf(format, v...) }
func Warn(format string, v ...interface{})  { defaultLogger.Warn().Msgf(format, v...) }
func Error(format string, v ...interface{}) { defaultLogger.Error().Msgf(format, v...) }
func Fatal(format string, v ...interface{}) { defaultLogger.Fatal().Msgf(format, v...) }
