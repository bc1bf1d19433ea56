// Package logging wraps zerolog for the launcher's diagnostic output.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with printf-style helpers.
type Logger struct {
	zlog   zerolog.Logger
	output io.Writer
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(os.Stderr)
)

// New creates a console logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{
		zlog:   zerolog.New(consoleWriter(w)).With().Timestamp().Logger(),
		output: w,
	}
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}
}

// Default returns the process wide logger.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process wide logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// Setup configures the default logger from the app settings. When logFile is
// set, records are duplicated to it in JSON form. The returned closer releases
// the file.
func Setup(level string, logFile string) (io.Closer, error) {
	SetLevel(level)

	if logFile == "" {
		SetDefault(New(os.Stderr))
		return io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	out := zerolog.MultiLevelWriter(consoleWriter(os.Stderr), f)
	SetDefault(&Logger{
		zlog:   zerolog.New(out).With().Timestamp().Logger(),
		output: out,
	})
	return f, nil
}

// SetLevel sets the global level from its name. Unknown names fall back to info.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// Output returns the current output writer.
func (l *Logger) Output() io.Writer {
	return l.output
}

// With creates a child logger context.
func (l *Logger) With() zerolog.Context {
	return l.zlog.With()
}

func (l *Logger) Info() *zerolog.Event { return l.zlog.Info() }
func (l *Logger) Warn() *zerolog.Event { return l.zlog.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zlog.Error() }
func (l *Logger) Debug() *zerolog.Event { return l.zlog.Debug() }

// Debugf logs a debug message. Only shown with --debug or log_level = "debug".
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.zlog.Debug().Msgf(format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.zlog.Info().Msgf(format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.zlog.Warn().Msgf(format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.zlog.Error().Msgf(format, args...)
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
