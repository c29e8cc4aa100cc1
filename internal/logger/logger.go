package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the logging surface every service in the module receives.
type Logger interface {
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
}

// ConsoleLogger implements Logger using charmbracelet/log.
type ConsoleLogger struct {
	logger *log.Logger
}

// ConsoleParams contains configuration for creating a ConsoleLogger.
type ConsoleParams struct {
	Debug  bool
	Output io.Writer
	Prefix string
}

// NewConsole creates a console logger. Output defaults to stderr.
func NewConsole(params ConsoleParams) *ConsoleLogger {
	level := log.InfoLevel
	if params.Debug {
		level = log.DebugLevel
	}
	out := params.Output
	if out == nil {
		out = os.Stderr
	}
	return &ConsoleLogger{
		logger: log.NewWithOptions(out, log.Options{
			ReportTimestamp: true,
			Level:           level,
			Prefix:          params.Prefix,
		}),
	}
}

func (c *ConsoleLogger) Debug(message string, keyvals ...any) {
	c.logger.Debug(message, keyvals...)
}

func (c *ConsoleLogger) Info(message string, keyvals ...any) {
	c.logger.Info(message, keyvals...)
}

func (c *ConsoleLogger) Warn(message string, keyvals ...any) {
	c.logger.Warn(message, keyvals...)
}

func (c *ConsoleLogger) Error(message string, keyvals ...any) {
	c.logger.Error(message, keyvals...)
}

// With returns a child logger that always carries keyvals.
func (c *ConsoleLogger) With(keyvals ...any) *ConsoleLogger {
	return &ConsoleLogger{logger: c.logger.With(keyvals...)}
}

type nop struct{}

func (nop) Debug(string, ...any) {}
func (nop) Info(string, ...any)  {}
func (nop) Warn(string, ...any)  {}
func (nop) Error(string, ...any) {}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nop{}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return nop{}
	}
	return l
}
