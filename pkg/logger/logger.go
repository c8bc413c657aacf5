package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/kazem-mohamed/socialhub-app/pkg/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger *log.Logger

// Init initializes the logger from config. verbose forces debug level.
func Init(verbose bool) {
	level, err := log.ParseLevel(config.GetString("log.level"))
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}

	logger = New(fileWriter(config.GetString("log.file")), level)
}

// New builds a standalone logger writing to w
func New(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "socialhub",
	})
	l.SetLevel(level)
	return l
}

// SetOutput replaces the package logger, mostly for tests
func SetOutput(w io.Writer, level log.Level) {
	logger = New(w, level)
}

func fileWriter(path string) io.Writer {
	if path == "" {
		return os.Stderr
	}
	// Fall back to stderr when the log file cannot be opened at all
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return os.Stderr
	}
	f.Close()

	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    config.GetInt("log.max_size_mb"),
		MaxBackups: config.GetInt("log.max_backups"),
		Compress:   true,
	}
}

// Debug logs a debug message
func Debug(msg string, args ...interface{}) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning message
func Warn(msg string, args ...interface{}) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}

// Fatal logs a fatal message and exits
func Fatal(msg string, args ...interface{}) {
	if logger != nil {
		logger.Fatal(msg, args...)
	} else {
		os.Exit(1)
	}
}

// GetLogger returns the logger instance
func GetLogger() *log.Logger {
	return logger
}
