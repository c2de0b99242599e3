// Package logx is the category-tagged leveled logger used by the daemon and
// the CLI. Core packages never log.
package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

// Level orders messages by severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel accepts debug, info, warn and error. The empty string is info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("logx: unknown level %q", s)
	}
}

// Options configures the process logger.
type Options struct {
	// File is the log file path. Empty means stderr.
	File       string
	MaxSizeMB  int
	MaxAgeDays int
	Level      Level
	// Color wraps the level tag in ANSI colors.
	Color bool
}

var (
	mu     sync.RWMutex
	logger = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	level  = LevelInfo
	color  = true
)

// Setup replaces the process logger. The returned closer releases the log
// file, if any.
func Setup(opts Options) io.Closer {
	var w io.Writer = os.Stderr
	var c io.Closer = nopCloser{}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename: opts.File,
			MaxSize:  opts.MaxSizeMB, // megabytes
			MaxAge:   opts.MaxAgeDays,
		}
		w, c = lj, lj
	}
	SetOutput(w, opts.Level, opts.Color)
	return c
}

// SetOutput points the logger at w.
func SetOutput(w io.Writer, l Level, colored bool) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	level = l
	color = colored
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func emit(l Level, tag, clr, category string, content []interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if l < level {
		return
	}
	message := fmt.Sprint(content...)
	if color {
		logger.Printf("%s[%s][%s]%s: %s", clr, tag, category, ColorReset, message)
		return
	}
	logger.Printf("[%s][%s]: %s", tag, category, message)
}

func Info(category string, content ...interface{}) {
	emit(LevelInfo, "INFO", ColorGreen, category, content)
}

func Error(category string, content ...interface{}) {
	emit(LevelError, "ERROR", ColorRed, category, content)
}

func Warn(category string, content ...interface{}) {
	emit(LevelWarn, "WARN", ColorYellow, category, content)
}

func Debug(category string, content ...interface{}) {
	emit(LevelDebug, "DEBUG", ColorBlue, category, content)
}

// Errorf logs an error message and returns a formatted error
func Errorf(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	Error("ERROR", err.Error())
	return err
}
