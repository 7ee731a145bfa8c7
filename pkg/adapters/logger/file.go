package logger

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/user/dpframe/pkg/ports"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig configures a rotated log file.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// FileLogger writes untranslated, timestamped lines to a rotated file.
type FileLogger struct {
	level     ports.LogLevel
	component string
	w         *syncWriter
	now       func() time.Time
}

type syncWriter struct {
	mu sync.Mutex
	w  io.WriteCloser
}

func (s *syncWriter) writeLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	io.WriteString(s.w, line)
}

// NewFile creates a logger backed by lumberjack rotation.
func NewFile(cfg FileConfig, level ports.LogLevel) *FileLogger {
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 30
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	return newFileLogger(lj, level)
}

func newFileLogger(w io.WriteCloser, level ports.LogLevel) *FileLogger {
	return &FileLogger{level: level, w: &syncWriter{w: w}, now: time.Now}
}

func (l *FileLogger) Debug(msg string, args ...interface{}) { l.log(ports.LevelDebug, msg, args...) }
func (l *FileLogger) Info(msg string, args ...interface{})  { l.log(ports.LevelInfo, msg, args...) }
func (l *FileLogger) Warn(msg string, args ...interface{})  { l.log(ports.LevelWarn, msg, args...) }
func (l *FileLogger) Error(msg string, args ...interface{}) { l.log(ports.LevelError, msg, args...) }

func (l *FileLogger) WithComponent(component string) ports.Logger {
	c := *l
	c.component = component
	return &c
}

// Close flushes and closes the underlying file.
func (l *FileLogger) Close() error {
	l.w.mu.Lock()
	defer l.w.mu.Unlock()
	return l.w.w.Close()
}

func (l *FileLogger) log(level ports.LogLevel, msg string, args ...interface{}) {
	if level < l.level || l.level == ports.LevelQuiet {
		return
	}
	text := fmt.Sprintf(msg, args...)
	if l.component != "" {
		text = "[" + l.component + "] " + text
	}
	l.w.writeLine(fmt.Sprintf("%s %-5s %s\n", l.now().Format(time.RFC3339), level, text))
}

// Tee fans every message out to all loggers.
type Tee []ports.Logger

func (t Tee) Debug(msg string, args ...interface{}) {
	for _, l := range t {
		l.Debug(msg, args...)
	}
}

func (t Tee) Info(msg string, args ...interface{}) {
	for _, l := range t {
		l.Info(msg, args...)
	}
}

func (t Tee) Warn(msg string, args ...interface{}) {
	for _, l := range t {
		l.Warn(msg, args...)
	}
}

func (t Tee) Error(msg string, args ...interface{}) {
	for _, l := range t {
		l.Error(msg, args...)
	}
}

func (t Tee) WithComponent(component string) ports.Logger {
	out := make(Tee, len(t))
	for i, l := range t {
		out[i] = l.WithComponent(component)
	}
	return out
}
