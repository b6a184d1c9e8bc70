package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFilePath is the default log file, relative to the working directory.
const LogFilePath = "logs/panels.log"

// DefaultTailSize is how many lines Lines keeps for the on-screen terminal.
const DefaultTailSize = 500

// Options selects level, file format and destination. An empty File disables the file sink.
type Options struct {
	Level    string
	Format   string // "json" or "console"
	File     string
	TailSize int
}

// Logger writes structured entries to a file through zap and keeps the most recent lines in
// memory so the terminal overlay can show them.
type Logger struct {
	z    *zap.Logger
	tail *tail
}

// New builds a logger. The logs directory is created if needed.
func New(opts Options) (*Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		l, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}
	size := opts.TailSize
	if size <= 0 {
		size = DefaultTailSize
	}
	t := &tail{max: size}

	tailEnc := zap.NewDevelopmentEncoderConfig()
	tailEnc.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	tailEnc.EncodeLevel = zapcore.CapitalLevelEncoder
	tailEnc.ConsoleSeparator = " "
	cores := []zapcore.Core{zapcore.NewCore(zapcore.NewConsoleEncoder(tailEnc), zapcore.AddSync(t), level)}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		fileEnc := zap.NewProductionEncoderConfig()
		fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
		var enc zapcore.Encoder
		if opts.Format == "console" {
			enc = zapcore.NewConsoleEncoder(fileEnc)
		} else {
			enc = zapcore.NewJSONEncoder(fileEnc)
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(f), level))
	}
	return &Logger{z: zap.New(zapcore.NewTee(cores...)), tail: t}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{z: zap.NewNop(), tail: &tail{max: DefaultTailSize}}
}

// Named returns a child logger tagged with component. It shares the parent's sinks.
func (l *Logger) Named(component string) *Logger {
	return &Logger{z: l.z.Named(component), tail: l.tail}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }

// Log records a plain line, e.g. something typed into the terminal.
func (l *Logger) Log(line string) {
	l.z.Info(line)
}

// Lines returns a copy of the most recent lines.
func (l *Logger) Lines() []string {
	return l.tail.snapshot()
}

// Zap exposes the underlying zap logger.
func (l *Logger) Zap() *zap.Logger { return l.z }

// Sync flushes the sinks.
func (l *Logger) Sync() error {
	return l.z.Sync()
}

// tail is an in-memory ring of formatted lines.
type tail struct {
	mu    sync.Mutex
	lines []string
	max   int
}

func (t *tail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		t.lines = append(t.lines, line)
	}
	if over := len(t.lines) - t.max; over > 0 {
		t.lines = append(t.lines[:0], t.lines[over:]...)
	}
	return len(p), nil
}

func (t *tail) snapshot() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}
