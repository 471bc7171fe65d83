// Package logging writes structured JSON logs to size-rotated files,
// optionally teeing a human-readable copy to stderr.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where log files go and when they rotate.
type Config struct {
	// Dir is the directory log files are written to. Required; created
	// if missing.
	Dir string
	// FilePrefix names the log file (<prefix>.log). Defaults to
	// "shipkit".
	FilePrefix string
	// Level is the minimum level written. Defaults to slog.LevelInfo.
	Level slog.Level
	// MaxSizeMB rotates the file once it exceeds this size. Defaults
	// to 10.
	MaxSizeMB int
	// MaxBackups is how many rotated files to keep. Defaults to 5.
	MaxBackups int
	// MaxAgeDays deletes rotated files older than this. Defaults to 28.
	MaxAgeDays int
	// Console also writes a text handler to stderr.
	Console bool
}

func (c Config) withDefaults() Config {
	if c.FilePrefix == "" {
		c.FilePrefix = "shipkit"
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 5
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 28
	}
	return c
}

// Logger is a slog.Logger whose JSON output goes to a rotating file.
// Close it when done to flush and release the file.
type Logger struct {
	*slog.Logger
	file *lumberjack.Logger
	dir  string
}

// New creates the log directory if needed and builds the logger. The
// returned logger is passed explicitly to the components that need it;
// nothing here touches the process-wide default.
func New(cfg Config) (*Logger, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("logging: Dir is required")
	}
	cfg = cfg.withDefaults()

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, cfg.FilePrefix+".log"),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler = slog.NewJSONHandler(file, opts)
	if cfg.Console {
		handler = slog.NewMultiHandler(handler, slog.NewTextHandler(os.Stderr, opts))
	}

	return &Logger{Logger: slog.New(handler), file: file, dir: cfg.Dir}, nil
}

// Dir returns the directory log files are written to.
func (l *Logger) Dir() string {
	return l.dir
}

// Close releases the underlying log file.
func (l *Logger) Close() error {
	return l.file.Close()
}
