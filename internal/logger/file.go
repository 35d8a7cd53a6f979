package logger

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/annedfinds/storefront-notify/internal/config"
)

const (
	defaultLogPath    = "./logs/notify.log"
	defaultMaxSizeMB  = 50
	defaultMaxFiles   = 5
	defaultMaxAgeDays = 30
)

// FileConfig holds configuration for file-based log output with rotation.
type FileConfig struct {
	// Path is the file path to write logs to.
	Path string
	// MaxSizeMB is the maximum size in megabytes before rotation.
	MaxSizeMB int
	// MaxFiles is the number of rotated files to retain.
	MaxFiles int
	// MaxAgeDays removes rotated files older than this many days.
	MaxAgeDays int
}

// fileConfigFrom maps the logging section onto a FileConfig, filling in
// defaults for unset values.
func fileConfigFrom(cfg config.LoggingConfig) FileConfig {
	fc := FileConfig{
		Path:       cfg.FilePath,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxFiles:   cfg.MaxFiles,
		MaxAgeDays: cfg.MaxAgeDays,
	}
	if fc.Path == "" {
		fc.Path = defaultLogPath
	}
	if fc.MaxSizeMB <= 0 {
		fc.MaxSizeMB = defaultMaxSizeMB
	}
	if fc.MaxFiles <= 0 {
		fc.MaxFiles = defaultMaxFiles
	}
	if fc.MaxAgeDays <= 0 {
		fc.MaxAgeDays = defaultMaxAgeDays
	}
	return fc
}

// NewFileWriter returns an io.Writer that writes to a rotating log file.
// Rotated files are gzip-compressed and named with local time.
func NewFileWriter(cfg FileConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxFiles,
		MaxAge:     cfg.MaxAgeDays,
		LocalTime:  true,
		Compress:   true,
	}
}
