// Package obs wires logging and metrics for the application.
package obs

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig controls logrus output and rotation.
type LogConfig struct {
	// Verbose raises the level to trace.
	Verbose bool

	// File is the rotating log file path; empty disables file output.
	File string

	// MaxSizeMB is the size at which the log file rotates.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept.
	MaxBackups int

	// MaxAgeDays is the retention window for rotated files.
	MaxAgeDays int

	// Compress gzips rotated files.
	Compress bool
}

// DefaultLogConfig returns rotation settings suitable for a long-running
// service writing under the config directory.
func DefaultLogConfig(file string) *LogConfig {
	return &LogConfig{
		File:       file,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
		Compress:   true,
	}
}

// SetupLogging configures the global logrus logger: level, formatter, and a
// rotating file sink alongside stderr.
func SetupLogging(cfg *LogConfig) {
	if cfg.Verbose {
		logrus.SetLevel(logrus.TraceLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if cfg.File == "" {
		logrus.SetOutput(os.Stderr)
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, rotator))
}
