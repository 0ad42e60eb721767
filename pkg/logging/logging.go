// Package logging builds the converter's logrus logger from configuration.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Config configures logging.
type Config struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // text or json
	Output string `yaml:"output" mapstructure:"output"` // stderr, stdout or file

	// File output, rotated by lumberjack
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`

	// Writer overrides Output when set.
	Writer io.Writer `yaml:"-" mapstructure:"-"`
}

// DefaultConfig logs text at info level to stderr. Stdout is left to the
// sink.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "text",
		Output:     "stderr",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

// Logger is a configured logrus logger plus whatever its output needs closing.
type Logger struct {
	*logrus.Logger
	closer io.Closer
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// New builds a logger. An unparseable level falls back to info with a warning.
func New(cfg Config) (*Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
		defer logger.Warnf("Invalid log level '%s', using 'info' as default", cfg.Level)
	}
	logger.SetLevel(level)

	if err := setFormatter(logger, cfg.Format); err != nil {
		return nil, err
	}

	l := &Logger{Logger: logger}
	if cfg.Writer != nil {
		logger.SetOutput(cfg.Writer)
		return l, nil
	}
	if err := setOutput(l, cfg); err != nil {
		return nil, err
	}
	return l, nil
}

func setFormatter(logger *logrus.Logger, format string) error {
	switch strings.ToLower(format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: timestampFormat,
			FullTimestamp:   true,
		})
	default:
		return fmt.Errorf("unsupported log format: %s", format)
	}
	return nil
}

func setOutput(l *Logger, cfg Config) error {
	switch strings.ToLower(cfg.Output) {
	case "stderr", "":
		l.SetOutput(os.Stderr)
	case "stdout":
		l.SetOutput(os.Stdout)
	case "file":
		if cfg.FilePath == "" {
			return fmt.Errorf("file path is required when output is file")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		rotated := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		l.SetOutput(rotated)
		l.closer = rotated
	default:
		return fmt.Errorf("unsupported log output: %s", cfg.Output)
	}
	return nil
}
