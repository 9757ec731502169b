package config

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"furniture-extractor/internal/types"
)

// NewLogger builds the process logger. LOG_LEVEL overrides the configured level;
// verbose raises the level to debug when LOG_LEVEL is not set.
func NewLogger(config types.LogConfig, verbose bool, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	switch config.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	case "", "text":
		// Set timestamp format with milliseconds
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	default:
		return nil, fmt.Errorf("unknown log format %q", config.Format)
	}

	levelStr := config.Level
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		levelStr = env
	} else if verbose {
		levelStr = "debug"
	}
	if levelStr == "" {
		levelStr = "info"
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)

	return logger, nil
}
