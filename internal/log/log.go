// Package log holds the shared logger used across cmdvault.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

func init() {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	switch os.Getenv("CMDVAULT_LOG_LEVEL") {
	case "DEBUG":
		logger.SetLevel(logrus.DebugLevel)
	case "INFO":
		logger.SetLevel(logrus.InfoLevel)
	case "WARN":
		logger.SetLevel(logrus.WarnLevel)
	default:
		// Quiet by default: this is a CLI tool, diagnostics are opt-in.
		logger.SetLevel(logrus.WarnLevel)
	}
}

// GetLogger returns the shared logger instance.
func GetLogger() *logrus.Logger {
	return logger
}

// SetLevel adjusts the shared logger level, used by the --verbose flag.
func SetLevel(level logrus.Level) {
	logger.SetLevel(level)
}
