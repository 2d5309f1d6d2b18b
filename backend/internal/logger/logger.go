package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"portal_dashboard/backend/internal/shared"
)

// Log is the process-wide logger.
var Log = logrus.New()

// Init configures Log from the service configuration: JSON output for
// production and staging, coloured text everywhere else.
func Init(cfg *shared.ServiceConfig) {
	Log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		Log.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", cfg.LogLevel, err)
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	switch strings.ToLower(cfg.Environment) {
	case "production", "staging":
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	// Packages that log through the logrus standard logger follow suit.
	logrus.SetLevel(level)
	logrus.SetFormatter(Log.Formatter)

	Log.WithFields(logrus.Fields{
		"level":       Log.GetLevel().String(),
		"environment": cfg.Environment,
	}).Info("Logger initialized")
}

// Discard silences Log; used by tests.
func Discard() {
	Log.SetOutput(io.Discard)
}
