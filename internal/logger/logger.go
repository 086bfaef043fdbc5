package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds the service logger. format is "json" or "text"; anything else picks
// JSON outside development.
func New(level, format string, development bool) *logrus.Logger {
	return NewWithOutput(level, format, development, os.Stdout)
}

// NewWithOutput is New with an explicit writer
func NewWithOutput(level, format string, development bool, out io.Writer) *logrus.Logger {
	log := logrus.New()

	if level == "" {
		if development {
			level = "debug"
		} else {
			level = "info"
		}
	}

	switch strings.ToLower(format) {
	case "json":
		log.SetFormatter(jsonFormatter())
	case "text":
		log.SetFormatter(textFormatter())
	default:
		if development {
			log.SetFormatter(textFormatter())
		} else {
			log.SetFormatter(jsonFormatter())
		}
	}

	log.SetOutput(out)

	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", level).Warn("Invalid LOG_LEVEL, using INFO")
	}
	return log
}

func jsonFormatter() logrus.Formatter {
	return &logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
}

// WithComponent tags entries with the emitting component
func WithComponent(log logrus.FieldLogger, component string) *logrus.Entry {
	return log.WithField("component", component)
}

// WithPick tags entries with a pick id
func WithPick(log logrus.FieldLogger, pickID string) *logrus.Entry {
	return log.WithField("pick_id", pickID)
}

// WithJob tags entries with a scheduler job name
func WithJob(log logrus.FieldLogger, job string) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"component": "scheduler",
		"job":       job,
	})
}
