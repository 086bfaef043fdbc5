package service

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/fortuna/janus/internal/store/repository"
)

// logMissing logs a failed lookup. Absent rows are expected and logged at debug.
func logMissing(log logrus.FieldLogger, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.WithError(err).Debug(msg)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		log.WithError(err).Debug(msg + ": breaker open")
	default:
		log.WithError(err).Warn(msg)
	}
}
