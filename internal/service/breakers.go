package service

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/fortuna/janus/internal/store/repository"
)

// Breaker names
const (
	BreakerBaselines = "baselines"
	BreakerProfiles  = "profiles"
	BreakerShotZones = "shot_zones"
)

// consecutive failures that open a breaker
const tripAfter = 5

type breakers struct {
	baselines *gobreaker.CircuitBreaker
	profiles  *gobreaker.CircuitBreaker
	shotZones *gobreaker.CircuitBreaker
}

func newBreakers(timeout time.Duration, log logrus.FieldLogger) breakers {
	return breakers{
		baselines: newBreaker(BreakerBaselines, timeout, log),
		profiles:  newBreaker(BreakerProfiles, timeout, log),
		shotZones: newBreaker(BreakerShotZones, timeout, log),
	}
}

func newBreaker(name string, timeout time.Duration, log logrus.FieldLogger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
		// A missing row is an answer, not a store failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, repository.ErrNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
}

// BreakerState is a breaker's name and state for status endpoints
type BreakerState struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

func (b breakers) states() []BreakerState {
	out := make([]BreakerState, 0, 3)
	for _, cb := range []*gobreaker.CircuitBreaker{b.baselines, b.profiles, b.shotZones} {
		out = append(out, BreakerState{Name: cb.Name(), State: cb.State().String()})
	}
	return out
}

// execute runs fn through cb and returns its typed result
func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	res, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	return res.(T), nil
}
