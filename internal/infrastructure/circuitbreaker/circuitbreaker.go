package circuitbreaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

const (
	// Interval clears the counts while the breaker is closed, so old healthy
	// traffic does not dilute a fresh run of failures.
	Interval = 60 * time.Second
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout = 30 * time.Second
	// MaxConsecutiveFailures opens the breaker regardless of the ratio.
	MaxConsecutiveFailures = 5
)

// CreateCircuitBreaker opens after 5 failures in a row, or after at least 3 requests
// in the current interval with a failure ratio of 60% or more.
// Only errors matching one of failures are counted; others (not found, conflicts,
// caller cancellations) pass as successes.
func CreateCircuitBreaker[T any](name string, failures ...error) *gobreaker.CircuitBreaker[T] {
	var st gobreaker.Settings
	st.Name = name
	st.Interval = Interval
	st.Timeout = OpenTimeout
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		if counts.ConsecutiveFailures >= MaxConsecutiveFailures {
			return true
		}
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 3 && failureRatio >= 0.6
	}
	if len(failures) > 0 {
		st.IsSuccessful = func(err error) bool {
			if errors.Is(err, context.Canceled) {
				return true
			}
			for _, f := range failures {
				if errors.Is(err, f) {
					return false
				}
			}
			return true
		}
	}

	cb := gobreaker.NewCircuitBreaker[T](st)

	return cb
}
