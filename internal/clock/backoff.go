package clock

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// NewBackoff returns a jittered exponential backoff starting at initial and
// capped at maxInterval. It never gives up on its own.
func NewBackoff(initial, maxInterval time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.MaxInterval = maxInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
