package replay

import (
	"math/rand"
	"time"
)

// backoff implements exponential backoff with jitter for the drain loop.
// After a drain where nothing got through, waits double up to max; any
// successful send resets to the base interval.
type backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

func newBackoff(initial, max time.Duration) *backoff {
	if initial <= 0 {
		initial = time.Second
	}
	if max < initial {
		max = initial
	}
	return &backoff{initial: initial, max: max, current: initial}
}

// Next returns the jittered current delay and doubles the base for the
// following call.
func (b *backoff) Next() time.Duration {
	// ±20% jitter
	jitter := float64(b.current) * 0.2 * (rand.Float64()*2 - 1)
	delay := time.Duration(float64(b.current) + jitter)

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return delay
}

func (b *backoff) Reset() {
	b.current = b.initial
}
