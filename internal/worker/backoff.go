package worker

import (
	"math"
	"math/rand"
	"time"
)

// backoff grows the wait after consecutive failed sweeps.
// failures=1 => base, 2 => 2*base, 3 => 4*base, capped at capDelay.
func backoff(base, capDelay time.Duration, failures int) time.Duration {
	if failures < 1 {
		return base
	}

	multiple := math.Pow(2, float64(failures-1))
	delay := time.Duration(float64(base) * multiple)

	if delay > capDelay || delay <= 0 {
		delay = capDelay
	}

	// small jitter (0-250ms) so replicas do not sweep in lockstep
	delay += time.Duration(rand.Intn(250)) * time.Millisecond
	return delay
}
