package retry

import (
	"math"
	"math/rand"
	"time"
)

// minDelay is the floor applied to every computed backoff delay.
const minDelay = 100 * time.Millisecond

// rateLimitFactor amplifies the base delay when the failed attempt was
// rate limited; backing off harder is the only thing that helps there.
const rateLimitFactor = 5

// Delay computes the backoff delay before the attempt after `attempt`
// (0-indexed). The pre-jitter delay is non-decreasing in the attempt index
// and capped at the policy maximum.
func Delay(attempt int, p Policy, rateLimited bool) time.Duration {
	base := p.BaseDelay
	if rateLimited {
		base *= rateLimitFactor
	}

	delay := float64(base) * math.Pow(p.ExponentialBase, float64(attempt))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if p.Jitter {
		jitter := delay * 0.25
		delay += (rand.Float64() * 2 * jitter) - jitter
	}

	if delay < float64(minDelay) {
		delay = float64(minDelay)
	}

	return time.Duration(delay)
}
